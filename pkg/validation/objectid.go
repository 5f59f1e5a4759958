// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for user-supplied
// identifiers.
//
// This package contains validators for inputs that end up in database
// queries or URLs. Route parameters and request bodies pass through these
// before any store call, so malformed identifiers fail fast with a clear
// error instead of surfacing as opaque driver errors.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// slugPattern matches URL-safe slugs: lowercase alphanumerics separated
// by single hyphens, no leading or trailing hyphen.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ParseObjectID validates and parses a hex document identifier.
//
// Valid identifiers are exactly 24 hexadecimal characters. Returns an
// error naming the offending value if parsing fails.
//
// Example:
//
//	id, err := validation.ParseObjectID(c.Param("id"))
//	if err != nil {
//	    return datatypes.BadRequest("Invalid product ID")
//	}
func ParseObjectID(s string) (primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return primitive.NilObjectID, fmt.Errorf("identifier cannot be empty")
	}

	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid identifier format: %q (must be 24 hex chars)", s)
	}
	return id, nil
}

// ParseObjectIDs parses multiple hex identifiers.
// Returns an error listing all invalid values if any fail.
func ParseObjectIDs(values []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(values))
	var invalid []string
	for _, v := range values {
		id, err := ParseObjectID(v)
		if err != nil {
			invalid = append(invalid, v)
			continue
		}
		ids = append(ids, id)
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid identifiers: %v", invalid)
	}
	return ids, nil
}

// ValidateSlug validates a URL slug segment.
//
// Valid slugs:
//   - lowercase letters a-z and digits 0-9
//   - single hyphens between segments
//   - no leading or trailing hyphen
//
// Returns an error if the slug is invalid.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if len(slug) > 200 {
		return fmt.Errorf("slug too long: %d chars (max 200)", len(slug))
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("invalid slug format: %q (lowercase alphanumerics and hyphens only)", slug)
	}
	return nil
}
