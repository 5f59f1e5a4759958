// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseObjectID_Valid(t *testing.T) {
	want := primitive.NewObjectID()

	got, err := ParseObjectID(want.Hex())
	if err != nil {
		t.Fatalf("ParseObjectID() error: %v", err)
	}
	if got != want {
		t.Errorf("ParseObjectID() = %v, want %v", got, want)
	}
}

func TestParseObjectID_TrimsWhitespace(t *testing.T) {
	want := primitive.NewObjectID()

	got, err := ParseObjectID("  " + want.Hex() + "\n")
	if err != nil {
		t.Fatalf("ParseObjectID() error: %v", err)
	}
	if got != want {
		t.Errorf("ParseObjectID() = %v, want %v", got, want)
	}
}

func TestParseObjectID_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"too short", "abc123"},
		{"too long", strings.Repeat("a", 25)},
		{"non-hex chars", "zzzzzzzzzzzzzzzzzzzzzzzz"},
		{"injection attempt", `{"$ne": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseObjectID(tt.input); err == nil {
				t.Errorf("ParseObjectID(%q) should fail", tt.input)
			}
		})
	}
}

func TestParseObjectIDs_AllValid(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	ids, err := ParseObjectIDs([]string{a.Hex(), b.Hex()})
	if err != nil {
		t.Fatalf("ParseObjectIDs() error: %v", err)
	}
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Errorf("ParseObjectIDs() = %v, want [%v %v]", ids, a, b)
	}
}

func TestParseObjectIDs_ReportsAllInvalid(t *testing.T) {
	_, err := ParseObjectIDs([]string{primitive.NewObjectID().Hex(), "bad", "worse"})
	if err == nil {
		t.Fatal("ParseObjectIDs() should fail")
	}
	if !strings.Contains(err.Error(), "bad") || !strings.Contains(err.Error(), "worse") {
		t.Errorf("error should list every invalid value: %v", err)
	}
}

func TestParseObjectIDs_Empty(t *testing.T) {
	ids, err := ParseObjectIDs(nil)
	if err != nil {
		t.Fatalf("ParseObjectIDs(nil) error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ParseObjectIDs(nil) = %v, want empty", ids)
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr bool
	}{
		{"simple", "summer-collection", false},
		{"single word", "hats", false},
		{"with digits", "gift-cards-2025", false},
		{"empty", "", true},
		{"uppercase", "Summer-Collection", true},
		{"leading hyphen", "-summer", true},
		{"trailing hyphen", "summer-", true},
		{"double hyphen", "summer--sale", true},
		{"spaces", "summer sale", true},
		{"path traversal", "../etc/passwd", true},
		{"too long", strings.Repeat("a", 201), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlug(%q) error = %v, wantErr %v", tt.slug, err, tt.wantErr)
			}
		})
	}
}
