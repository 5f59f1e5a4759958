// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// =============================================================================
// Context Keys
// =============================================================================

// accountIDKey is the context key for the authenticated account ID.
const accountIDKey = "storefront_account_id"

// =============================================================================
// Context Helpers
// =============================================================================

// SetAccountID stores the authenticated account ID in the Gin context.
func SetAccountID(c *gin.Context, id primitive.ObjectID) {
	c.Set(accountIDKey, id)
}

// GetAccountID retrieves the authenticated account ID from the Gin
// context. The second return is false when the request carries no valid
// account token.
func GetAccountID(c *gin.Context) (primitive.ObjectID, bool) {
	if v, exists := c.Get(accountIDKey); exists {
		if id, ok := v.(primitive.ObjectID); ok {
			return id, true
		}
	}
	return primitive.NilObjectID, false
}

// =============================================================================
// Account Auth Middleware
// =============================================================================

// RequireAuth creates a Gin middleware that rejects requests without a
// valid account token.
//
// # Description
//
// Extracts the bearer token from the Authorization header, verifies the
// HMAC signature and expiry, and stores the account ID from the token
// subject in the context.
//
// # Inputs
//
//   - secret: HMAC signing key shared with the login handler. Must not
//     be empty.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware function ready for use with Gin
//
// # Limitations
//
//   - Only supports Bearer token authentication
//   - Does not check account existence; a handler that needs the full
//     account record loads it and reports 401 if deactivated
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := verifyAccountToken(c, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		SetAccountID(c, accountID)
		c.Next()
	}
}

// OptionalAuth creates a Gin middleware that attaches the account ID
// when a valid token is present and continues silently otherwise.
//
// Used on routes that serve both anonymous and logged-in clients, such
// as favorites, where the identity only changes whose list is read.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if accountID, ok := verifyAccountToken(c, secret); ok {
			SetAccountID(c, accountID)
		}
		c.Next()
	}
}

// verifyAccountToken parses and verifies the request's bearer token.
// Returns the account ID from the subject claim.
func verifyAccountToken(c *gin.Context, secret []byte) (primitive.ObjectID, bool) {
	raw := extractBearerToken(c)
	if raw == "" {
		return primitive.NilObjectID, false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, false
	}

	accountID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return accountID, true
}

// extractBearerToken extracts the token from the Authorization header.
// Returns empty string if the header is missing or malformed. The
// "Bearer" prefix is case-insensitive per RFC 7235.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// =============================================================================
// Admin Middleware
// =============================================================================

// RequireAdmin creates a Gin middleware that gates staff-only routes
// behind the x-api-key header.
//
// # Description
//
// Compares the header value against the configured key in constant
// time. Requests with a missing or wrong key get a 401 envelope.
//
// # Inputs
//
//   - apiKey: Configured admin key. An empty key disables every admin
//     route rather than opening them.
func RequireAdmin(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("x-api-key")
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid API key",
			})
			return
		}
		c.Next()
	}
}
