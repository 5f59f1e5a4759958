// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
	"github.com/fifthjohnson/storefront/services/catalog/identity"
	"github.com/fifthjohnson/storefront/services/catalog/middleware"
	"github.com/fifthjohnson/storefront/services/catalog/store"
)

// tokenTTL is the account token lifetime. Matches the anonymous session
// TTL so both identity kinds age out together.
const tokenTTL = datatypes.SessionTTL

// issueToken signs an HS256 account token with the user ID as subject.
func issueToken(secret []byte, userID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// authPayload is the data block returned by register and login.
type authPayload struct {
	Token string          `json:"token"`
	User  *datatypes.User `json:"user"`
}

// Register creates an account and logs it in. Any favorites collected
// on the anonymous session merge into the new account.
func Register(st *store.Store, resolver *identity.Resolver, secret []byte, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, log, datatypes.Internal(err))
			return
		}

		ctx := c.Request.Context()
		user := &datatypes.User{
			Name:         req.Name,
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: string(hash),
			IsActive:     true,
			Favorites:    []primitive.ObjectID{},
		}
		if err := st.InsertUser(ctx, user); err != nil {
			respondError(c, log, err)
			return
		}

		if sess := middleware.GetClientSession(c); sess != nil {
			if err := resolver.MergeOnAuth(ctx, user.ID, sess); err != nil {
				// Registration succeeded; the session favorites just
				// stay where they are until the next login.
				log.Warn("favorites merge failed on register",
					"account_id", user.ID.Hex(), "error", err)
			}
		}

		token, err := issueToken(secret, user.ID.Hex(), time.Now().UTC())
		if err != nil {
			respondError(c, log, datatypes.Internal(err))
			return
		}

		log.Info("account registered", "account_id", user.ID.Hex())
		respondCreated(c, "Account created", authPayload{Token: token, User: user})
	}
}

// Login authenticates an account and merges any anonymous-session
// favorites into it.
func Login(st *store.Store, resolver *identity.Resolver, secret []byte, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(strings.TrimSpace(req.Email))

		// One message for both unknown email and wrong password, so the
		// endpoint doesn't confirm which emails have accounts.
		user, err := st.UserByEmail(ctx, email)
		if err != nil {
			respondError(c, log, datatypes.Unauthorized("Invalid email or password"))
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			respondError(c, log, datatypes.Unauthorized("Invalid email or password"))
			return
		}

		now := time.Now().UTC()
		if err := st.SetLastLogin(ctx, user.ID, now); err != nil {
			log.Warn("failed to record last login", "account_id", user.ID.Hex(), "error", err)
		}

		if sess := middleware.GetClientSession(c); sess != nil {
			if err := resolver.MergeOnAuth(ctx, user.ID, sess); err != nil {
				log.Warn("favorites merge failed on login",
					"account_id", user.ID.Hex(), "error", err)
			}
		}

		token, err := issueToken(secret, user.ID.Hex(), now)
		if err != nil {
			respondError(c, log, datatypes.Internal(err))
			return
		}

		log.Info("account logged in", "account_id", user.ID.Hex())
		respondOK(c, "Logged in", authPayload{Token: token, User: user})
	}
}

// Me returns the authenticated account's profile. Reports 401 when the
// account was deactivated after the token was issued.
func Me(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := middleware.GetAccountID(c)
		if !ok {
			respondError(c, log, datatypes.Unauthorized("Authentication required"))
			return
		}

		user, err := st.UserByID(c.Request.Context(), accountID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		if !user.IsActive {
			respondError(c, log, datatypes.Unauthorized("Account is deactivated"))
			return
		}
		respondOK(c, "Profile retrieved", user)
	}
}

// Logout destroys the anonymous session and clears its cookie. Account
// tokens are stateless; clients discard them.
func Logout(resolver *identity.Resolver, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(datatypes.SessionCookieName)
		if err := resolver.Destroy(c.Request.Context(), token); err != nil {
			respondError(c, log, err)
			return
		}

		c.SetCookie(datatypes.SessionCookieName, "", -1, "/", "", middleware.SecureCookies(), true)
		respondOK(c, "Logged out", nil)
	}
}
