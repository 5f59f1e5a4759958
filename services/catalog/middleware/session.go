// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the catalog service.
//
// This package contains middleware for anonymous session tracking,
// account authentication, admin gating, per-client rate limiting,
// response caching, and request metrics.
//
// # Session Flow
//
// The session middleware reads the session cookie, resolves it through
// the identity resolver, and stores the resulting session in the Gin
// context for downstream handlers.
//
//	Request
//	   │
//	   ▼
//	SessionMiddleware
//	   │
//	   ├─► Read cookie "5thJohnsonSession"
//	   │
//	   ├─► resolver.Resolve(ctx, token)
//	   │
//	   ├─► Set cookie when a new session was minted
//	   │
//	   └─► Store session in context
//	           │
//	           ▼
//	       Handler (retrieves via GetClientSession / CurrentIdentity)
//
// # Degradation
//
// Session resolution failures never fail the request. The middleware
// logs a warning and continues with no session in context; handlers
// that require one report the absence themselves.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
	"github.com/fifthjohnson/storefront/services/catalog/identity"
)

// =============================================================================
// Context Keys
// =============================================================================

// sessionKey is the context key for storing the resolved client session.
// Using a dedicated key prevents collisions with other context values.
const sessionKey = "storefront_client_session"

// cookieMaxAge is the session cookie lifetime in seconds. Matches the
// session document TTL so the cookie and the record expire together.
var cookieMaxAge = int(datatypes.SessionTTL.Seconds())

// SecureCookies reports whether session cookies should carry the Secure
// flag. Release mode means a production deployment behind TLS; debug and
// test modes keep cookies usable over plain HTTP in development.
func SecureCookies() bool {
	return gin.Mode() == gin.ReleaseMode
}

// =============================================================================
// Context Helpers
// =============================================================================

// SetClientSession stores the resolved session in the Gin context.
//
// # Description
//
// Called by SessionMiddleware after successful resolution. The stored
// session can be retrieved by handlers via GetClientSession.
//
// # Inputs
//
//   - c: Gin context. Must not be nil.
//   - sess: Resolved session. May be nil.
//
// # Thread Safety
//
// Safe to call concurrently (Gin context is request-scoped).
func SetClientSession(c *gin.Context, sess *datatypes.Session) {
	c.Set(sessionKey, sess)
}

// GetClientSession retrieves the resolved session from the Gin context.
//
// Returns nil when no session is present, either because the middleware
// is not installed on the route or because resolution failed.
func GetClientSession(c *gin.Context) *datatypes.Session {
	if v, exists := c.Get(sessionKey); exists {
		if sess, ok := v.(*datatypes.Session); ok {
			return sess
		}
	}
	return nil
}

// CurrentIdentity derives the request's favorites owner.
//
// # Description
//
// Authenticated accounts take precedence over anonymous sessions: when
// both are present the account identity wins, so a logged-in user's
// favorites always read from their account. Returns the zero Identity
// when neither is present.
//
// # Outputs
//
//   - datatypes.Identity: account, anonymous, or zero identity
func CurrentIdentity(c *gin.Context) datatypes.Identity {
	if accountID, ok := GetAccountID(c); ok {
		return datatypes.AccountIdentity(accountID)
	}
	if sess := GetClientSession(c); sess != nil {
		return datatypes.AnonymousIdentity(sess.ID)
	}
	return datatypes.Identity{}
}

// =============================================================================
// Session Middleware
// =============================================================================

// SessionMiddleware creates a Gin middleware that resolves the client
// session from the request cookie.
//
// # Description
//
// Reads the session cookie, resolves or mints a session via the
// resolver, refreshes the cookie when a new session was created, and
// stores the session in the context.
//
// # Inputs
//
//   - resolver: Identity resolver. Must not be nil.
//   - log: Logger for degradation warnings. Must not be nil.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware function ready for use with Gin
//
// # Limitations
//
//   - Cookie writes use SameSite=Lax; cross-site embedding of the
//     storefront is not supported.
func SessionMiddleware(resolver *identity.Resolver, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(datatypes.SessionCookieName)

		sess, created, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			// Session loss degrades favorites, nothing else. Let the
			// request proceed without one.
			log.Warn("session resolution failed",
				"path", c.Request.URL.Path,
				"error", err)
			c.Next()
			return
		}

		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(datatypes.SessionCookieName, sess.Token, cookieMaxAge, "/", "", SecureCookies(), true)
		}

		SetClientSession(c, sess)
		c.Next()
	}
}
