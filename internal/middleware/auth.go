// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"blogdesk/internal/auth"
)

// TokenParser verifies a bearer token and returns the identity it carries.
type TokenParser interface {
	Parse(token string) (string, error)
}

// RequireToken rejects requests without a valid "Authorization: Bearer"
// token with 401 {"message":"Unauthorized"}. On success the username is
// stored in the request context (see auth.IdentityFromContext).
func RequireToken(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				slog.Debug("rejected request without bearer token", "path", r.URL.Path)
				writeError(w, r, http.StatusUnauthorized, "message", "Unauthorized")
				return
			}

			username, err := parser.Parse(token)
			if err != nil {
				slog.Debug("rejected bearer token", "path", r.URL.Path, "error", err)
				writeError(w, r, http.StatusUnauthorized, "message", "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), username)))
		})
	}
}

// bearerToken extracts the token from the Authorization header. The
// scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
