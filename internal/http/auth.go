package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"cardspend/internal/core"
	"cardspend/internal/log"
)

type contextKey int

const principalKey contextKey = iota

// withPrincipal stores the caller in ctx.
func withPrincipal(ctx context.Context, p core.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// principalFrom returns the caller, or the zero principal which every
// service rejects as unauthorized.
func principalFrom(ctx context.Context) core.Principal {
	p, _ := ctx.Value(principalKey).(core.Principal)
	return p
}

// authenticate resolves the caller. With a secret configured a bearer
// token signed with HS256 is required and its "sub" claim is the user id.
// Without a secret the user_id query parameter or the X-User-ID header is
// trusted as supplied by the fronting application.
func authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				userID int64
				err    error
			)
			if len(secret) > 0 {
				userID, err = userFromToken(r, secret)
			} else {
				userID, err = userFromRequest(r)
			}
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := r.Context()
			if userID > 0 {
				l := log.FromContext(ctx).With().Int64(log.FieldUserID, userID).Logger()
				ctx = l.WithContext(ctx)
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, core.Principal{UserID: userID})))
		})
	}
}

func userFromToken(r *http.Request, secret []byte) (int64, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("%w: bearer token required", core.ErrUnauthorized)
	}
	claims, err := validateJWT(strings.TrimSpace(raw), secret)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, fmt.Errorf("%w: token has no subject", core.ErrUnauthorized)
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", core.ErrUnauthorized, sub)
	}
	return id, nil
}

// validateJWT parses and validates a token signed with secret.
func validateJWT(tokenString string, secret []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func userFromRequest(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if raw == "" {
		raw = strings.TrimSpace(r.Header.Get("X-User-ID"))
	}
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: user_id %q is not valid", core.ErrUnauthorized, raw)
	}
	return id, nil
}
