package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seifhelal/storefront/internal/auth"
	"github.com/seifhelal/storefront/internal/errors"
	inHttp "github.com/seifhelal/storefront/internal/http"
	"github.com/seifhelal/storefront/internal/log"
)

func Auth(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware Auth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				logger.Error().Err(errors.ErrEmptyAuth).Msg(errors.ErrEmptyAuth.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    errors.ErrEmptyAuth.Error(),
				})
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			token = strings.TrimPrefix(token, "bearer ")
			claims, err := auth.VerifyToken(c, token, secretKey)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    errors.ErrTokenInvalid.Error(),
				})
				return
			}

			c = auth.AttachClaimsToContext(c, claims)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

// OptionalAuth attaches claims when a valid bearer token is present but lets
// anonymous requests through. Handlers that personalize their response check
// the context themselves.
func OptionalAuth(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				next.ServeHTTP(w, r)
				return
			}

			c := r.Context()
			token := strings.TrimPrefix(authorization, "Bearer ")
			token = strings.TrimPrefix(token, "bearer ")
			claims, err := auth.VerifyToken(c, token, secretKey)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			c = auth.AttachClaimsToContext(c, claims)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
