package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/seifhelal/storefront/internal/constants"
	"github.com/seifhelal/storefront/internal/errors"
	"github.com/seifhelal/storefront/internal/log"
)

var tracer = otel.Tracer("internal/auth")

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type claimsKey struct{}

func NewToken(c context.Context, userId uuid.UUID, role string, secretKey string) (string, error) {
	c, span := tracer.Start(c, "auth NewToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "auth NewToken").
		Str(log.KeyUserID, userId.String()).
		Logger()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userId.String(),
			Issuer:    constants.AppUserService,
			Audience:  jwt.ClaimStrings{constants.AudienceStorefront},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			ID:        uuid.NewString(),
		},
		Role: role,
	})
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}

	return signed, nil
}

func VerifyToken(c context.Context, token string, secretKey string) (*Claims, error) {
	c, span := tracer.Start(c, "auth VerifyToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "auth VerifyToken").
		Logger()

	claims := Claims{}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithAudience(constants.AudienceStorefront),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppUserService),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if !jwtToken.Valid {
		err = fmt.Errorf("failed validating token with error=%w", errors.ErrTokenInvalid)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	return &claims, nil
}

func AttachClaimsToContext(c context.Context, claims *Claims) context.Context {
	return context.WithValue(c, claimsKey{}, claims)
}

func ClaimsFromContext(c context.Context) (*Claims, error) {
	claims, ok := c.Value(claimsKey{}).(*Claims)
	if !ok || claims == nil {
		return nil, errors.ErrUnauthenticated
	}
	return claims, nil
}

// UserIDFromContext returns the authenticated identity or ErrUnauthenticated.
// Checkout and every other identity-gated operation depend on this precondition.
func UserIDFromContext(c context.Context) (uuid.UUID, error) {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.Subject == "" {
		return uuid.Nil, errors.ErrEmptySubject
	}
	userId, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed parsing subject with error=%w", err)
	}
	return userId, nil
}

func RoleFromContext(c context.Context) string {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return ""
	}
	return claims.Role
}
