package authapp

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"time"
)

var (
	ErrAccessTokenInvalid = errors.New("invalid access token")
	ErrAccessTokenExpired = fmt.Errorf("%w: token expired", ErrAccessTokenInvalid)
	ErrNoSecret           = errors.New("admin secret not configured")
)

const AdminScope = "admin"

// Authorizer mints and checks the HS256 tokens that guard admin routes.
type Authorizer struct {
	Secret         string
	AccessTokenTTL time.Duration
	Now            func() time.Time
}

type AccessTokenData struct {
	TokenID   string
	Subject   string
	ExpiresAt time.Time
}

func (a *Authorizer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Authorizer) GenerateAccessToken(subject string) (string, error) {
	if a.Secret == "" {
		return "", ErrNoSecret
	}

	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":   uuid.New().String(),
		"sub":   subject,
		"scope": AdminScope,
		"exp":   now.Add(a.AccessTokenTTL).Unix(),
		"iat":   now.Unix(),
	})
	return token.SignedString([]byte(a.Secret))
}

func (a *Authorizer) ValidateAccessToken(accessToken string) (*AccessTokenData, error) {
	if a.Secret == "" {
		return nil, ErrNoSecret
	}

	claims := jwt.MapClaims{}
	parser := &jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(accessToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(a.Secret), nil
	})
	if err != nil {
		return nil, ErrAccessTokenInvalid
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrAccessTokenInvalid
	}
	expiresAt := time.Unix(int64(exp), 0)
	if !a.now().Before(expiresAt) {
		return nil, ErrAccessTokenExpired
	}

	scope, _ := claims["scope"].(string)
	jti, _ := claims["jti"].(string)
	sub, _ := claims["sub"].(string)
	if scope != AdminScope || jti == "" {
		return nil, ErrAccessTokenInvalid
	}

	return &AccessTokenData{
		TokenID:   jti,
		Subject:   sub,
		ExpiresAt: expiresAt,
	}, nil
}
