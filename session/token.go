package session

import (
	"os"
	"time"

	"bugtrack/bizerror"

	"github.com/fundwit/go-commons/types"
	"github.com/golang-jwt/jwt/v5"
)

const TokenExpiration = 7 * 24 * time.Hour

var IssueTokenFunc = IssueToken

type TokenClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`

	jwt.RegisteredClaims
}

// signingSecret is read lazily so a missing secret fails the first
// token issuing request, not process startup.
func signingSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, bizerror.ErrSigningSecretMissing
	}
	return []byte(secret), nil
}

func IssueToken(identity *Identity) (string, error) {
	secret, err := signingSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := TokenClaims{
		Name:  identity.Name,
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyToken rejects expired, malformed and mis-signed tokens.
func VerifyToken(token string) (*Identity, error) {
	secret, err := signingSecret()
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, bizerror.ErrUnauthenticated
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, bizerror.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok {
		return nil, bizerror.ErrUnauthenticated
	}
	uid, err := types.ParseID(claims.Subject)
	if err != nil {
		return nil, bizerror.ErrUnauthenticated
	}
	return &Identity{ID: uid, Name: claims.Name, Email: claims.Email, Role: claims.Role}, nil
}
