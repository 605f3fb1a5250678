// Package auth issues and validates the HS256 bearer tokens the HTTP
// surface authenticates actors with. The actor id carried in the token is
// the identity every engine entry point authorizes against.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
)

// Claims carries the standard claims plus the actor identity.
type Claims struct {
	jwt.RegisteredClaims
	ActorID string
}

func GenerateToken(actorID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		ActorID: actorID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetActorIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.ActorID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.ActorID, nil
}
