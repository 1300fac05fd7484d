package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	// iat carries milliseconds so a sign-in right after a revocation is not
	// caught by it.
	jwt.TimePrecision = time.Millisecond
}

// Claims carries the standard claims plus the account id and admin flag.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"_id"`
	IsAdmin bool   `json:"isAdmin"`
}

// GenerateToken signs an HS256 token for userID. A zero validityDuration
// produces a token without an expiry claim.
func GenerateToken(userID string, isAdmin bool, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()

	registered := jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(now),
	}
	if validityDuration != 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(validityDuration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: registered,
		UserID:           userID,
		IsAdmin:          isAdmin,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature of tokenString and returns its claims.
// Only HS256 is accepted, so unsigned ("none") tokens are rejected.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
