package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"world-vlog/infrastructure/logger"
)

const adminRole = "admin"

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// IssueAdminToken signs a bearer token for the admin routes. A ttl of zero issues a token without expiry.
func IssueAdminToken(subject string, secretKey string, ttl time.Duration) (string, error) {
	if secretKey == "" {
		return "", errors.New("secret key is not configured")
	}
	now := GetCurrentTime()
	claims := map[string]interface{}{
		"sub":  subject,
		"role": adminRole,
		"iat":  now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	return GenerateToken(claims, secretKey)
}

func GenerateToken(payload map[string]interface{}, secretKey string) (string, error) {
	var claims jwt.MapClaims = payload
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
