package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"world-vlog/domain/dto"
	"world-vlog/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const adminRole = "admin"

// AdminAuth guards the operator endpoints with an HS256 bearer token carrying role=admin.
func AdminAuth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		if secretKey == "" {
			// no secret configured: the admin surface is closed
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		authorization := ctx.Request.Header.Get("Authorization")
		auth := strings.SplitN(authorization, "Bearer ", 2)
		if len(auth) != 2 || auth[1] == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims, token, err := getClaim(auth[1], secretKey)
		if err != nil || token == nil || !token.Valid {
			res.ResponseMessage = reason(err)
			logger.GetLogger().WithField("error", err).Warn("Rejected admin token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		if role, _ := claims["role"].(string); role != adminRole {
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: "Forbidden"})
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			ctx.Set("admin_subject", sub)
		}
		ctx.Next()
	}
}

func reason(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		switch {
		case ve.Errors&jwt.ValidationErrorMalformed != 0:
			return "That's not even a token"
		case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
			// Token is either expired or not active yet
			return "Timing is everything"
		default:
			return fmt.Sprintf("Couldn't handle this token:%v", err)
		}
	}
	return "Unauthorized"
}

func getClaim(raw string, secretKey string) (jwt.MapClaims, *jwt.Token, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	return claims, token, err
}
