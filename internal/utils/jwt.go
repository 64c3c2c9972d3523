package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"proshop_back_end/internal/models"
)

// GenerateJWT émet un token HS256 valable 24h. Les claims sont celles que
// le middleware AuthRequired remet dans le contexte Gin.
func GenerateJWT(user *models.User, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.Hex(),
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
