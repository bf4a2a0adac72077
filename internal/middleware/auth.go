package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/stackit-app/stackit/backend/internal/models"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "user_id"
)

// Auth validates the Bearer token, loads the user, and rejects banned
// accounts. The full user record is placed in the context so handlers can
// check roles without another lookup.
func Auth(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := userFromToken(c, db, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if user.IsBanned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is banned"})
			return
		}
		c.Set(CtxUserKey, *user)
		c.Set(CtxUserIDKey, user.ID)
		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present and continues
// anonymously otherwise.
func OptionalAuth(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := userFromToken(c, db, secret); err == nil && !user.IsBanned {
			c.Set(CtxUserKey, *user)
			c.Set(CtxUserIDKey, user.ID)
		}
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user placed in the context by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	raw, exists := c.Get(CtxUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := raw.(models.User)
	return user, ok
}

func userFromToken(c *gin.Context, db *gorm.DB, secret []byte) (*models.User, error) {
	header := c.GetHeader("Authorization")
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return nil, errors.New("Access token required")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("Invalid token claims")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errors.New("Invalid token claims")
	}

	var user models.User
	if err := db.First(&user, int(userID)).Error; err != nil {
		return nil, errors.New("User not found")
	}
	return &user, nil
}
