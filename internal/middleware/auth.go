package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
)

const adminContextKey = "admin"

// Auth validates the Bearer token and re-fetches the admin account so a
// deactivated admin is locked out immediately, not at token expiry.
func Auth(secret string, admins repository.AdminRepository) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "Authentication required.")
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token.")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "Invalid or expired token.")
			return
		}
		sub, err := claims.GetSubject()
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token.")
			return
		}
		adminID, err := uuid.Parse(sub)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token.")
			return
		}

		admin, err := admins.GetByID(c.Request.Context(), adminID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error.",
			})
			return
		}
		if admin == nil || !admin.IsActive {
			abortUnauthorized(c, "Invalid token or admin account deactivated.")
			return
		}

		c.Set(adminContextKey, admin)
		c.Next()
	}
}

// RequirePermission gates a route on one resource/action pair of the
// authenticated admin's permission set. It must run after Auth.
func RequirePermission(resource model.Resource, action model.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := GetAdmin(c)
		if admin == nil {
			abortUnauthorized(c, "Authentication required.")
			return
		}
		if !admin.Permissions.Allows(resource, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": fmt.Sprintf("You don't have permission to %s %s.", action, resource),
			})
			return
		}
		c.Next()
	}
}

// GetAdmin returns the admin set by Auth, or nil outside an authenticated
// request.
func GetAdmin(c *gin.Context) *model.Admin {
	v, ok := c.Get(adminContextKey)
	if !ok {
		return nil
	}
	admin, _ := v.(*model.Admin)
	return admin
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}
