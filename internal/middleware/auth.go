package middleware

import (
	"strconv"
	"strings"

	"inr99_academy_backend/internal/config"
	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// TryAuthMiddleware attaches claims when a valid token is present but lets
// guests through.
func TryAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret); err == nil {
				c.Set("user", claims)
			}
		}
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			// Admins pass every role gate
			if user.Role == model.Admin {
				hasRole = true
				break
			}
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserActivityRepo interface {
	UpdateLastSeen(userID uint) error
}

func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			// Async so the request path never blocks on this write
			go repo.UpdateLastSeen(claims.UserID)
		}
		c.Next()
	}
}

type SubscriptionChecker interface {
	HasActiveSubscription(userID uint) bool
}

type LessonCatalog interface {
	IsLessonFree(lessonID uint) (bool, error)
}

// LessonAccessMiddleware is the subscription gate for lesson routes. Free
// preview lessons pass for any authenticated student; everything else needs
// a usable subscription.
func LessonAccessMiddleware(checker SubscriptionChecker, catalog LessonCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if user.Role != model.Student {
			c.Next()
			return
		}

		if id, err := strconv.ParseUint(c.Param("id"), 10, 64); err == nil {
			if free, err := catalog.IsLessonFree(uint(id)); err == nil && free {
				c.Next()
				return
			}
		}

		if !checker.HasActiveSubscription(user.UserID) {
			util.Error(c, 402, util.ErrSubscriptionRequired.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

// SubscriptionMiddleware gates premium content behind a usable subscription.
func SubscriptionMiddleware(checker SubscriptionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if user.Role != model.Student {
			c.Next()
			return
		}

		if !checker.HasActiveSubscription(user.UserID) {
			util.Error(c, 402, util.ErrSubscriptionRequired.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}
