package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gira/internal/auth"
	"gira/internal/models"
	"gira/internal/tracker"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionUserKey = "user_id"
	currentUserKey = "CurrentUser"
)

type UserLoader interface {
	ActiveUser(ctx context.Context, id uint) (*models.User, error)
}

type TokenParser interface {
	ParseToken(raw string) (*auth.Claims, error)
}

// RequireAuth пускает запрос дальше, только если есть Bearer-токен или
// сессия с user_id. Пользователь кладётся в контекст gin, а его id в
// context запроса для журнала аудита.
func RequireAuth(users UserLoader, tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := requestUserID(c, tokens)
		if err != nil {
			abortAuth(c, err)
			return
		}

		user, err := users.ActiveUser(c.Request.Context(), uid)
		if err != nil {
			abortAuth(c, err)
			return
		}

		c.Set(currentUserKey, user)
		c.Request = c.Request.WithContext(tracker.WithActor(c.Request.Context(), user.ID))
		c.Next()
	}
}

func requestUserID(c *gin.Context, tokens TokenParser) (uint, error) {
	if h := c.GetHeader("Authorization"); h != "" {
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return 0, models.ErrUnauthorized
		}
		claims, err := tokens.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			return 0, err
		}
		return claims.UserID, nil
	}

	if uid, ok := sessions.Default(c).Get(SessionUserKey).(uint); ok && uid > 0 {
		return uid, nil
	}
	return 0, models.ErrUnauthorized
}

func abortAuth(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInactiveUser):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is disabled", "code": "inactive_user"})
	case errors.Is(err, models.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "unauthorized"})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
	}
}

// CurrentUser возвращает пользователя, которого положил RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
