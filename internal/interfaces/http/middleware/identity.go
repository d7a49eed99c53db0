package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roleplay-tutor-api/internal/domain/service"
	apperrors "roleplay-tutor-api/pkg/errors"
	"roleplay-tutor-api/pkg/logger"
	"roleplay-tutor-api/pkg/utils"
)

// IdentityConfig 身份解析配置
type IdentityConfig struct {
	// Secret JWT 密钥，为空时不解析令牌
	Secret string
	Issuer string
	// Required 为 true 时拒绝没有有效身份的请求
	Required bool
}

// Identity 从 Bearer Token 中解析调用方身份。
// 令牌缺失或无效时按匿名处理，只有 Required 打开时才返回 401。
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	var jwtManager *utils.JWTManager
	if cfg.Secret != "" {
		jwtManager = utils.NewJWTManager(cfg.Secret, cfg.Issuer)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var id service.Identity
		var parseErr error
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok && jwtManager != nil {
			claims, err := jwtManager.ParseToken(token)
			if err != nil {
				parseErr = err
			} else {
				id = service.Identity{UserID: claims.Identity(), Email: claims.Email}
			}
		}

		if id.IsAnonymous() {
			if parseErr != nil {
				logger.Warn(ctx, "ignoring invalid identity token", "error", parseErr.Error(), "path", c.Request.URL.Path)
			} else {
				logger.Info(ctx, "no user identity on request", "path", c.Request.URL.Path)
			}
			if cfg.Required {
				abortUnauthorized(c, parseErr)
				return
			}
			c.Next()
			return
		}

		c.Set("user_id", id.UserID)
		c.Set("email", id.Email)
		ctx = service.WithIdentity(ctx, id)
		ctx = logger.WithContext(ctx, logger.UserIDKey, id.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, cause error) {
	appErr := apperrors.ErrTokenMissing
	switch {
	case errors.Is(cause, utils.ErrExpiredToken):
		appErr = apperrors.ErrTokenExpired
	case cause != nil:
		appErr = apperrors.ErrTokenInvalid
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":     appErr.Code,
		"message":  appErr.Message,
		"trace_id": c.GetString("trace_id"),
	})
}
