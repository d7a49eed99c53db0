package handler

import (
	"github.com/gin-gonic/gin"

	"roleplay-tutor-api/internal/domain/service"
	"roleplay-tutor-api/internal/interfaces/http/dto"
	apperrors "roleplay-tutor-api/pkg/errors"
	"roleplay-tutor-api/pkg/logger"
)

// 对外只返回通用提示，具体原因只写日志
const (
	msgChatFailed     = "Failed to process chat request. Please try again."
	msgGenerateFailed = "Failed to generate scenario. Please try again."
	msgModifyFailed   = "Failed to modify scenario. Please try again."
)

// respondFailure 记录错误并返回通用 500
func respondFailure(c *gin.Context, op string, err error, userMessage string) {
	ctx := c.Request.Context()
	code := apperrors.CodeUnknown
	if appErr := apperrors.AsAppError(err); appErr != nil {
		code = appErr.Code
	}
	logger.Error(ctx, op+" failed", err,
		"error_code", string(code),
		"user_id", userLabel(c),
	)
	dto.ErrorWithDetail(c, 500, userMessage, &dto.ErrorDetail{ErrorCode: string(code)})
}

// userLabel 日志中使用的用户标识，匿名时为 anonymous
func userLabel(c *gin.Context) string {
	id := service.IdentityFromContext(c.Request.Context())
	if id.IsAnonymous() {
		return "anonymous"
	}
	return id.UserID
}
