package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"roleplay-tutor-api/internal/interfaces/http/dto"
	"roleplay-tutor-api/pkg/errors"
	"roleplay-tutor-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery 将 panic 转为 500，堆栈只写日志
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			c.Abort()
			if c.Writer.Written() {
				return
			}
			dto.ErrorWithDetail(c, http.StatusInternalServerError, errors.ErrInternalError.Message,
				&dto.ErrorDetail{ErrorCode: string(errors.CodeInternalError)})
		}()

		c.Next()
	}
}
