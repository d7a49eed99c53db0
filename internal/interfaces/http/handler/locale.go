package handler

import (
	"github.com/gin-gonic/gin"

	"roleplay-tutor-api/internal/domain/service"
	"roleplay-tutor-api/internal/interfaces/http/dto"
)

// LocaleHandler 语言列表处理器
type LocaleHandler struct {
	locales *service.LocaleRegistry
}

// NewLocaleHandler 创建语言列表处理器
func NewLocaleHandler(locales *service.LocaleRegistry) *LocaleHandler {
	return &LocaleHandler{locales: locales}
}

// List 返回支持的语言及地区变体
// @Summary 语言列表
// @Tags Locale
// @Produce json
// @Success 200 {object} dto.LocalesResponse
// @Router /api/locales [get]
func (h *LocaleHandler) List(c *gin.Context) {
	dto.OK(c, dto.NewLocalesResponse(h.locales.Languages()))
}
