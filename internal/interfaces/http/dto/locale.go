package dto

import "roleplay-tutor-api/internal/domain/entity"

// LocaleVariantDTO 地区变体
type LocaleVariantDTO struct {
	Code      string `json:"code"`
	Country   string `json:"country"`
	Flag      string `json:"flag"`
	IsDefault bool   `json:"is_default"`
}

// LanguageDTO 语言
type LanguageDTO struct {
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	NativeName string             `json:"native_name"`
	Variants   []LocaleVariantDTO `json:"variants"`
}

// LocalesResponse 语言列表响应
type LocalesResponse struct {
	Languages []LanguageDTO `json:"languages"`
}

// NewLocalesResponse 保持注册表顺序
func NewLocalesResponse(langs []entity.Language) LocalesResponse {
	out := make([]LanguageDTO, 0, len(langs))
	for _, l := range langs {
		variants := make([]LocaleVariantDTO, 0, len(l.Variants))
		for _, v := range l.Variants {
			variants = append(variants, LocaleVariantDTO{
				Code:      v.Code,
				Country:   v.Country,
				Flag:      v.Flag,
				IsDefault: v.IsDefault,
			})
		}
		out = append(out, LanguageDTO{
			Code:       l.Code,
			Name:       l.Name,
			NativeName: l.NativeName,
			Variants:   variants,
		})
	}
	return LocalesResponse{Languages: out}
}
