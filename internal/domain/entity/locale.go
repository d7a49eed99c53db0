// Package entity 定义领域实体
package entity

// LocaleVariant 语言的地区变体（如 es-MX）
type LocaleVariant struct {
	Code      string `json:"code"`
	Country   string `json:"country"`
	Flag      string `json:"flag"`
	IsDefault bool   `json:"is_default"`
}

// Language 支持的学习语言及其地区变体
type Language struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	NativeName string          `json:"native_name"`
	Variants   []LocaleVariant `json:"variants"`
}

// DefaultVariant 返回默认变体；未标记默认时取第一个
func (l Language) DefaultVariant() (LocaleVariant, bool) {
	for _, v := range l.Variants {
		if v.IsDefault {
			return v, true
		}
	}
	if len(l.Variants) > 0 {
		return l.Variants[0], true
	}
	return LocaleVariant{}, false
}

// ResolvedLocale 解析后的地区信息，用于 Prompt 渲染与场景字段回填
type ResolvedLocale struct {
	Locale       string
	LanguageCode string
	LanguageName string
	CountryName  string
}
