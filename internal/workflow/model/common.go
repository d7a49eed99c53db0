// Package model 定义工作流各节点的输入结构
package model

import "roleplay-tutor-api/internal/domain/entity"

// LocaleContext Prompt 中使用的语言与国家信息
type LocaleContext struct {
	Locale       string
	LanguageName string
	CountryName  string
}

// FromResolved 由注册表解析结果构建
func FromResolved(loc entity.ResolvedLocale) LocaleContext {
	return LocaleContext{
		Locale:       loc.Locale,
		LanguageName: loc.LanguageName,
		CountryName:  loc.CountryName,
	}
}
