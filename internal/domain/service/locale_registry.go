package service

import (
	"strings"

	"roleplay-tutor-api/internal/domain/entity"
)

// 无法识别地区时使用的默认值
const (
	DefaultLocale       = "fr-FR"
	DefaultLanguageCode = "fr"
)

// languageTable 支持的语言，法语在前；进程内只读
var languageTable = []entity.Language{
	{Code: "fr", Name: "French", NativeName: "Français", Variants: []entity.LocaleVariant{
		{Code: "fr-FR", Country: "France", Flag: "🇫🇷", IsDefault: true},
		{Code: "fr-BE", Country: "Belgium", Flag: "🇧🇪"},
		{Code: "fr-CH", Country: "Switzerland", Flag: "🇨🇭"},
		{Code: "fr-CA", Country: "Canada", Flag: "🇨🇦"},
	}},
	{Code: "es", Name: "Spanish", NativeName: "Español", Variants: []entity.LocaleVariant{
		{Code: "es-MX", Country: "Mexico", Flag: "🇲🇽", IsDefault: true},
		{Code: "es-ES", Country: "Spain", Flag: "🇪🇸"},
		{Code: "es-AR", Country: "Argentina", Flag: "🇦🇷"},
		{Code: "es-CO", Country: "Colombia", Flag: "🇨🇴"},
		{Code: "es-PE", Country: "Peru", Flag: "🇵🇪"},
		{Code: "es-CL", Country: "Chile", Flag: "🇨🇱"},
	}},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", Variants: []entity.LocaleVariant{
		{Code: "pt-BR", Country: "Brazil", Flag: "🇧🇷", IsDefault: true},
		{Code: "pt-PT", Country: "Portugal", Flag: "🇵🇹"},
	}},
	{Code: "de", Name: "German", NativeName: "Deutsch", Variants: []entity.LocaleVariant{
		{Code: "de-DE", Country: "Germany", Flag: "🇩🇪", IsDefault: true},
		{Code: "de-AT", Country: "Austria", Flag: "🇦🇹"},
		{Code: "de-CH", Country: "Switzerland", Flag: "🇨🇭"},
	}},
	{Code: "it", Name: "Italian", NativeName: "Italiano", Variants: []entity.LocaleVariant{
		{Code: "it-IT", Country: "Italy", Flag: "🇮🇹", IsDefault: true},
		{Code: "it-CH", Country: "Switzerland", Flag: "🇨🇭"},
	}},
	{Code: "nl", Name: "Dutch", NativeName: "Nederlands", Variants: []entity.LocaleVariant{
		{Code: "nl-NL", Country: "Netherlands", Flag: "🇳🇱", IsDefault: true},
		{Code: "nl-BE", Country: "Belgium", Flag: "🇧🇪"},
	}},
	{Code: "pl", Name: "Polish", NativeName: "Polski", Variants: []entity.LocaleVariant{
		{Code: "pl-PL", Country: "Poland", Flag: "🇵🇱", IsDefault: true},
	}},
	{Code: "sv", Name: "Swedish", NativeName: "Svenska", Variants: []entity.LocaleVariant{
		{Code: "sv-SE", Country: "Sweden", Flag: "🇸🇪", IsDefault: true},
	}},
	{Code: "da", Name: "Danish", NativeName: "Dansk", Variants: []entity.LocaleVariant{
		{Code: "da-DK", Country: "Denmark", Flag: "🇩🇰", IsDefault: true},
	}},
	{Code: "nb", Name: "Norwegian", NativeName: "Norsk", Variants: []entity.LocaleVariant{
		{Code: "nb-NO", Country: "Norway", Flag: "🇳🇴", IsDefault: true},
	}},
	{Code: "fi", Name: "Finnish", NativeName: "Suomi", Variants: []entity.LocaleVariant{
		{Code: "fi-FI", Country: "Finland", Flag: "🇫🇮", IsDefault: true},
	}},
	{Code: "el", Name: "Greek", NativeName: "Ελληνικά", Variants: []entity.LocaleVariant{
		{Code: "el-GR", Country: "Greece", Flag: "🇬🇷", IsDefault: true},
	}},
	{Code: "cs", Name: "Czech", NativeName: "Čeština", Variants: []entity.LocaleVariant{
		{Code: "cs-CZ", Country: "Czech Republic", Flag: "🇨🇿", IsDefault: true},
	}},
	{Code: "ro", Name: "Romanian", NativeName: "Română", Variants: []entity.LocaleVariant{
		{Code: "ro-RO", Country: "Romania", Flag: "🇷🇴", IsDefault: true},
	}},
	{Code: "hu", Name: "Hungarian", NativeName: "Magyar", Variants: []entity.LocaleVariant{
		{Code: "hu-HU", Country: "Hungary", Flag: "🇭🇺", IsDefault: true},
	}},
}

type localeEntry struct {
	languageIdx int
	variantIdx  int
}

// LocaleRegistry 语言/地区元数据查询表，构建后只读，可并发使用
type LocaleRegistry struct {
	languages []entity.Language
	byLocale  map[string]localeEntry
	byLang    map[string]int
}

// NewLocaleRegistry 基于内置语言表构建注册表
func NewLocaleRegistry() *LocaleRegistry {
	return newLocaleRegistry(languageTable)
}

func newLocaleRegistry(table []entity.Language) *LocaleRegistry {
	languages := make([]entity.Language, len(table))
	for i, lang := range table {
		lang.Variants = append([]entity.LocaleVariant(nil), lang.Variants...)
		if def, ok := lang.DefaultVariant(); ok && !def.IsDefault {
			lang.Variants[0].IsDefault = true
		}
		languages[i] = lang
	}

	r := &LocaleRegistry{
		languages: languages,
		byLocale:  make(map[string]localeEntry),
		byLang:    make(map[string]int, len(languages)),
	}
	for li, lang := range languages {
		r.byLang[strings.ToLower(lang.Code)] = li
		for vi, v := range lang.Variants {
			r.byLocale[normalizeLocale(v.Code)] = localeEntry{languageIdx: li, variantIdx: vi}
		}
	}
	return r
}

// normalizeLocale 统一为小写并把下划线视作连字符（fr_FR == fr-FR）
func normalizeLocale(code string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
}

// Lookup 按地区代码查询语言与变体
func (r *LocaleRegistry) Lookup(localeCode string) (entity.Language, entity.LocaleVariant, bool) {
	e, ok := r.byLocale[normalizeLocale(localeCode)]
	if !ok {
		return entity.Language{}, entity.LocaleVariant{}, false
	}
	lang := r.languages[e.languageIdx]
	return lang, lang.Variants[e.variantIdx], true
}

// DefaultLocaleFor 返回语言的默认地区代码
func (r *LocaleRegistry) DefaultLocaleFor(languageCode string) (string, bool) {
	li, ok := r.byLang[strings.ToLower(strings.TrimSpace(languageCode))]
	if !ok {
		return "", false
	}
	v, ok := r.languages[li].DefaultVariant()
	if !ok {
		return "", false
	}
	return v.Code, true
}

// Resolve 解析地区代码，无法识别时回退到 fr-FR
//
// 也接受裸语言代码（如 "es"），解析为该语言的默认地区。
func (r *LocaleRegistry) Resolve(localeCode string) (entity.ResolvedLocale, bool) {
	if lang, v, ok := r.Lookup(localeCode); ok {
		return resolved(lang, v), true
	}
	if def, ok := r.DefaultLocaleFor(localeCode); ok {
		lang, v, _ := r.Lookup(def)
		return resolved(lang, v), true
	}
	lang, v, _ := r.Lookup(DefaultLocale)
	return resolved(lang, v), false
}

func resolved(lang entity.Language, v entity.LocaleVariant) entity.ResolvedLocale {
	return entity.ResolvedLocale{
		Locale:       v.Code,
		LanguageCode: lang.Code,
		LanguageName: lang.Name,
		CountryName:  v.Country,
	}
}

// Languages 返回全部语言的副本，顺序固定
func (r *LocaleRegistry) Languages() []entity.Language {
	out := make([]entity.Language, len(r.languages))
	for i, lang := range r.languages {
		lang.Variants = append([]entity.LocaleVariant(nil), lang.Variants...)
		out[i] = lang
	}
	return out
}
