package entity

import "strings"

// Difficulty CEFR 等级
type Difficulty string

const (
	DifficultyA1 Difficulty = "A1"
	DifficultyA2 Difficulty = "A2"
	DifficultyB1 Difficulty = "B1"
	DifficultyB2 Difficulty = "B2"
	DifficultyC1 Difficulty = "C1"
	DifficultyC2 Difficulty = "C2"
)

// ParseDifficulty 解析 CEFR 等级（大小写不敏感）
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case DifficultyA1, DifficultyA2, DifficultyB1, DifficultyB2, DifficultyC1, DifficultyC2:
		return d, true
	default:
		return "", false
	}
}

// ScenarioProposal 角色扮演场景提案
//
// OpeningLine 必须是 NPC 对学习者说的第一句话，而不是学习者的台词。
type ScenarioProposal struct {
	Setting              string   `json:"setting"`
	SettingDescription   string   `json:"setting_description"`
	Objective            string   `json:"objective"`
	Conflict             string   `json:"conflict"`
	Difficulty           string   `json:"difficulty"`
	OpeningLine          string   `json:"opening_line"`
	CharacterName        string   `json:"character_name"`
	CharacterPersonality string   `json:"character_personality"`
	Hints                []string `json:"hints"`
	Locale               string   `json:"locale"`
	LanguageName         string   `json:"language_name"`
	CountryName          string   `json:"country_name"`
}

// WithLocale 返回回填了地区字段的副本
func (s ScenarioProposal) WithLocale(loc ResolvedLocale) ScenarioProposal {
	s.Locale = loc.Locale
	s.LanguageName = loc.LanguageName
	s.CountryName = loc.CountryName
	return s
}
