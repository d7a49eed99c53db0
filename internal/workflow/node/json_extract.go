package node

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// DecodeStage 记录模型输出是在哪一步被解析成功的
type DecodeStage string

const (
	StageDirect    DecodeStage = "direct"
	StageExtracted DecodeStage = "extracted"
	StageFailed    DecodeStage = "failed"
)

// ErrNoJSONObject 模型输出中没有可解析的 JSON 对象
var ErrNoJSONObject = errors.New("no json object in model output")

// ExtractJSONObject 截取第一个 '{' 到最后一个 '}' 之间的内容。
// 模型可能在 JSON 前后夹杂说明文字或代码块标记。
func ExtractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// DecodeJSONObject 按顺序尝试：整体解析、截取后解析。
// 只有语法错误才进入下一步；字段类型不符时该字段保持零值，其余字段照常填充。
// 两步都失败时返回 StageFailed 与错误，由调用方决定兜底方式。
func DecodeJSONObject(raw string, out any) (DecodeStage, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		if err := unmarshalLenient([]byte(trimmed), out); err == nil {
			return StageDirect, nil
		}
	}

	sub, ok := ExtractJSONObject(trimmed)
	if !ok {
		return StageFailed, ErrNoJSONObject
	}
	if err := unmarshalLenient([]byte(sub), out); err != nil {
		return StageFailed, err
	}
	return StageExtracted, nil
}

// unmarshalLenient 忽略 *json.UnmarshalTypeError：encoding/json 遇到类型不符会跳过该字段并继续解码
func unmarshalLenient(b []byte, out any) error {
	err := json.Unmarshal(b, out)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}

// FlexibleString 兼容模型把字符串字段写成数字或布尔值的情况；
// 标量取其 JSON 文本，对象、数组与 null 视为空串
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(b []byte) error {
	*f = FlexibleString(scalarText(b))
	return nil
}

// String 返回去掉首尾空白的文本
func (f FlexibleString) String() string {
	return strings.TrimSpace(string(f))
}

// scalarText 字符串返回其内容，数字与布尔返回字面量，其余返回空串
func scalarText(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	switch c := b[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ""
		}
		return s
	case c == 't' || c == 'f' || c == '-' || (c >= '0' && c <= '9'):
		return string(b)
	default:
		return ""
	}
}

// FlexibleStrings 兼容模型把列表写成单个字符串、标量或 null 的情况；对象视为空列表
type FlexibleStrings []string

func (f *FlexibleStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = nil
	if len(b) == 0 {
		return nil
	}
	if b[0] != '[' {
		if s := scalarText(b); strings.TrimSpace(s) != "" {
			*f = FlexibleStrings{s}
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	out := make(FlexibleStrings, 0, len(items))
	for _, it := range items {
		it = bytes.TrimSpace(it)
		if len(it) == 0 {
			continue
		}
		switch it[0] {
		case '{', '[':
			out = append(out, string(it))
		default:
			if s := scalarText(it); strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	}
	*f = out
	return nil
}

// Strings 返回非 nil 的切片
func (f FlexibleStrings) Strings() []string {
	if f == nil {
		return []string{}
	}
	return []string(f)
}

// FlexibleBool 兼容 true/"true"/"yes" 等写法，无法识别时视为 false
type FlexibleBool bool

func (f *FlexibleBool) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*f = false
		return nil
	}
	switch t := v.(type) {
	case bool:
		*f = FlexibleBool(t)
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			*f = true
		default:
			*f = false
		}
	case float64:
		*f = t != 0
	default:
		*f = false
	}
	return nil
}
