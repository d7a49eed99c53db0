package node

import (
	"strings"
	"unicode/utf8"
)

// TruncateByRunes 按字符截断，超出部分以 "..." 代替
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// LogPreview 模型输出的单行预览：折叠空白后截断
func LogPreview(raw string, maxRunes int) string {
	return TruncateByRunes(strings.Join(strings.Fields(raw), " "), maxRunes)
}
