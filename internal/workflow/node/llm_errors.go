package node

import (
	"encoding/json"
	"errors"
	"strings"
)

// IsMalformedResponseError 判断错误是否来自解析服务端响应失败，
// 与网络或服务端错误区分开。先按错误类型判断，类型信息丢失时再看错误文本。
func IsMalformedResponseError(err error) bool {
	if err == nil {
		return false
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unmarshal"):
		return true
	case strings.Contains(msg, "invalid character"):
		return true
	case strings.Contains(msg, "unexpected end of json"):
		return true
	case strings.Contains(msg, "failed to parse"):
		return true
	case strings.Contains(msg, "no choices"):
		return true
	default:
		return false
	}
}
