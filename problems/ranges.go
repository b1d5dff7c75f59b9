package problems

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// rangeAt returns the span of the JSON value at path. When the value is not
// present the nearest existing ancestor is used, ending at the whole
// document.
func rangeAt(text []byte, path []any) Range {
	for n := len(path); n > 0; n-- {
		res := gjson.GetBytes(text, gjsonPath(path[:n]))
		if res.Exists() && res.Raw != "" {
			return Range{Offset: res.Index, Length: len(res.Raw)}
		}
	}
	trimmed := strings.TrimSpace(string(text))
	return Range{Offset: strings.Index(string(text), trimmed), Length: len(trimmed)}
}

func gjsonPath(path []any) string {
	parts := make([]string, len(path))
	for i, p := range path {
		switch v := p.(type) {
		case int:
			parts[i] = strconv.Itoa(v)
		case string:
			parts[i] = escapeKey(v)
		}
	}
	return strings.Join(parts, ".")
}

// escapeKey escapes the gjson path syntax characters in an object key.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%', '[', ']', '{', '}', '(', ')', ',', '"', ' ':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
