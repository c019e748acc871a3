package slug

import (
	"strings"
	"unicode"
)

// Make は小文字英数字とハイフンだけの slug を作る。
func Make(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// WithSuffix は重複回避用に末尾へ識別子を付ける。
func WithSuffix(base, suffix string) string {
	suffix = Make(suffix)
	if suffix == "" {
		return base
	}
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
