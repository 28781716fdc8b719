package humanize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Humanize turns a monitor key into a display name.
//
//	"daily-backup"      -> "Daily Backup"
//	"daily_backup_job"  -> "Daily Backup Job"
//	"CheckOverduePings" -> "Check Overdue Pings"
//	"cleanup"           -> "Cleanup"
func Humanize(key string) string {
	if key == "" {
		return ""
	}
	switch {
	case strings.Contains(key, "-"):
		return titleWords(key, "-")
	case strings.Contains(key, "_"):
		return titleWords(key, "_")
	}

	first, _ := utf8.DecodeRuneInString(key)
	if unicode.IsUpper(first) {
		return splitPascal(key)
	}
	return upperFirst(key)
}

func titleWords(key, sep string) string {
	parts := strings.Split(key, sep)
	for i, p := range parts {
		parts[i] = upperFirst(strings.ToLower(p))
	}
	return strings.Join(parts, " ")
}

func splitPascal(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
