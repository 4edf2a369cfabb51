package common

import (
	"os"
	"strings"
)

// FileExists reports whether the named file or directory exists.
func FileExists(file string) bool {
	_, err := os.Stat(file)
	return err == nil || os.IsExist(err)
}

// IfEmptyStr returns def when src is blank.
func IfEmptyStr(src string, def string) string {
	if strings.TrimSpace(src) == "" {
		return def
	}
	return src
}

// SplitTrim splits s on sep, trimming and dropping empty items.
func SplitTrim(s, sep string) []string {
	var items []string
	for _, v := range strings.Split(s, sep) {
		if v = strings.TrimSpace(v); v != "" {
			items = append(items, v)
		}
	}
	return items
}

// UniqueInt64 returns the distinct values of src, keeping first-seen order.
func UniqueInt64(src []int64) []int64 {
	seen := make(map[int64]struct{}, len(src))
	out := make([]int64, 0, len(src))
	for _, v := range src {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
