package helper

import (
	"strings"
	"unicode/utf8"
)

// MinQueryLength 検索を実行する最小文字数
const MinQueryLength = 2

// NormalizeQuery は前後の空白を除き小文字化する
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// IsSearchable はクエリが検索可能な長さか（文字数で判定）
func IsSearchable(q string) bool {
	return utf8.RuneCountInString(q) >= MinQueryLength
}

// ContainsFold は大文字小文字を区別せずに部分一致を判定する。
// normalizedQueryはNormalizeQuery済みであること
func ContainsFold(text, normalizedQuery string) bool {
	if normalizedQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), normalizedQuery)
}
