// Package validator 纯函数校验工具 + gin绑定标签注册
//
// 这里的函数都没有状态，领域服务和HTTP绑定层共用同一套规则：
//   - ISBN-13 校验位
//   - 出版年份范围
//   - 作者生卒日期顺序
//   - 可借副本与总副本的边界
package validator

import (
	"regexp"
	"strings"
	"time"
)

// MinPublicationYear 活字印刷之前的年份视为非法
const MinPublicationYear = 1450

var (
	isbnDigits = regexp.MustCompile(`^\d{13}$`)
	iso2       = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// NormalizeISBN 去掉连字符和空格
func NormalizeISBN(isbn string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(isbn)
}

// ValidISBN13 校验ISBN-13（允许带连字符/空格）
// 算法：前12位按1、3交替加权求和，校验位 = (10 - sum%10) % 10
func ValidISBN13(isbn string) bool {
	clean := NormalizeISBN(isbn)
	if !isbnDigits.MatchString(clean) {
		return false
	}

	sum := 0
	for i := 0; i < 12; i++ {
		d := int(clean[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := (10 - sum%10) % 10
	return check == int(clean[12]-'0')
}

// ValidPublicationYear 年份需在 [1450, 当前年份] 之间
func ValidPublicationYear(year int, now time.Time) bool {
	return year >= MinPublicationYear && year <= now.Year()
}

// ValidLifespan 出生日期不能晚于今天；有卒日时出生必须早于卒日
func ValidLifespan(birth time.Time, death *time.Time, now time.Time) bool {
	if truncateDay(birth).After(truncateDay(now)) {
		return false
	}
	if death != nil && !truncateDay(birth).Before(truncateDay(*death)) {
		return false
	}
	return true
}

// ValidCopyBounds total>0 且 0 <= available <= total
func ValidCopyBounds(available, total int) bool {
	return total > 0 && available >= 0 && available <= total
}

// ValidISO2 两位字母代码（国家或语言）
func ValidISO2(code string) bool {
	return iso2.MatchString(code)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
