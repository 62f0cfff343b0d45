package extractor

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"gmapscrape/internal/business"
)

// IsName 名称长度大于 1 且不是 "Directions" 按钮
func IsName(s string) bool {
	return len([]rune(s)) > 1 && !strings.Contains(s, "Directions")
}

// IsRating 评分在 [0,5] 之间
func IsRating(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v >= 0 && v <= 5
}

// IsCategory 排除混入分类位置的评分和路线按钮
func IsCategory(s string) bool {
	r := []rune(s)
	for i := 0; i < len(r) && i < 3; i++ {
		if unicode.IsDigit(r[i]) {
			return false
		}
	}
	return !strings.Contains(strings.ToLower(s), "directions")
}

// IsAddress 地址长度大于 10
func IsAddress(s string) bool {
	return len([]rune(s)) > 10
}

// IsPhone 判断是否像电话号码
func IsPhone(s string) bool {
	return business.IsValidPhone(s)
}

// IsWebsite 非 Google 的 http(s) 绝对链接
func IsWebsite(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return !strings.Contains(strings.ToLower(s), "google")
}

// IsHours 包含 open/closed 或时间
func IsHours(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "open") || strings.Contains(l, "closed") || strings.Contains(s, ":")
}

// IsPrice "$" 价位或包含 price 的文本
func IsPrice(s string) bool {
	return strings.Contains(s, "$") || strings.Contains(strings.ToLower(s), "price")
}

// IsDescription 长度大于 20 且不是评论中的相对时间
func IsDescription(s string) bool {
	return len([]rune(s)) > 20 && !strings.Contains(strings.ToLower(s), "ago")
}

// IsPlaceLink Maps 地点链接
func IsPlaceLink(s string) bool {
	return strings.Contains(s, "/maps/place/")
}

// NotEmpty 非空即可
func NotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}
