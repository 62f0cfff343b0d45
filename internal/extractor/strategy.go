package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gmapscrape/internal/business"
)

// Source 取值来源
type Source int

const (
	// 元素可见文本
	Text Source = iota
	// Strategy.Attr 指定的属性
	Attr
	// aria-label，设置 Prefix 时必须包含并只保留其后的部分
	Label
	// href 属性，设置 Prefix 时必须以其开头并去掉前缀
	Href
	// 第一个匹配 Strategy.Within 的子元素文本
	Inner
)

// Strategy 一个查找步骤：选择器、取值来源、可选转换和合理性检查
type Strategy struct {
	Selector string
	Source   Source
	Attr     string
	Prefix   string
	Within   string

	// 保留第一个捕获组，没有捕获组时保留整个匹配
	Pattern *regexp.Regexp
	// 截断到指定字符数
	Limit int
	// 不合理的值被拒绝，继续尝试下一个匹配或策略
	Accept func(string) bool
}

// Table 字段到有序备选策略的映射
type Table map[business.Field][]Strategy

// Resolve 按顺序尝试策略，检查每个选择器匹配的所有元素
// 返回第一个通过检查的值，否则返回 ""
func Resolve(root *goquery.Selection, strategies []Strategy) string {
	if root == nil {
		return ""
	}
	for _, st := range strategies {
		var found string
		root.Find(st.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v, ok := st.apply(s); ok {
				found = v
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func (st Strategy) apply(s *goquery.Selection) (string, bool) {
	raw, ok := st.read(s)
	if !ok {
		return "", false
	}
	v := clean(raw)
	if st.Pattern != nil {
		m := st.Pattern.FindStringSubmatch(v)
		if m == nil {
			return "", false
		}
		v = m[0]
		if len(m) > 1 {
			v = m[1]
		}
		v = strings.TrimSpace(v)
	}
	if v == "" {
		return "", false
	}
	if st.Accept != nil && !st.Accept(v) {
		return "", false
	}
	if st.Limit > 0 {
		v = truncate(v, st.Limit)
	}
	return v, true
}

func (st Strategy) read(s *goquery.Selection) (string, bool) {
	switch st.Source {
	case Attr:
		return s.Attr(st.Attr)
	case Label:
		v, ok := s.Attr("aria-label")
		if !ok {
			return "", false
		}
		if st.Prefix == "" {
			return v, true
		}
		_, after, found := strings.Cut(v, st.Prefix)
		return after, found
	case Href:
		v, ok := s.Attr("href")
		if !ok {
			return "", false
		}
		if st.Prefix == "" {
			return v, true
		}
		after, found := strings.CutPrefix(v, st.Prefix)
		return after, found
	case Inner:
		inner := s.Find(st.Within).First()
		if inner.Length() == 0 {
			return "", false
		}
		return inner.Text(), true
	default:
		return s.Text(), true
	}
}

// Fill 从 root 解析各字段并写入 rec，返回已设置的字段
func (t Table) Fill(root *goquery.Selection, rec *business.Record, fields ...business.Field) []business.Field {
	var set []business.Field
	for _, f := range fields {
		if v := Resolve(root, t[f]); v != "" {
			rec.Set(f, v)
			set = append(set, f)
		}
	}
	return set
}

// clean 合并空白，并去掉 Maps 在侧栏值前插入的图标字符
func clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if r >= 0xE000 && r <= 0xF8FF {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
