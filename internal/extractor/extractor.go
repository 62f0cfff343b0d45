package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
)

// Extractor 对页面做 HTML 快照，选择器查找在静态文档上执行
type Extractor struct {
	page    *rod.Page
	timeout time.Duration
}

// New 创建 Extractor，每次快照受 timeout 限制
func New(page *rod.Page, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Extractor{
		page:    page,
		timeout: timeout,
	}
}

// Document 快照整个页面
func (e *Extractor) Document() (*goquery.Selection, error) {
	html, err := e.page.Timeout(e.timeout).HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get page HTML: %w", err)
	}
	return Parse(html)
}

// First 按顺序快照第一个匹配的元素
// 都不匹配时返回 nil 且无错误
func (e *Extractor) First(selectors ...string) (*goquery.Selection, string, error) {
	p := e.page.Timeout(e.timeout)
	for _, sel := range selectors {
		has, el, err := p.Has(sel)
		if err != nil {
			return nil, "", fmt.Errorf("failed to query %s: %w", sel, err)
		}
		if !has {
			continue
		}
		s, err := Element(el)
		if err != nil {
			return nil, "", err
		}
		return s, sel, nil
	}
	return nil, "", nil
}

// Element 快照单个元素
func Element(el *rod.Element) (*goquery.Selection, error) {
	html, err := el.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get element HTML: %w", err)
	}
	return Parse(html)
}

// Parse 将 HTML 片段或文档解析为以文档节点为根的 Selection
func Parse(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc.Selection, nil
}
