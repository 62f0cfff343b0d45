package enrich

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mcnijman/go-emailaddress"
)

var blockedPrefixes = []string{
	"noreply@",
	"no-reply@",
	"no_reply@",
	"mailer-daemon@",
	"postmaster@",
}

var blockedDomains = []string{
	"example.com",
	"test.com",
	"localhost",
	"sentry.io",
	"wixpress.com",
	"sentry-next.wixpress.com",
}

// Sites that host profiles rather than a business's own pages.
var socialHosts = []string{
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"youtube.com",
	"tiktok.com",
	"pinterest.com",
	"yelp.com",
	"tripadvisor.com",
	"google.com",
}

var contactPaths = []string{
	"/contact", "/contacts", "/contact-us", "/kontakt", "/contacto",
	"/get-in-touch", "/about", "/about-us", "/impressum",
}

var contactTexts = []string{"contact", "kontakt", "get in touch", "about us", "impressum"}

var skipExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".zip", ".doc", ".docx"}

// Eligible reports whether site is an absolute http(s) link to a business's
// own site.
func Eligible(site string) bool {
	u, err := url.Parse(strings.TrimSpace(site))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, s := range socialHosts {
		if host == s || strings.HasSuffix(host, "."+s) {
			return false
		}
	}
	return true
}

// IsValidEmail reports whether s parses as an address and is not on a
// blocklist.
func IsValidEmail(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	if _, err := emailaddress.Parse(s); err != nil {
		return false
	}
	for _, p := range blockedPrefixes {
		if strings.HasPrefix(s, p) {
			return false
		}
	}
	domain := s[strings.LastIndex(s, "@")+1:]
	for _, d := range blockedDomains {
		if domain == d {
			return false
		}
	}
	return true
}

// Emails collects addresses from mailto links and then from the visible text
// of doc. Results are lowercased, validated and deduplicated in order found.
func Emails(doc *goquery.Selection) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(v string) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] || !IsValidEmail(v) {
			return
		}
		seen[v] = true
		out = append(out, v)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if len(href) < len("mailto:") || !strings.EqualFold(href[:len("mailto:")], "mailto:") {
			return
		}
		v := href[len("mailto:"):]
		if i := strings.IndexByte(v, '?'); i >= 0 {
			v = v[:i]
		}
		if u, err := url.PathUnescape(v); err == nil {
			v = u
		}
		for _, part := range strings.Split(v, ",") {
			add(part)
		}
	})

	visible := doc.Clone()
	visible.Find("script, style, noscript").Remove()
	for _, addr := range emailaddress.Find([]byte(visible.Text()), false) {
		add(addr.String())
	}
	return out
}

// ContactPages lists same-host links that look like contact or about pages,
// path matches first, capped at limit.
func ContactPages(doc *goquery.Selection, baseURL string, limit int) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	type candidate struct {
		url      string
		priority int
	}
	var found []candidate
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		if abs.Host != base.Host {
			return
		}
		ext := strings.ToLower(path.Ext(abs.Path))
		for _, skip := range skipExtensions {
			if ext == skip {
				return
			}
		}
		link := abs.String()
		if seen[link] || link == base.String() {
			return
		}

		p := strings.ToLower(abs.Path)
		for i, pattern := range contactPaths {
			if strings.Contains(p, pattern) {
				seen[link] = true
				found = append(found, candidate{link, i})
				return
			}
		}
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		for _, pattern := range contactTexts {
			if strings.Contains(text, pattern) {
				seen[link] = true
				found = append(found, candidate{link, len(contactPaths) + len(found)})
				return
			}
		}
	})

	sort.SliceStable(found, func(i, j int) bool { return found[i].priority < found[j].priority })
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.url
	}
	return out
}
