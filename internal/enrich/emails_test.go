package enrich

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gmapscrape/internal/extractor"
)

func TestEligible(t *testing.T) {
	tests := []struct {
		name    string
		website string
		want    bool
	}{
		{name: "empty", website: "", want: false},
		{name: "valid https", website: "https://bluedoor.cafe", want: true},
		{name: "valid http with path", website: "http://bluedoor.cafe/home", want: true},
		{name: "facebook", website: "https://facebook.com/somepage", want: false},
		{name: "facebook subdomain", website: "https://m.Facebook.com/somepage", want: false},
		{name: "instagram", website: "https://instagram.com/somepage", want: false},
		{name: "yelp", website: "https://www.yelp.com/biz/something", want: false},
		{name: "google", website: "https://www.google.com/maps/place/x", want: false},
		{name: "lookalike host", website: "https://notfacebook.com", want: true},
		{name: "no scheme", website: "bluedoor.cafe", want: false},
		{name: "ftp", website: "ftp://bluedoor.cafe", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Eligible(tt.website), "Eligible(%q)", tt.website)
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{name: "valid email", email: "info@business.com", want: true},
		{name: "mixed case", email: " Info@Business.com ", want: true},
		{name: "noreply prefix", email: "noreply@business.com", want: false},
		{name: "no-reply prefix", email: "no-reply@business.com", want: false},
		{name: "mailer-daemon prefix", email: "mailer-daemon@business.com", want: false},
		{name: "example.com domain", email: "user@example.com", want: false},
		{name: "sentry.io domain", email: "user@sentry.io", want: false},
		{name: "not an email", email: "not-an-email", want: false},
		{name: "empty", email: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsValidEmail(tt.email), "IsValidEmail(%q)", tt.email)
		})
	}
}

func TestEmails(t *testing.T) {
	doc, err := extractor.Parse(`<html><body>
<a href="MAILTO:Info@BlueDoor.cafe?subject=Hello">Email us</a>
<a href="mailto:noreply@bluedoor.cafe">No reply</a>
<p>Write to sales@bluedoor.cafe or info@bluedoor.cafe for catering.</p>
<p>Test address: someone@example.com</p>
<script>var hidden = "tracker@bluedoor.cafe";</script>
</body></html>`)
	require.NoError(t, err)

	require.Equal(t, []string{"info@bluedoor.cafe", "sales@bluedoor.cafe"}, Emails(doc))
}

func TestEmailsNone(t *testing.T) {
	doc, err := extractor.Parse(`<p>Call us on 555 0100</p>`)
	require.NoError(t, err)
	require.Empty(t, Emails(doc))
}

func TestContactPages(t *testing.T) {
	doc, err := extractor.Parse(`<html><body>
<a href="#top">Top</a>
<a href="/team">Get in touch</a>
<a href="/about">Our story</a>
<a href="/contact-us">Contact</a>
<a href="/contact-us#form">Contact form</a>
<a href="https://other.example.org/contact">Partner</a>
<a href="/menu.pdf">Contact menu</a>
<a href="javascript:void(0)">Contact</a>
<a href="/">Home</a>
</body></html>`)
	require.NoError(t, err)

	require.Equal(t, []string{
		"https://bluedoor.cafe/contact-us",
		"https://bluedoor.cafe/about",
		"https://bluedoor.cafe/team",
	}, ContactPages(doc, "https://bluedoor.cafe/", 0))

	require.Equal(t, []string{
		"https://bluedoor.cafe/contact-us",
		"https://bluedoor.cafe/about",
	}, ContactPages(doc, "https://bluedoor.cafe/", 2))

	require.Nil(t, ContactPages(doc, "://bad", 3))
}
