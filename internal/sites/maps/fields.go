package maps

import (
	"regexp"

	"gmapscrape/internal/business"
	"gmapscrape/internal/extractor"
)

// Containers that signal the results view has rendered.
var resultsContainers = []string{
	`div[role="feed"]`,
	`[role="main"]`,
	`.m6QErb`,
	`[data-value="Search results"]`,
	`.section-result`,
}

// Scrollable results panels, tried in order.
var panelSelectors = []string{
	`div[role="feed"]`,
	`.m6QErb.DxyBCb.kA9KIf.dS8AEf`,
	`[role="main"] .m6QErb[aria-label]`,
	`.m6QErb`,
	`#pane`,
	`.section-scrollbox`,
	`.siAUzd`,
	`div[role="main"] > div > div`,
}

// countSelector marks one loaded result in the panel.
const countSelector = `.hfpxzc`

// Result elements, tried in order. The first selector that yields nodes is
// used for the whole run.
var resultSelectors = []string{
	`div[role="feed"] div[role="article"]`,
	`div[role="article"]`,
	`.Nv2PK`,
	`[data-result-index]`,
	`.hfpxzc`,
	`a[data-cid]`,
	`.VkpGBb`,
	`.bfdHYd`,
	`.section-result`,
	`div[jsaction*="pane.resultItem"]`,
	`a[href*="/maps/place/"]`,
}

// Sidebar headings. The text changes once a clicked result has loaded.
var sidebarHeadings = []string{
	`h1.DUwDvf`,
	`h1[data-attrid="title"]`,
	`[role="main"] h1`,
}

var (
	ratingRe       = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	reviewsParenRe = regexp.MustCompile(`\(([\d.,\s]+)\)`)
	reviewsLabelRe = regexp.MustCompile(`(?i)([\d.,]+)\s*reviews?`)
	starsRe        = regexp.MustCompile(`(\d+)`)
)

// basicFields are read from a result element without opening it.
var basicFields = []business.Field{
	business.FieldName,
	business.FieldRating,
	business.FieldReviewsCount,
	business.FieldCategory,
	business.FieldURL,
}

// detailFields are read from the opened sidebar.
var detailFields = []business.Field{
	business.FieldName,
	business.FieldRating,
	business.FieldReviewsCount,
	business.FieldCategory,
	business.FieldAddress,
	business.FieldPhone,
	business.FieldWebsite,
	business.FieldHours,
	business.FieldPriceRange,
	business.FieldDescription,
}

// resultTable resolves fields inside a single result element.
var resultTable = extractor.Table{
	business.FieldName: {
		{Selector: `.fontHeadlineSmall`, Accept: extractor.IsName},
		{Selector: `.qBF1Pd`, Accept: extractor.IsName},
		{Selector: `.DUwDvf`, Accept: extractor.IsName},
		{Selector: `[role="heading"]`, Accept: extractor.IsName},
		{Selector: `h3`, Accept: extractor.IsName},
		{Selector: `h2`, Accept: extractor.IsName},
		{Selector: `a.hfpxzc`, Source: extractor.Label, Accept: extractor.IsName},
		{Selector: `.fontBodyMedium`, Accept: extractor.IsName},
	},
	business.FieldRating: {
		{Selector: `.MW4etd`, Pattern: ratingRe, Accept: extractor.IsRating},
		{Selector: `[aria-label*="stars"]`, Source: extractor.Label, Pattern: ratingRe, Accept: extractor.IsRating},
		{Selector: `.review-score`, Pattern: ratingRe, Accept: extractor.IsRating},
	},
	business.FieldReviewsCount: {
		{Selector: `.UY7F9`, Pattern: reviewsParenRe},
		{Selector: `[aria-label*="eviews"]`, Source: extractor.Label, Pattern: reviewsLabelRe},
	},
	business.FieldCategory: {
		{Selector: `.W4Efsd .W4Efsd > span:first-child > span`, Accept: extractor.IsCategory},
		{Selector: `.DkEaL`, Accept: extractor.IsCategory},
		{Selector: `.W4Efsd:nth-child(2)`, Accept: extractor.IsCategory},
		{Selector: `.fontBodySmall`, Accept: extractor.IsCategory},
	},
	business.FieldURL: {
		{Selector: `a.hfpxzc`, Source: extractor.Href, Accept: extractor.IsPlaceLink},
		{Selector: `a[href*="/maps/place/"]`, Source: extractor.Href, Accept: extractor.IsPlaceLink},
	},
}

// sidebarTable resolves fields in the detail panel of an opened place.
var sidebarTable = extractor.Table{
	business.FieldName: {
		{Selector: `h1.DUwDvf`, Accept: extractor.IsName},
		{Selector: `h1[data-attrid="title"]`, Accept: extractor.IsName},
		{Selector: `.DUwDvf.lfPIob`, Accept: extractor.IsName},
		{Selector: `[role="main"] h1`, Accept: extractor.IsName},
		{Selector: `h1`, Accept: extractor.IsName},
	},
	business.FieldRating: {
		{Selector: `.F7nice span[aria-hidden="true"]`, Pattern: ratingRe, Accept: extractor.IsRating},
		{Selector: `.F7nice span[aria-label*="stars"]`, Source: extractor.Label, Pattern: ratingRe, Accept: extractor.IsRating},
		{Selector: `.F7nice .fontBodyMedium`, Pattern: ratingRe, Accept: extractor.IsRating},
		{Selector: `span[aria-label*="star"]`, Source: extractor.Label, Pattern: ratingRe, Accept: extractor.IsRating},
		{Selector: `.F7nice span`, Pattern: ratingRe, Accept: extractor.IsRating},
	},
	business.FieldReviewsCount: {
		{Selector: `.F7nice span[aria-label*="reviews"]`, Source: extractor.Label, Pattern: reviewsLabelRe},
		{Selector: `.F7nice span[aria-label*="reviews"]`, Pattern: reviewsParenRe},
		{Selector: `span[aria-label*="reviews"]`, Source: extractor.Label, Pattern: reviewsLabelRe},
		{Selector: `button[aria-label*="reviews"]`, Source: extractor.Label, Pattern: reviewsLabelRe},
	},
	business.FieldCategory: {
		{Selector: `button[jsaction*="category"]`, Accept: extractor.IsCategory},
		{Selector: `button.DkEaL`, Accept: extractor.IsCategory},
		{Selector: `.DkEaL`, Accept: extractor.IsCategory},
		{Selector: `.skqShb button`, Accept: extractor.IsCategory},
	},
	business.FieldAddress: {
		{Selector: `button[data-item-id="address"]`, Source: extractor.Label, Prefix: "Address:", Accept: extractor.IsAddress},
		{Selector: `button[data-item-id="address"]`, Source: extractor.Inner, Within: `.Io6YTe`, Accept: extractor.IsAddress},
		{Selector: `button[aria-label*="Address"]`, Source: extractor.Label, Prefix: "Address:", Accept: extractor.IsAddress},
		{Selector: `button.CsEnBe[aria-label*="Address"]`, Source: extractor.Inner, Within: `.Io6YTe`, Accept: extractor.IsAddress},
	},
	business.FieldPhone: {
		{Selector: `button[data-item-id*="phone"]`, Source: extractor.Label, Prefix: "Phone:", Accept: extractor.IsPhone},
		{Selector: `button[data-item-id*="phone"]`, Source: extractor.Inner, Within: `.Io6YTe`, Accept: extractor.IsPhone},
		{Selector: `button[aria-label*="Phone"]`, Source: extractor.Label, Prefix: "Phone:", Accept: extractor.IsPhone},
		{Selector: `a[href^="tel:"]`, Source: extractor.Href, Prefix: "tel:", Accept: extractor.IsPhone},
		{Selector: `button[aria-label*="Call"]`, Source: extractor.Inner, Within: `.Io6YTe`, Accept: extractor.IsPhone},
	},
	business.FieldWebsite: {
		{Selector: `a[data-item-id="authority"]`, Source: extractor.Href, Accept: extractor.IsWebsite},
		{Selector: `button[aria-label*="website"] + div a`, Source: extractor.Href, Accept: extractor.IsWebsite},
		{Selector: `a[href^="http"]:not([href*="google"])`, Source: extractor.Href, Accept: extractor.IsWebsite},
	},
	business.FieldHours: {
		{Selector: `button[data-item-id="oh"]`, Source: extractor.Inner, Within: `.Io6YTe`, Accept: extractor.IsHours},
		{Selector: `[data-item-id="oh"]`, Source: extractor.Label, Accept: extractor.IsHours},
		{Selector: `div[aria-label*="hours"]`, Source: extractor.Label, Accept: extractor.IsHours},
		{Selector: `button[aria-label*="hours"]`, Source: extractor.Inner, Within: `.Io6YTe`, Accept: extractor.IsHours},
		{Selector: `.OqCZI .ZDu9vd`, Accept: extractor.IsHours},
	},
	business.FieldPriceRange: {
		{Selector: `span[aria-label^="Price"]`, Source: extractor.Label, Accept: extractor.IsPrice},
		{Selector: `[aria-label*="Price"]`, Accept: extractor.IsPrice},
		{Selector: `[aria-label*="Price"]`, Source: extractor.Label, Accept: extractor.IsPrice},
		{Selector: `.price`, Accept: extractor.IsPrice},
		{Selector: `[data-price]`, Accept: extractor.IsPrice},
	},
	business.FieldDescription: {
		{Selector: `.PYvSYb`, Accept: extractor.IsDescription, Limit: 500},
		{Selector: `.wiI7pd`, Accept: extractor.IsDescription, Limit: 500},
		{Selector: `.VpMB0`, Accept: extractor.IsDescription, Limit: 500},
		{Selector: `.section-editorial-quote`, Accept: extractor.IsDescription, Limit: 500},
		{Selector: `.section-editorial-text`, Accept: extractor.IsDescription, Limit: 500},
	},
}

// Review parts, resolved inside a single [data-review-id] node.
var reviewTable = map[string][]extractor.Strategy{
	"author": {
		{Selector: `.d4r55`},
		{Selector: `button[aria-label^="Photo of"]`, Source: extractor.Label, Prefix: "Photo of"},
		{Selector: `[aria-label*="Photo of"]`},
	},
	"rating": {
		{Selector: `span.kvMYJc[aria-label*="star"]`, Source: extractor.Label, Pattern: starsRe},
		{Selector: `[aria-label*="star"]`, Source: extractor.Label, Pattern: starsRe},
		{Selector: `.fzvQIb`, Pattern: starsRe},
	},
	"date": {
		{Selector: `.rsqaWe`},
		{Selector: `.xRkPPb`},
	},
	"text": {
		{Selector: `.wiI7pd`},
		{Selector: `.MyEned`},
	},
	"helpful": {
		{Selector: `[aria-label*="helpful"]`, Source: extractor.Label},
		{Selector: `.pkWtMe`},
	},
}

var menuItemSelectors = []string{`.section-layout-flex-vertical`, `[data-item-id^="menu"]`, `.jXdQZb`}

var menuTable = map[string][]extractor.Strategy{
	"name":        {{Selector: `.section-layout-title`}, {Selector: `.fontTitleSmall`}},
	"price":       {{Selector: `.section-layout-price`}, {Selector: `.fontBodyMedium`, Accept: extractor.IsPrice}},
	"description": {{Selector: `.section-layout-description`}, {Selector: `.fontBodySmall`}},
}

var qaItemSelectors = []string{`.section-layout-root`, `[data-question-id]`}

var qaTable = map[string][]extractor.Strategy{
	"question": {{Selector: `.section-layout-question`}, {Selector: `[data-question-id] .fontBodyMedium`}},
	"answer":   {{Selector: `.section-layout-answer`}, {Selector: `.fontBodySmall`}},
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
