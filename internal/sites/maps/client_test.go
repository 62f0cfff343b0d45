package maps

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gmapscrape/internal/business"
	"gmapscrape/internal/extractor"
	"gmapscrape/internal/scraper"
)

const resultFixture = `
<div role="article" aria-label="Blue Door Cafe">
  <a class="hfpxzc" aria-label="Blue Door Cafe" href="https://www.google.com/maps/place/Blue+Door+Cafe/@39.78,-89.65,17z/data=!3d39.7817!4d-89.6501"></a>
  <div class="qBF1Pd fontHeadlineSmall">Blue Door Cafe</div>
  <span class="MW4etd">4.6</span>
  <span class="UY7F9">(1,234)</span>
  <div class="W4Efsd">
    <div class="W4Efsd"><span><span>Coffee shop</span></span><span> · 123 Main St</span></div>
  </div>
</div>`

const sidebarFixture = `
<div role="main">
  <h1 class="DUwDvf lfPIob">Blue Door Cafe</h1>
  <div class="F7nice">
    <span aria-hidden="true">4.6</span>
    <span aria-label="1,234 reviews">(1,234)</span>
  </div>
  <span aria-label="Price: $$">$$</span>
  <button jsaction="pane.rating.category">Coffee shop</button>
  <button data-item-id="address" aria-label="Address: 123 Main St, Springfield, IL 62701">
    <div class="Io6YTe">123 Main St, Springfield, IL 62701</div>
  </button>
  <button data-item-id="phone:tel:+12175550100" aria-label="Phone: (217) 555-0100">
    <div class="Io6YTe">(217) 555-0100</div>
  </button>
  <a data-item-id="authority" href="https://bluedoor.example.com/">bluedoor.example.com</a>
  <button data-item-id="oh"><div class="Io6YTe">Open · Closes 6 PM</div></button>
  <div class="PYvSYb">Cozy neighbourhood cafe serving single-origin coffee.</div>
</div>`

func TestResultTable(t *testing.T) {
	snap, err := extractor.Parse(resultFixture)
	require.NoError(t, err)

	var rec business.Record
	set := resultTable.Fill(snap, &rec, basicFields...)
	require.Len(t, set, len(basicFields))
	require.Equal(t, "Blue Door Cafe", rec.Name)
	require.Equal(t, "4.6", rec.Rating)
	require.Equal(t, "1,234", rec.ReviewsCount)
	require.Equal(t, "Coffee shop", rec.Category)
	require.Contains(t, rec.URL, "/maps/place/Blue+Door+Cafe")
}

func TestSidebarTable(t *testing.T) {
	snap, err := extractor.Parse(sidebarFixture)
	require.NoError(t, err)

	var rec business.Record
	sidebarTable.Fill(snap, &rec, detailFields...)
	require.Equal(t, "Blue Door Cafe", rec.Name)
	require.Equal(t, "4.6", rec.Rating)
	require.Equal(t, "1,234", rec.ReviewsCount)
	require.Equal(t, "Coffee shop", rec.Category)
	require.Equal(t, "123 Main St, Springfield, IL 62701", rec.Address)
	require.Equal(t, "(217) 555-0100", rec.Phone)
	require.Equal(t, "https://bluedoor.example.com/", rec.Website)
	require.Equal(t, "Open · Closes 6 PM", rec.Hours)
	require.Contains(t, rec.PriceRange, "$$")
	require.Equal(t, "Cozy neighbourhood cafe serving single-origin coffee.", rec.Description)
}

func TestApplyDetailKeepsBasicName(t *testing.T) {
	basicSnap, err := extractor.Parse(resultFixture)
	require.NoError(t, err)
	rec := business.Record{Index: 3}
	resultTable.Fill(basicSnap, &rec, basicFields...)

	detail := business.Record{Name: "blue door  cafe", Rating: "4.7", Phone: "(217) 555-0100"}
	require.True(t, applyDetail(&rec, detail))

	require.Equal(t, 3, rec.Index)
	require.Equal(t, "Blue Door Cafe", rec.Name)
	require.Equal(t, "4.7", rec.Rating)
	require.Equal(t, "(217) 555-0100", rec.Phone)
}

func TestApplyDetailUsesSidebarNameWhenMissing(t *testing.T) {
	rec := business.Record{Rating: "4.1"}
	require.True(t, applyDetail(&rec, business.Record{Name: "Corner Bakery", Address: "9 Elm St"}))
	require.Equal(t, "Corner Bakery", rec.Name)
	require.Equal(t, "9 Elm St", rec.Address)
	require.Equal(t, "4.1", rec.Rating)
}

func TestApplyDetailRejectsOtherPlace(t *testing.T) {
	sidebarSnap, err := extractor.Parse(sidebarFixture)
	require.NoError(t, err)
	var stale business.Record
	sidebarTable.Fill(sidebarSnap, &stale, detailFields...)

	first := business.Record{Name: "Blue Door Cafe"}
	require.True(t, applyDetail(&first, stale))

	second := business.Record{Name: "Corner Bakery", Rating: "4.2"}
	require.False(t, applyDetail(&second, stale))
	require.Equal(t, business.Record{Name: "Corner Bakery", Rating: "4.2"}, second)

	merged := business.Merge([]business.Record{first, second})
	require.Len(t, merged, 2)
}

func TestResultKey(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "cid",
			html: `<div><a data-cid="42" href="https://www.google.com/maps/place/A"></a></div>`,
			want: "data-cid:42",
		},
		{
			name: "feature id",
			html: `<div data-feature-id="0x1:0x2"><span>A</span></div>`,
			want: "data-feature-id:0x1:0x2",
		},
		{
			name: "place link",
			html: `<div><a class="hfpxzc" href="https://www.google.com/maps/place/A"></a></div>`,
			want: "href:https://www.google.com/maps/place/A",
		},
		{
			name: "nothing to key on",
			html: `<div><span>A</span></div>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := extractor.Parse(tt.html)
			require.NoError(t, err)
			require.Equal(t, tt.want, resultKey(snap))
		})
	}
}

func TestNormalize(t *testing.T) {
	rec := business.Record{
		Name:         "  Blue Door Cafe ",
		ReviewsCount: "1.234",
		Phone:        "Phone: +1 217-555-0100",
		URL:          "https://www.google.com/maps/place/X/data=!3d39.7817!4d-89.6501",
	}
	normalize(&rec)

	require.Equal(t, "Blue Door Cafe", rec.Name)
	require.Equal(t, "1234", rec.ReviewsCount)
	require.Equal(t, "+1 217-555-0100", rec.Phone)
	require.Equal(t, "39.7817000", rec.Latitude)
	require.Equal(t, "-89.6501000", rec.Longitude)
	require.NotEmpty(t, rec.PlusCode)

	noCount := business.Record{ReviewsCount: "no reviews"}
	normalize(&noCount)
	require.Empty(t, noCount.ReviewsCount)
}

func TestSearchURL(t *testing.T) {
	require.Equal(t,
		"https://www.google.com/maps/search/coffee+shops+Austin%2C+TX?hl=en",
		SearchURL("coffee shops", "Austin, TX"))
	require.Equal(t,
		"https://www.google.com/maps/search/pizza?hl=en",
		SearchURL("  pizza ", ""))
}

func TestIsPlaceURL(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"https://www.google.com/maps/place/Blue+Door+Cafe/@39.78,-89.65,17z", true},
		{"https://www.google.de/maps/place/X", true},
		{"https://maps.app.goo.gl/abc123", true},
		{"https://example.com/maps/place/X", false},
		{"https://www.google.com/search?q=cafe", false},
		{"not a link", false},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			require.Equal(t, tt.want, IsPlaceURL(tt.link))
		})
	}
}

func TestScrapersRegistered(t *testing.T) {
	s, ok := scraper.Get("MAPS")
	require.True(t, ok)
	require.Equal(t, "maps", s.Name())

	_, ok = scraper.Get("maps.place")
	require.True(t, ok)
}
