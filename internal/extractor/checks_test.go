package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecks(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) bool
		in    string
		want  bool
	}{
		{"name ok", IsName, "Joe's", true},
		{"name single char", IsName, "J", false},
		{"name directions", IsName, "Directions", false},
		{"rating ok", IsRating, "4.5", true},
		{"rating zero", IsRating, "0", true},
		{"rating too high", IsRating, "12", false},
		{"rating text", IsRating, "great", false},
		{"category ok", IsCategory, "Pizza restaurant", true},
		{"category rating leak", IsCategory, "4.5(120)", false},
		{"category directions", IsCategory, "Get directions", false},
		{"address ok", IsAddress, "1 Infinite Loop", true},
		{"address short", IsAddress, "Main St", false},
		{"phone ok", IsPhone, "(217) 555-0100", true},
		{"phone short", IsPhone, "555-0100", false},
		{"website ok", IsWebsite, "https://example.com/menu", true},
		{"website google", IsWebsite, "https://www.google.com/maps", false},
		{"website relative", IsWebsite, "/maps/place/x", false},
		{"website ftp", IsWebsite, "ftp://example.com", false},
		{"hours open", IsHours, "Open ⋅ Closes 10 PM", true},
		{"hours time", IsHours, "9:00 AM", true},
		{"hours other", IsHours, "Order online", false},
		{"price dollars", IsPrice, "$$", true},
		{"price word", IsPrice, "Price: Moderate", true},
		{"price other", IsPrice, "Cheap", false},
		{"description ok", IsDescription, "Family-run trattoria with handmade pasta", true},
		{"description short", IsDescription, "Nice", false},
		{"description review age", IsDescription, "Visited three weeks ago with friends", false},
		{"place link", IsPlaceLink, "https://www.google.com/maps/place/x", true},
		{"not place link", IsPlaceLink, "https://www.google.com/maps/search/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.check(tt.in))
		})
	}
}
