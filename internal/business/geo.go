package business

import (
	"regexp"
	"strconv"

	olc "github.com/google/open-location-code/go"
)

// Place links embed the pin as "!3d<lat>!4d<lng>"; map views use "@lat,lng".
var (
	placePinRe  = regexp.MustCompile(`!3d(-?\d+(?:\.\d+)?)!4d(-?\d+(?:\.\d+)?)`)
	mapCenterRe = regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+)`)
)

const plusCodeLength = 10

// CoordinatesFromURL extracts latitude and longitude from a Google Maps link.
func CoordinatesFromURL(link string) (lat, lng float64, ok bool) {
	m := placePinRe.FindStringSubmatch(link)
	if m == nil {
		m = mapCenterRe.FindStringSubmatch(link)
	}
	if m == nil {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

// Locate fills latitude, longitude and plus code from r.URL when possible.
func (r *Record) Locate() {
	lat, lng, ok := CoordinatesFromURL(r.URL)
	if !ok {
		return
	}
	r.Latitude = strconv.FormatFloat(lat, 'f', 7, 64)
	r.Longitude = strconv.FormatFloat(lng, 'f', 7, 64)
	r.PlusCode = olc.Encode(lat, lng, plusCodeLength)
}
