package business

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe    = regexp.MustCompile(`(\d+\.?\d*)`)
	integerRe   = regexp.MustCompile(`(\d+)`)
	phoneJunkRe = regexp.MustCompile(`[^\d+\-()\s]`)
	spacesRe    = regexp.MustCompile(`\s+`)
	phoneRunRe  = regexp.MustCompile(`[+()\-\s\d]{10,}`)
	digitRe     = regexp.MustCompile(`\d`)
)

const maxPriceLevel = 4

// CleanRating returns the first number found in s, or 0.
func CleanRating(s string) float64 {
	m := numberRe.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// CleanReviewsCount returns the first integer in s after dropping thousands
// separators, or 0.
func CleanReviewsCount(s string) int {
	m := integerRe.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// CleanPhone strips everything except digits, "+", "-", parentheses and
// single spaces.
func CleanPhone(s string) string {
	if s == "" {
		return ""
	}
	s = phoneJunkRe.ReplaceAllString(s, "")
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// IsValidPhone reports whether s looks like a phone number: a run of at least
// ten phone characters carrying at least ten digits.
func IsValidPhone(s string) bool {
	if s == "" {
		return false
	}
	return phoneRunRe.MatchString(s) && len(digitRe.FindAllString(s, -1)) >= 10
}

// PriceLevel converts "$".."$$$$" into 1..4. Anything without a dollar sign
// is 0.
func PriceLevel(s string) int {
	n := strings.Count(s, "$")
	if n > maxPriceLevel {
		return maxPriceLevel
	}
	return n
}

// ParseHours splits "Day: hours" lines into a map. Lines without a colon are
// skipped.
func ParseHours(s string) map[string]string {
	hours := make(map[string]string)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		day, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		hours[strings.TrimSpace(day)] = strings.TrimSpace(value)
	}
	return hours
}

// Validate reports whether r carries the minimum required data.
func Validate(r Record) bool {
	return strings.TrimSpace(r.Name) != ""
}
