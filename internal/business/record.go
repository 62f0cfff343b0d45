package business

import "strconv"

// Field names a single attribute of a Record. The string value is the
// column name used in CSV/JSON/XLSX/SQLite output.
type Field string

const (
	FieldIndex          Field = "index"
	FieldName           Field = "name"
	FieldRating         Field = "rating"
	FieldReviewsCount   Field = "reviews_count"
	FieldCategory       Field = "category"
	FieldAddress        Field = "address"
	FieldPhone          Field = "phone"
	FieldWebsite        Field = "website"
	FieldHours          Field = "hours"
	FieldPriceRange     Field = "price_range"
	FieldDescription    Field = "description"
	FieldURL            Field = "url"
	FieldLatitude       Field = "latitude"
	FieldLongitude      Field = "longitude"
	FieldPlusCode       Field = "plus_code"
	FieldEmails         Field = "emails"
	FieldSearchQuery    Field = "search_query"
	FieldSearchLocation Field = "search_location"
)

// Fields is the canonical column order.
var Fields = []Field{
	FieldIndex,
	FieldName,
	FieldRating,
	FieldReviewsCount,
	FieldCategory,
	FieldAddress,
	FieldPhone,
	FieldWebsite,
	FieldHours,
	FieldPriceRange,
	FieldDescription,
	FieldURL,
	FieldLatitude,
	FieldLongitude,
	FieldPlusCode,
	FieldEmails,
	FieldSearchQuery,
	FieldSearchLocation,
}

// Record is one extracted business listing. Empty strings mean the field
// could not be extracted.
type Record struct {
	Index          int    `json:"index"`
	Name           string `json:"name"`
	Rating         string `json:"rating"`
	ReviewsCount   string `json:"reviews_count"`
	Category       string `json:"category"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Website        string `json:"website"`
	Hours          string `json:"hours"`
	PriceRange     string `json:"price_range"`
	Description    string `json:"description"`
	URL            string `json:"url,omitempty"`
	Latitude       string `json:"latitude,omitempty"`
	Longitude      string `json:"longitude,omitempty"`
	PlusCode       string `json:"plus_code,omitempty"`
	Emails         string `json:"emails,omitempty"`
	SearchQuery    string `json:"search_query,omitempty"`
	SearchLocation string `json:"search_location,omitempty"`
}

// Get returns the value of f as a string.
func (r *Record) Get(f Field) string {
	switch f {
	case FieldIndex:
		if r.Index == 0 {
			return ""
		}
		return strconv.Itoa(r.Index)
	case FieldName:
		return r.Name
	case FieldRating:
		return r.Rating
	case FieldReviewsCount:
		return r.ReviewsCount
	case FieldCategory:
		return r.Category
	case FieldAddress:
		return r.Address
	case FieldPhone:
		return r.Phone
	case FieldWebsite:
		return r.Website
	case FieldHours:
		return r.Hours
	case FieldPriceRange:
		return r.PriceRange
	case FieldDescription:
		return r.Description
	case FieldURL:
		return r.URL
	case FieldLatitude:
		return r.Latitude
	case FieldLongitude:
		return r.Longitude
	case FieldPlusCode:
		return r.PlusCode
	case FieldEmails:
		return r.Emails
	case FieldSearchQuery:
		return r.SearchQuery
	case FieldSearchLocation:
		return r.SearchLocation
	}
	return ""
}

// Set assigns v to f. Unknown fields and unparsable indexes are ignored.
func (r *Record) Set(f Field, v string) {
	switch f {
	case FieldIndex:
		if n, err := strconv.Atoi(v); err == nil {
			r.Index = n
		}
	case FieldName:
		r.Name = v
	case FieldRating:
		r.Rating = v
	case FieldReviewsCount:
		r.ReviewsCount = v
	case FieldCategory:
		r.Category = v
	case FieldAddress:
		r.Address = v
	case FieldPhone:
		r.Phone = v
	case FieldWebsite:
		r.Website = v
	case FieldHours:
		r.Hours = v
	case FieldPriceRange:
		r.PriceRange = v
	case FieldDescription:
		r.Description = v
	case FieldURL:
		r.URL = v
	case FieldLatitude:
		r.Latitude = v
	case FieldLongitude:
		r.Longitude = v
	case FieldPlusCode:
		r.PlusCode = v
	case FieldEmails:
		r.Emails = v
	case FieldSearchQuery:
		r.SearchQuery = v
	case FieldSearchLocation:
		r.SearchLocation = v
	}
}

// Key is the best-effort identity used for deduplication.
func (r *Record) Key() string {
	return r.Name + "-" + r.Address
}

// Overlay copies every non-empty field of src into r. The index is kept.
func (r *Record) Overlay(src Record) {
	for _, f := range Fields {
		if f == FieldIndex {
			continue
		}
		if v := src.Get(f); v != "" {
			r.Set(f, v)
		}
	}
}

// Fill copies fields of src into r only where r is empty.
func (r *Record) Fill(src Record) {
	for _, f := range Fields {
		if f == FieldIndex {
			continue
		}
		if r.Get(f) == "" {
			if v := src.Get(f); v != "" {
				r.Set(f, v)
			}
		}
	}
}

// Columns returns the fields that carry a value in at least one record, in
// canonical order. Index and name are always present.
func Columns(records []Record) []Field {
	seen := map[Field]bool{FieldIndex: true, FieldName: true}
	for i := range records {
		for _, f := range Fields {
			if !seen[f] && records[i].Get(f) != "" {
				seen[f] = true
			}
		}
	}

	cols := make([]Field, 0, len(seen))
	for _, f := range Fields {
		if seen[f] {
			cols = append(cols, f)
		}
	}
	return cols
}

// Row renders r as strings in the order of cols.
func (r *Record) Row(cols []Field) []string {
	row := make([]string, len(cols))
	for i, f := range cols {
		row[i] = r.Get(f)
	}
	return row
}
