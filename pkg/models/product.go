package models

import "strings"

// Product is one uploaded document. A draft has no ID and published is
// false; publishing assigns the ID (once, stable thereafter), fills the
// metadata fields and flips published. There is no unpublish.
type Product struct {
	ID          string   `json:"id,omitempty"`
	Filename    string   `json:"filename"`
	Uploader    string   `json:"uploader"`
	Published   bool     `json:"published"`
	Title       string   `json:"title,omitempty"`
	University  string   `json:"university,omitempty"`
	Faculty     string   `json:"faculty,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	Images      []string `json:"images,omitempty"`
	Date        string   `json:"date,omitempty"`
}

// IsDraft reports whether the product has not been published yet.
func (p Product) IsDraft() bool {
	return !p.Published
}

// PriceValue extracts the numeric price from the display string.
func (p Product) PriceValue() int {
	return ExtractPrice(p.Price)
}

// ExtractPrice scrapes the first run of digits out of a price display
// string such as "120 TL". Commas are stripped first; any other
// non-digit characters terminate the run. Unparseable input is 0.
func ExtractPrice(price string) int {
	cleaned := strings.ReplaceAll(price, ",", "")

	value := 0
	seen := false
	for _, r := range cleaned {
		if r >= '0' && r <= '9' {
			seen = true
			value = value*10 + int(r-'0')
			continue
		}
		if seen {
			break
		}
	}
	if !seen {
		return 0
	}
	return value
}
