package catalog

import "slices"

// SortOption is the fixed sort vocabulary of the product listing.
type SortOption string

const (
	SortNameAsc   SortOption = "name_asc"
	SortNameDesc  SortOption = "name_desc"
	SortPriceAsc  SortOption = "price_asc"
	SortPriceDesc SortOption = "price_desc"
)

// Ordering maps the sort option to the backend's ordering parameter.
// The mapping is fixed: name_asc→name, name_desc→-name, price_asc→price,
// price_desc→-price.
func (s SortOption) Ordering() string {
	switch s {
	case SortNameDesc:
		return "-name"
	case SortPriceAsc:
		return "price"
	case SortPriceDesc:
		return "-price"
	default:
		return "name"
	}
}

// Default price bounds, inclusive on both ends.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 1000
)

// Filters is the complete filter state of the product listing.
type Filters struct {
	Categories []string
	MinPrice   float64
	MaxPrice   float64
	Sort       SortOption
	Page       int
	Search     string
}

// DefaultFilters returns the initial listing state.
func DefaultFilters() Filters {
	return Filters{
		MinPrice: DefaultMinPrice,
		MaxPrice: DefaultMaxPrice,
		Sort:     SortNameAsc,
		Page:     1,
	}
}

// Partial is a set of filter changes. Nil fields are left untouched.
type Partial struct {
	Categories *[]string
	MinPrice   *float64
	MaxPrice   *float64
	Sort       *SortOption
	Page       *int
	Search     *string
}

// merge applies p to f and reports whether any change other than the page
// number occurred. Such a change resets the page to 1 so the next query can
// never request a page that no longer exists.
func (f Filters) merge(p Partial) (Filters, bool) {
	reset := false
	if p.Categories != nil && !slices.Equal(*p.Categories, f.Categories) {
		f.Categories = slices.Clone(*p.Categories)
		reset = true
	}
	if p.MinPrice != nil && *p.MinPrice != f.MinPrice {
		f.MinPrice = *p.MinPrice
		reset = true
	}
	if p.MaxPrice != nil && *p.MaxPrice != f.MaxPrice {
		f.MaxPrice = *p.MaxPrice
		reset = true
	}
	if p.Sort != nil && *p.Sort != f.Sort {
		f.Sort = *p.Sort
		reset = true
	}
	if p.Search != nil && *p.Search != f.Search {
		f.Search = *p.Search
		reset = true
	}
	if reset {
		f.Page = 1
	} else if p.Page != nil && *p.Page >= 1 {
		f.Page = *p.Page
	}
	return f, reset
}
