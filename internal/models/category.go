package models

import (
	"fmt"
	"strings"
)

// Category is the fixed set of event classifications.
type Category string

const (
	CategoryPolitics      Category = "politics"
	CategoryCrypto        Category = "crypto"
	CategorySports        Category = "sports"
	CategoryTech          Category = "tech"
	CategoryEntertainment Category = "entertainment"
	CategoryScience       Category = "science"
	CategoryBusiness      Category = "business"
	CategoryUnclassified  Category = "unclassified"
)

// Categories lists the browsable categories (unclassified is a fallback, not
// a browse target).
var Categories = []Category{
	CategoryPolitics,
	CategoryCrypto,
	CategorySports,
	CategoryTech,
	CategoryEntertainment,
	CategoryScience,
	CategoryBusiness,
}

// ParseCategory resolves user input to a known category, case-insensitively.
// Unknown names are an error; source-data fallback belongs in the normalizer,
// not here.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q (valid: %s)", ErrInvalidInput, s, categoryList())
}

// NormalizeCategory maps raw source data to a category, defaulting to
// unclassified instead of failing.
func NormalizeCategory(s string) Category {
	if c, err := ParseCategory(s); err == nil {
		return c
	}
	return CategoryUnclassified
}

func categoryList() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
