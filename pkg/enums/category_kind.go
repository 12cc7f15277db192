package enums

import "fmt"

// CategoryKind distinguishes storefront bale categories from internal stock
// item categories.
type CategoryKind string

const (
	CategoryKindProduct CategoryKind = "product"
	CategoryKindStock   CategoryKind = "stock"
)

var validCategoryKinds = []CategoryKind{
	CategoryKindProduct,
	CategoryKindStock,
}

// String implements fmt.Stringer.
func (c CategoryKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CategoryKind.
func (c CategoryKind) IsValid() bool {
	for _, candidate := range validCategoryKinds {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategoryKind converts raw input into a CategoryKind.
func ParseCategoryKind(value string) (CategoryKind, error) {
	for _, candidate := range validCategoryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category kind %q", value)
}
