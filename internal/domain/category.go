package domain

import "strings"

// Category is one of the fixed spending buckets a user may budget
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// Categories is the fixed catalogue offered to every user, in display order
var Categories = []Category{
	{Name: "Bills & Rechange", Slug: "bills-rechange", Icon: "💡"},
	{Name: "Subscription", Slug: "subscription", Icon: "🎬"},
	{Name: "Shopping", Slug: "shopping", Icon: "🛍️"},
	{Name: "Groceries", Slug: "groceries", Icon: "🥦"},
	{Name: "Health Insurance", Slug: "health-insurance", Icon: "🏥"},
	{Name: "Transport Charges", Slug: "transport-charges", Icon: "🚗"},
	{Name: "Vehicle Repairs", Slug: "vehicle-repairs", Icon: "🔧"},
	{Name: "Miscellaneous", Slug: "miscellaneous", Icon: "🧺"},
	{Name: "Savings", Slug: "savings", Icon: "💰"},
	{Name: "Vacation", Slug: "vacation", Icon: "🏖️"},
}

// CurrencySymbol is the single currency symbol used for display
const CurrencySymbol = "₹"

// LookupCategory resolves a category by its display name or slug (case-insensitive)
func LookupCategory(key string) (Category, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Category{}, false
	}
	for _, c := range Categories {
		if strings.EqualFold(c.Name, key) || strings.EqualFold(c.Slug, key) {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryOrder returns the display position of a category name.
// Names outside the catalogue sort after every known category.
func CategoryOrder(name string) int {
	for i, c := range Categories {
		if c.Name == name {
			return i
		}
	}
	return len(Categories)
}

// CategoryIcon returns the icon for a category name, or an empty string
func CategoryIcon(name string) string {
	if c, ok := LookupCategory(name); ok {
		return c.Icon
	}
	return ""
}
