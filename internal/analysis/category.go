package analysis

import "strings"

// OtherCategory is assigned when no keyword matches.
const OtherCategory = "Other"

// Category is a named set of description keywords.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultCategories is the built-in keyword table. Order matters: the first
// category with a matching keyword wins, so "DUITNOWQR" lands in Food &
// Dining before "DUITNOW" can claim it for Transfers.
var DefaultCategories = []Category{
	{Name: "Food & Dining", Keywords: []string{
		"GRAB-EC", "KEN'S GROCER", "FINEXUS CAFE", "McDonalds", "McDonald",
		"RESTAURANT", "CAFE", "COFFEE", "FOOD", "NASI LEMAK", "BISTRO",
		"TAO BIN", "LIKEMECOFFEE", "ZUS COFFEE", "SARA THAI", "LOK'AI",
		"DUITNOWQR", "QR PAYMENT", "GORENG", "NASI",
	}},
	{Name: "Transport", Keywords: []string{
		"MRT", "UBER", "TAXI", "PARKING", "TOLL", "PETROL", "GAS", "PUTRAJAYA SENTRAL",
	}},
	{Name: "Bills & Utilities", Keywords: []string{
		"U MOBILE", "MOBILE", "PHONE", "UTILITY", "BILL", "ELECTRIC", "WATER",
		"INTERNET", "PAYBILL",
	}},
	{Name: "Entertainment", Keywords: []string{
		"STEAMGAMES", "SPOTIFY", "NETFLIX", "CINEMA", "MOVIE", "ENTERTAINMENT",
		"GAME", "GAMES",
	}},
	{Name: "Shopping", Keywords: []string{
		"AEON", "SHOPPING", "MALL", "STORE", "RETAIL", "SUPERMARKET",
	}},
	{Name: "Transfers", Keywords: []string{
		"DUITNOW", "TRANSFER", "FUND TRANSFER", "FUTU MALAYSIA", "MOOMOO",
	}},
	{Name: "Savings & Interest", Keywords: []string{
		"PROFIT EARNED", "INTEREST", "SAVINGS ACCOUNT",
	}},
}

// Categorizer assigns categories by case-insensitive substring match.
type Categorizer struct {
	categories []Category
}

// NewCategorizer upper-cases the keywords once. An empty list means
// DefaultCategories.
func NewCategorizer(categories []Category) *Categorizer {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	c := &Categorizer{categories: make([]Category, len(categories))}
	for i, cat := range categories {
		kws := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			if kw = strings.ToUpper(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		c.categories[i] = Category{Name: cat.Name, Keywords: kws}
	}
	return c
}

// Categorize returns the first category with a keyword contained in desc.
func (c *Categorizer) Categorize(desc string) string {
	upper := strings.ToUpper(desc)
	for _, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(upper, kw) {
				return cat.Name
			}
		}
	}
	return OtherCategory
}

// Names lists the configured categories in order, followed by Other.
func (c *Categorizer) Names() []string {
	names := make([]string, 0, len(c.categories)+1)
	for _, cat := range c.categories {
		names = append(names, cat.Name)
	}
	return append(names, OtherCategory)
}
