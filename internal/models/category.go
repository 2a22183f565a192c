package models

import "fmt"

// Category is the app category a session was spent in.
// The integer values are the column encoding used in the feature matrix.
type Category int

const (
	CategorySocial        Category = 0
	CategoryProductivity  Category = 1
	CategoryEntertainment Category = 2
	CategoryGames         Category = 3
	CategoryNews          Category = 4
	CategoryShopping      Category = 5
	CategoryCommunication Category = 6
	CategoryHealth        Category = 7
	CategoryFinance       Category = 8
	CategoryUtilities     Category = 9
)

// NumCategories is the size of the category enum. Regime weight vectors
// must have exactly this many entries.
const NumCategories = 10

var categoryNames = [NumCategories]string{
	"social", "productivity", "entertainment", "games", "news",
	"shopping", "communication", "health", "finance", "utilities",
}

// AllCategories returns every category in encoding order.
func AllCategories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// Valid returns true if c is one of the ten known categories.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

// String returns the category name, e.g. "social".
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// HighStimulation reports whether the category is in the
// {social, entertainment, games} set that drives most risk weighting.
func (c Category) HighStimulation() bool {
	switch c {
	case CategorySocial, CategoryEntertainment, CategoryGames:
		return true
	}
	return false
}

// NotificationHeavy reports whether sessions in this category receive
// elevated notification volume.
func (c Category) NotificationHeavy() bool {
	switch c {
	case CategorySocial, CategoryEntertainment, CategoryCommunication:
		return true
	}
	return false
}

// Feed reports whether the category is an infinite-feed app
// (social, entertainment), which shifts both notification responsiveness
// and scroll rate upward.
func (c Category) Feed() bool {
	return c == CategorySocial || c == CategoryEntertainment
}
