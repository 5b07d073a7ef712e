package entity

// Category is a topic label partitioning independent pipeline runs.
// It is never persisted.
type Category string

// DefaultCategories is the category set used when no category file is configured.
var DefaultCategories = []Category{
	"Music",
	"Entertainment",
	"Sports",
	"Gaming",
	"Fashion and Beauty",
	"Food",
	"Business and Finance",
	"Arts and Culture",
	"Technology",
	"Travel",
	"Outdoors",
	"Fitness",
	"Careers",
	"Animation and Comics",
	"Family and Relationships",
	"Science",
	"Miscellaneous",
}

// String returns the label used as the search query.
func (c Category) String() string {
	return string(c)
}
