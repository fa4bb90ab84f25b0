package models

// Category is the colour bucket assigned to a classified reading.
type Category string

const (
	CategoryUnknown  Category = "grey"
	CategoryCritical Category = "< 11.5"
	CategoryLow      Category = "< 12"
	CategoryFair     Category = "< 12.3"
	CategoryGood     Category = "< 12.5"
	CategoryFull     Category = "12.5 +"
)

var categoryColors = map[Category]string{
	CategoryUnknown:  "grey",
	CategoryCritical: "red",
	CategoryLow:      "darkred",
	CategoryFair:     "darkorange",
	CategoryGood:     "orange",
	CategoryFull:     "blue",
}

// Categories returns all categories in legend order.
func Categories() []Category {
	return []Category{
		CategoryUnknown,
		CategoryCritical,
		CategoryLow,
		CategoryFair,
		CategoryGood,
		CategoryFull,
	}
}

// Color returns the marker colour used for the category on the map.
func (c Category) Color() string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return categoryColors[CategoryUnknown]
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}
