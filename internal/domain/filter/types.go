package filter

// ComparisonType enumerates the supported comparison operators.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"        // Equal
	NotEqual       ComparisonType = "neq"       // Not equal
	Less           ComparisonType = "lt"        // Less than
	Greater        ComparisonType = "gt"        // Greater than
	LessOrEqual    ComparisonType = "lte"       // Less than or equal
	GreaterOrEqual ComparisonType = "gte"       // Greater than or equal
	InList         ComparisonType = "in"        // In list
	NotInList      ComparisonType = "nin"       // Not in list
	Contains       ComparisonType = "contains"  // Contains (ILIKE %val%)
	NotContains    ComparisonType = "ncontains" // Does not contain (NOT ILIKE %val%)

	// Hierarchy filters
	InHierarchy    ComparisonType = "in_hierarchy"  // In group or any subgroup
	NotInHierarchy ComparisonType = "nin_hierarchy" // Not in group or any subgroup

	// Presence
	IsNull    ComparisonType = "null"     // Empty
	IsNotNull ComparisonType = "not_null" // Not empty
)

// Item is one filter condition.
type Item struct {
	Field    string         `json:"field"`    // Column name (snake_case)
	Operator ComparisonType `json:"operator"` // Comparison operator
	Value    any            `json:"value"`    // Value (string, number, ID list)
}
