package models

import "strings"

// Operator enumerates the comparison operators a condition may use.
type Operator string

const (
	OpEquals         Operator = "="
	OpNotEquals      Operator = "!="
	OpGreaterThan    Operator = ">"
	OpLessThan       Operator = "<"
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpContains       Operator = "contains"
	OpNotContains    Operator = "not_contains"
)

// Operators lists every supported comparison operator.
var Operators = []Operator{
	OpEquals,
	OpNotEquals,
	OpGreaterThan,
	OpLessThan,
	OpGreaterOrEqual,
	OpLessOrEqual,
	OpContains,
	OpNotContains,
}

// Valid reports whether the operator is a member of the closed enumeration.
func (o Operator) Valid() bool {
	for _, op := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// DefaultConditionGroup is used when a condition has no explicit group label.
const DefaultConditionGroup = "default"

// AutomationCondition compares one record field against a stored value.
// Conditions sharing a group label are OR-combined; distinct groups are
// AND-combined.
type AutomationCondition struct {
	BaseModel

	AutomationID string   `gorm:"type:uuid;index;not null" json:"automation_id"`
	Field        string   `gorm:"not null" json:"field"`
	Operator     Operator `gorm:"type:varchar(16);not null" json:"operator"`
	Value        string   `json:"value"`
	Group        string   `gorm:"column:condition_group;default:'default'" json:"condition_group"`
}

// GroupLabel returns the condition's group, defaulting the empty label.
func (c *AutomationCondition) GroupLabel() string {
	if c.Group == "" {
		return DefaultConditionGroup
	}
	return c.Group
}

// Evaluate compares the record field value against the stored condition
// value. Both operands are stringified; when both parse as numbers the
// comparison is numeric, otherwise equality is exact string equality and
// ordering is lexicographic. Substring operators are case-insensitive.
// Unknown operators fail closed.
func (c *AutomationCondition) Evaluate(fieldValue any) bool {
	left := Stringify(fieldValue)
	right := c.Value

	switch c.Operator {
	case OpEquals:
		return looseEqual(left, right)
	case OpNotEquals:
		return !looseEqual(left, right)
	case OpGreaterThan:
		return looseCompare(left, right) > 0
	case OpLessThan:
		return looseCompare(left, right) < 0
	case OpGreaterOrEqual:
		return looseCompare(left, right) >= 0
	case OpLessOrEqual:
		return looseCompare(left, right) <= 0
	case OpContains:
		return strings.Contains(strings.ToLower(left), strings.ToLower(right))
	case OpNotContains:
		return !strings.Contains(strings.ToLower(left), strings.ToLower(right))
	default:
		return false
	}
}

func looseEqual(left, right string) bool {
	if ln, ok := ParseNumber(left); ok {
		if rn, ok := ParseNumber(right); ok {
			return ln == rn
		}
	}
	return left == right
}

func looseCompare(left, right string) int {
	if ln, ok := ParseNumber(left); ok {
		if rn, ok := ParseNumber(right); ok {
			switch {
			case ln < rn:
				return -1
			case ln > rn:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(left, right)
}
