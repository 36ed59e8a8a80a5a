package model

import (
	"fmt"
	"strings"
)

// Category is a topic's mastery risk, ordered from Green (mastered) to Red.
type Category int

// Categories in increasing order of risk.
const (
	Green Category = iota
	Yellow
	Orange
	Red
)

// Categories lists every category from highest to lowest risk.
var Categories = []Category{Red, Orange, Yellow, Green}

func (c Category) String() string {
	switch c {
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Orange:
		return "orange"
	case Red:
		return "red"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory maps a category name to its value.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "green":
		return Green, nil
	case "yellow":
		return Yellow, nil
	case "orange":
		return Orange, nil
	case "red":
		return Red, nil
	}
	return Green, fmt.Errorf("unknown category %q", s)
}
