package todo

import "fmt"

// ViewFilter selects which cached todos a client displays.
type ViewFilter string

const (
	FilterAll       ViewFilter = "all"
	FilterActive    ViewFilter = "active"
	FilterCompleted ViewFilter = "completed"
)

// IsValid returns true if the filter is one of the defined constants.
func (f ViewFilter) IsValid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (f ViewFilter) String() string {
	return string(f)
}

// Matches reports whether t belongs in the view.
func (f ViewFilter) Matches(t Todo) bool {
	switch f {
	case FilterActive:
		return !t.IsCompleted
	case FilterCompleted:
		return t.IsCompleted
	default:
		return true
	}
}

// Next cycles all -> active -> completed -> all.
func (f ViewFilter) Next() ViewFilter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// ParseViewFilter converts s into a ViewFilter.
func ParseViewFilter(s string) (ViewFilter, error) {
	f := ViewFilter(s)
	if !f.IsValid() {
		return "", fmt.Errorf("unknown view filter %q", s)
	}
	return f, nil
}

// Select returns the todos matching f, preserving order.
func Select(items []Todo, f ViewFilter) []Todo {
	out := make([]Todo, 0, len(items))
	for _, t := range items {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
