package core

import "strings"

// Filter returns the items whose name contains search (case-insensitive, trimmed)
// and whose category equals category. An empty search and CategoryAll match everything.
// The input order is preserved and the input slice is not modified.
func Filter(items []Item, search string, category Category) []Item {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if needle != "" && !strings.Contains(strings.ToLower(it.Name), needle) {
			continue
		}
		if category != CategoryAll && category != "" && it.Category != category {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ParseCategoryFilter maps the listing's category select value to a filter.
// Anything that is not a known category falls back to CategoryAll.
func ParseCategoryFilter(s string) Category {
	c, err := ParseCategory(s)
	if err != nil {
		return CategoryAll
	}
	return c
}
