package plan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseSelection turns a page selection such as "1-20,25,30-" into sorted,
// unique page numbers within [1, pageCount]. An empty expression selects
// every page.
func ParseSelection(expr string, pageCount int) ([]int, error) {
	if pageCount <= 0 {
		return nil, &InvalidSelectionError{Reason: "document has no pages"}
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		pages := make([]int, pageCount)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	seen := map[int]bool{}
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		start, end, err := parseRange(part, pageCount)
		if err != nil {
			return nil, err
		}
		for page := start; page <= end; page++ {
			seen[page] = true
		}
	}
	if len(seen) == 0 {
		return nil, &InvalidSelectionError{Reason: fmt.Sprintf("%q selects no pages", expr)}
	}
	pages := make([]int, 0, len(seen))
	for page := range seen {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages, nil
}

func parseRange(part string, pageCount int) (int, int, error) {
	from, to, isRange := strings.Cut(part, "-")
	start, err := parseBound(from, 1)
	if err != nil {
		return 0, 0, &InvalidSelectionError{Reason: fmt.Sprintf("bad page %q", part)}
	}
	end := start
	if isRange {
		end, err = parseBound(to, pageCount)
		if err != nil {
			return 0, 0, &InvalidSelectionError{Reason: fmt.Sprintf("bad page %q", part)}
		}
	}
	if start < 1 || end > pageCount || start > end {
		return 0, 0, &InvalidSelectionError{Reason: fmt.Sprintf("%q is outside 1-%d", part, pageCount)}
	}
	return start, end, nil
}

func parseBound(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}
