// Package pagerange parses user page specifications such as "1-5,8,10"
// into ordered sets of 0-based page indices.
package pagerange

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformedPageSpec is returned for any token that is not N or N-M with N <= M.
var ErrMalformedPageSpec = errors.New("malformed page spec")

// Range is an inclusive span of 1-based page numbers.
type Range struct {
	Start int
	End   int
}

// ParseRanges splits spec into its ranges without resolving them against a
// document. A blank spec yields no ranges.
func ParseRanges(spec string) ([]Range, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	parts := strings.Split(spec, ",")
	ranges := make([]Range, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			return nil, fmt.Errorf("%w: empty token in %q", ErrMalformedPageSpec, spec)
		}

		lo, hi, isRange := strings.Cut(token, "-")
		start, err := parsePage(lo)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedPageSpec, token)
		}
		end := start
		if isRange {
			end, err = parsePage(hi)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrMalformedPageSpec, token)
			}
			if end < start {
				return nil, fmt.Errorf("%w: inverted range %q", ErrMalformedPageSpec, token)
			}
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges, nil
}

func parsePage(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing page number")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative page %d", n)
	}
	return n, nil
}

// Validate checks the syntax of spec without a page count.
func Validate(spec string) error {
	_, err := ParseRanges(spec)
	return err
}

// Parse resolves spec against a document of pageCount pages. The result is
// unique, ascending and clamped to [0, pageCount). A blank spec selects
// every page. Pages outside the document are dropped silently.
func Parse(spec string, pageCount int) ([]int, error) {
	ranges, err := ParseRanges(spec)
	if err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return All(pageCount), nil
	}

	seen := make(map[int]struct{})
	for _, r := range ranges {
		lo := max(r.Start, 1)
		hi := min(r.End, pageCount)
		for p := lo; p <= hi; p++ {
			seen[p-1] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out, nil
}

// All returns every index of a pageCount-page document.
func All(pageCount int) []int {
	if pageCount <= 0 {
		return []int{}
	}
	out := make([]int, pageCount)
	for i := range out {
		out[i] = i
	}
	return out
}

// IsSubset reports whether selection leaves out pages of a pageCount-page document.
func IsSubset(selection []int, pageCount int) bool {
	return len(selection) != pageCount
}

// Pages renders selection as 1-based page numbers, the form pdfcpu expects.
func Pages(selection []int) []string {
	out := make([]string, len(selection))
	for i, idx := range selection {
		out[i] = strconv.Itoa(idx + 1)
	}
	return out
}
