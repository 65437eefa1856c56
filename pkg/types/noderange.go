package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NodeRange is a bracket-compressed host-name string such as
// "c[1-3,5]-[2-4].fox". It is always stored and transmitted in its
// compressed form; only Expand materializes the individual host names.
type NodeRange string

// rangeGroup is one bracketed segment, e.g. "[1-3,5]" decoded into its
// member strings in left-to-right, as-written order (no dedup, no sort).
type rangeGroup struct {
	literal bool     // true: values holds a single literal (non-bracket) segment
	values  []string // for a bracket group, the zero-padded member strings in file order
}

// Expand returns every host name the range denotes. Comma-separated
// items outside brackets are expanded in turn; each item yields the
// cartesian product of its bracket groups, left to right.
func (nr NodeRange) Expand() ([]string, error) {
	s := string(nr)
	var all []string
	depth, start := 0, 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) {
			if s[i] == '[' {
				depth++
			} else if s[i] == ']' {
				depth--
			}
			if s[i] != ',' || depth > 0 {
				continue
			}
		}
		groups, err := parseGroups(s[start:i])
		if err != nil {
			return nil, fmt.Errorf("types: noderange: %w", err)
		}
		out := []string{""}
		for _, g := range groups {
			var next []string
			for _, prefix := range out {
				for _, v := range g.values {
					next = append(next, prefix+v)
				}
			}
			out = next
		}
		all = append(all, out...)
		start = i + 1
	}
	return all, nil
}

// parseGroups splits a range string into literal and bracketed segments.
func parseGroups(s string) ([]rangeGroup, error) {
	var groups []rangeGroup
	var lit strings.Builder
	flushLit := func() {
		if lit.Len() > 0 {
			groups = append(groups, rangeGroup{literal: true, values: []string{lit.String()}})
			lit.Reset()
		}
	}
	for i := 0; i < len(s); {
		c := s[i]
		if c == '[' {
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated '[' at offset %d", i)
			}
			end += i
			flushLit()
			vals, err := expandBracket(s[i+1 : end])
			if err != nil {
				return nil, err
			}
			groups = append(groups, rangeGroup{values: vals})
			i = end + 1
			continue
		}
		lit.WriteByte(c)
		i++
	}
	flushLit()
	return groups, nil
}

// expandBracket expands the comma-separated contents of one bracket
// group, e.g. "1-3,5" -> ["1","2","3","5"], preserving field width via
// zero-padding when the bounds share a width.
func expandBracket(body string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(body, ",") {
		if part == "" {
			return nil, fmt.Errorf("empty element in bracket group %q", body)
		}
		dash := strings.IndexByte(part, '-')
		if dash < 0 {
			out = append(out, part)
			continue
		}
		loStr, hiStr := part[:dash], part[dash+1:]
		lo, err := strconv.Atoi(loStr)
		if err != nil {
			return nil, fmt.Errorf("bad range bound %q: %w", part, err)
		}
		hi, err := strconv.Atoi(hiStr)
		if err != nil {
			return nil, fmt.Errorf("bad range bound %q: %w", part, err)
		}
		if lo > hi {
			return nil, fmt.Errorf("range bound %q has lo>hi", part)
		}
		width := 0
		if len(loStr) == len(hiStr) && loStr[0] == '0' {
			width = len(loStr)
		}
		for v := lo; v <= hi; v++ {
			if width > 0 {
				out = append(out, fmt.Sprintf("%0*d", width, v))
			} else {
				out = append(out, strconv.Itoa(v))
			}
		}
	}
	return out, nil
}

// Compress builds the canonical bracket-compressed NodeRange for a set
// of host names. Duplicate host names are dropped. Hosts ending in a run
// of digits are grouped by the text before that run; each group is
// rendered as "prefix[n1,n2,...]" with the numbers sorted and
// consecutive runs folded into "lo-hi". Hosts with no trailing digits
// are emitted as individual literal members. Groups come first, in the
// order their first host appears in the input, followed by the literals
// in input order; all are joined with commas. Re-expanding the result
// yields the same set of hosts that was passed in.
func Compress(hosts []string) NodeRange {
	type bucket struct {
		prefix string
		nums   []int
		width  int
	}
	seen := map[string]bool{}
	buckets := map[string]*bucket{}
	var bucketOrder []string
	var literals []string
	var literalOrder []string

	for _, h := range hosts {
		if seen[h] {
			continue
		}
		seen[h] = true

		prefix, numStr, ok := splitTrailingDigits(h)
		if !ok {
			if !contains(literalOrder, h) {
				literals = append(literals, h)
				literalOrder = append(literalOrder, h)
			}
			continue
		}
		key := prefix
		b, exists := buckets[key]
		if !exists {
			b = &bucket{prefix: prefix}
			buckets[key] = b
			bucketOrder = append(bucketOrder, key)
		}
		n, _ := strconv.Atoi(numStr)
		b.nums = append(b.nums, n)
		if len(numStr) > 1 && numStr[0] == '0' && len(numStr) > b.width {
			b.width = len(numStr)
		}
	}

	var parts []string
	for _, key := range bucketOrder {
		b := buckets[key]
		sort.Ints(b.nums)
		parts = append(parts, b.prefix+"["+foldRuns(b.nums, b.width)+"]")
	}
	parts = append(parts, literals...)
	return NodeRange(strings.Join(parts, ","))
}

// splitTrailingDigits splits a host name into the portion before its
// last maximal run of trailing digits and that run itself, e.g.
// "c12-2" -> ("c12-", "2", true). Names with no trailing digit run
// (ok=false) can't be folded into a numeric bracket group.
func splitTrailingDigits(h string) (prefix, digits string, ok bool) {
	end := len(h)
	start := end
	for start > 0 && isDigit(h[start-1]) {
		start--
	}
	if start == end {
		return "", "", false
	}
	return h[:start], h[start:end], true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// foldRuns renders sorted integers as a comma list folding consecutive
// runs of length >=2 into "lo-hi".
func foldRuns(nums []int, width int) string {
	if len(nums) == 0 {
		return ""
	}
	render := func(n int) string {
		if width > 0 {
			return fmt.Sprintf("%0*d", width, n)
		}
		return strconv.Itoa(n)
	}
	var segs []string
	i := 0
	for i < len(nums) {
		j := i
		for j+1 < len(nums) && nums[j+1] == nums[j]+1 {
			j++
		}
		if j > i {
			segs = append(segs, render(nums[i])+"-"+render(nums[j]))
		} else {
			segs = append(segs, render(nums[i]))
		}
		i = j + 1
	}
	return strings.Join(segs, ",")
}
