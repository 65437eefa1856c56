package types

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRange_Expand(t *testing.T) {
	cases := []struct {
		name string
		in   NodeRange
		want []string
	}{
		{"literal", "c1", []string{"c1"}},
		{"simple_range", "c[1-3]", []string{"c1", "c2", "c3"}},
		{"list_and_range", "c[1-3,5]", []string{"c1", "c2", "c3", "c5"}},
		{"two_groups", "c[1-2]-[2-3]", []string{"c1-2", "c1-3", "c2-2", "c2-3"}},
		{"zero_padded", "c[01-03]", []string{"c01", "c02", "c03"}},
		{"suffix_after_bracket", "c[1-2].fox", []string{"c1.fox", "c2.fox"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.in.Expand()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNodeRange_Expand_Errors(t *testing.T) {
	cases := []NodeRange{
		"c[1-3",     // unterminated
		"c[3-1]",    // lo>hi
		"c[1-a]",    // non-numeric bound
		"c[1,,3]",   // empty element
	}
	for _, in := range cases {
		_, err := in.Expand()
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestCompress_RoundTrip(t *testing.T) {
	cases := [][]string{
		{"c1", "c2", "c3"},
		{"c1", "c2", "c5"},
		{"node01", "node02", "node03"},
		{"gpu7"},
		{"a", "b", "c"}, // no digit runs: literals
	}
	for _, hosts := range cases {
		nr := Compress(hosts)
		expanded, err := nr.Expand()
		require.NoError(t, err)

		want := append([]string(nil), hosts...)
		sort.Strings(want)
		got := append([]string(nil), expanded...)
		sort.Strings(got)
		assert.Equal(t, want, got, "compress(%v) = %q", hosts, nr)
	}
}

func TestCompress_Canonical(t *testing.T) {
	// Order and duplicates in the input must not affect the canonical form.
	a := Compress([]string{"c1", "c2", "c3"})
	b := Compress([]string{"c3", "c1", "c2", "c1"})
	assert.Equal(t, a, b)
	assert.Equal(t, NodeRange("c[1-3]"), a)
}

func TestCompress_PreservesZeroPadding(t *testing.T) {
	nr := Compress([]string{"node01", "node02", "node03"})
	assert.Equal(t, NodeRange("node[01-03]"), nr)
}

func TestCompress_Empty(t *testing.T) {
	assert.Equal(t, NodeRange(""), Compress(nil))
}
