package search

import (
	"reflect"
	"testing"
)

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		in   []candidates
		want candidates
	}{
		{
			name: "all unrestricted",
			in:   []candidates{unrestricted(), unrestricted()},
			want: unrestricted(),
		},
		{
			name: "single restricted keeps order",
			in:   []candidates{unrestricted(), restricted([]string{"b", "a", "c"})},
			want: restricted([]string{"b", "a", "c"}),
		},
		{
			name: "intersection preserves first set order",
			in: []candidates{
				restricted([]string{"c", "a", "b"}),
				restricted([]string{"a", "b", "c", "d"}),
			},
			want: restricted([]string{"c", "a", "b"}),
		},
		{
			name: "disjoint sets yield empty",
			in: []candidates{
				restricted([]string{"a"}),
				restricted([]string{"b"}),
			},
			want: restricted([]string{}),
		},
		{
			name: "empty restricted dominates unrestricted",
			in:   []candidates{unrestricted(), restricted(nil)},
			want: restricted(nil),
		},
		{
			name: "unrestricted members are ignored",
			in: []candidates{
				restricted([]string{"a", "b"}),
				unrestricted(),
				restricted([]string{"b", "a"}),
			},
			want: restricted([]string{"a", "b"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intersect(tt.in)
			if got.restricted != tt.want.restricted {
				t.Fatalf("restricted = %v, want %v", got.restricted, tt.want.restricted)
			}
			if len(got.ids) != len(tt.want.ids) {
				t.Fatalf("ids = %v, want %v", got.ids, tt.want.ids)
			}
			for i := range got.ids {
				if got.ids[i] != tt.want.ids[i] {
					t.Fatalf("ids = %v, want %v", got.ids, tt.want.ids)
				}
			}
		})
	}
}

func TestMergeSubsets(t *testing.T) {
	tests := []struct {
		name    string
		subsets [][]string
		dedupe  bool
		want    []string
	}{
		{
			name:    "no subsets",
			subsets: nil,
			dedupe:  false,
			want:    []string{},
		},
		{
			name:    "duplicates kept without dedupe",
			subsets: [][]string{{"a", "b"}, {"b", "c"}},
			dedupe:  false,
			want:    []string{"a", "b", "b", "c"},
		},
		{
			name:    "dedupe keeps first occurrence",
			subsets: [][]string{{"a", "b"}, {"b", "c"}, {"a"}},
			dedupe:  true,
			want:    []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeSubsets(tt.subsets, tt.dedupe)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("mergeSubsets() = %v, want %v", got, tt.want)
			}
		})
	}
}
