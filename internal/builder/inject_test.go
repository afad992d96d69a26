package builder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLeafPaths(t *testing.T) {
	l, r := stepLeft, stepRight

	tests := []struct {
		n    int
		want [][]treeStep
	}{
		{1, [][]treeStep{{}}},
		{2, [][]treeStep{{l}, {r}}},
		{3, [][]treeStep{{l}, {r, l}, {r, r}}},
		{4, [][]treeStep{{l, l}, {l, r}, {r, l}, {r, r}}},
		{5, [][]treeStep{{l, l}, {l, r}, {r, l}, {r, r, l}, {r, r, r}}},
	}
	for _, tt := range tests {
		got := leafPaths(tt.n)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("leafPaths(%d) mismatch (-want +got):\n%s", tt.n, diff)
		}
	}
}

// Every leaf count yields exactly one path per leaf, and no path is a prefix
// of another (each names a distinct leaf of a proper binary tree).
func TestLeafPathsAreDistinctLeaves(t *testing.T) {
	for n := 1; n <= 32; n++ {
		paths := leafPaths(n)
		if len(paths) != n {
			t.Fatalf("leafPaths(%d) returned %d paths", n, len(paths))
		}
		for i := range paths {
			for j := range paths {
				if i != j && isPrefix(paths[i], paths[j]) {
					t.Fatalf("leafPaths(%d): path %d is a prefix of path %d", n, i, j)
				}
			}
		}
	}
}

func isPrefix(a, b []treeStep) bool {
	if len(a) > len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
