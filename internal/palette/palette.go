// Package palette assigns cursor colors to session participants from a
// fixed 12-entry palette. Assignment is deterministic so tests and
// rejoins are reproducible.
package palette

// Size is the number of colors in the palette
const Size = 12

// colors are the hex values rendered for participant cursors
var colors = [Size]string{
	"#e6194b", // red
	"#3cb44b", // green
	"#4363d8", // blue
	"#f58231", // orange
	"#911eb4", // purple
	"#42d4f4", // cyan
	"#f032e6", // magenta
	"#bfef45", // lime
	"#fabed4", // pink
	"#469990", // teal
	"#9a6324", // brown
	"#ffe119", // yellow
}

// Color returns the hex color for a palette index
func Color(index int) string {
	if index < 0 {
		index = 0
	}
	return colors[index%Size]
}

// Pick returns the lowest palette index not present in inUse. When every
// index is taken it wraps by roster size, so colors repeat in a stable
// order instead of failing.
func Pick(inUse []int) int {
	used := make(map[int]bool, len(inUse))
	for _, index := range inUse {
		used[index%Size] = true
	}

	for candidate := 0; candidate < Size; candidate++ {
		if !used[candidate] {
			return candidate
		}
	}

	return len(inUse) % Size
}
