package board

// MergeLine slides and merges a single line toward index 0.
// Returns a new line of the same length and the score gained from merges.
// A tile produced by a merge is never merged again in the same call.
func MergeLine(line []int) (merged []int, gained int) {
	merged = make([]int, len(line))

	tiles := make([]int, 0, len(line))
	for _, v := range line {
		if v != 0 {
			tiles = append(tiles, v)
		}
	}

	writePos := 0
	for i := 0; i < len(tiles); i++ {
		if i+1 < len(tiles) && tiles[i] == tiles[i+1] {
			merged[writePos] = tiles[i] * 2
			gained += merged[writePos]
			i++
		} else {
			merged[writePos] = tiles[i]
		}
		writePos++
	}

	return merged, gained
}
