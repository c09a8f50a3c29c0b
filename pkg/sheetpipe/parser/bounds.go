package parser

// findDataBounds finds the bounding box of non-empty cells.
// All bounds are -1 when every cell is empty.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if maxRow < 0 || rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if maxCol < 0 || colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	return
}

// usedExtent returns the number of rows and columns of the used range
// counted from A1.
func usedExtent(rows [][]string) (nrows, ncols int) {
	_, maxRow, _, maxCol := findDataBounds(rows)
	if maxRow < 0 {
		return 0, 0
	}
	return maxRow + 1, maxCol + 1
}

