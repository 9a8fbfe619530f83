package bitmap

// RowTable is an ordered, non-owning view of a bitmap's rows.
//
// Entry y covers samples [y*Stride, (y+1)*Stride) of the bitmap. Each row
// slice has its capacity clipped to its length so appending to it cannot
// overwrite the next row. A RowTable is invalid once its bitmap is released.
type RowTable struct {
	rows   [][]byte
	stride int
}

// Rows builds the row reference table for b.
// Returns ErrReleased if b was released.
func (b *Bitmap) Rows() (RowTable, error) {
	if b.data == nil {
		return RowTable{}, ErrReleased
	}
	stride := b.Stride()
	rows := make([][]byte, b.height)
	for y := range rows {
		start := y * stride
		end := start + stride
		rows[y] = b.data[start:end:end]
	}
	return RowTable{rows: rows, stride: stride}, nil
}

// Len returns the number of rows.
func (t RowTable) Len() int {
	return len(t.rows)
}

// Row returns row y, or nil if y is out of range.
func (t RowTable) Row(y int) []byte {
	if y < 0 || y >= len(t.rows) {
		return nil
	}
	return t.rows[y]
}

// Offset returns the buffer offset where row y starts, or -1 if y is out of
// range.
func (t RowTable) Offset(y int) int {
	if y < 0 || y >= len(t.rows) {
		return -1
	}
	return y * t.stride
}

// Slices returns the rows in order. The outer slice is shared with the table.
func (t RowTable) Slices() [][]byte {
	return t.rows
}
