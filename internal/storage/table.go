package storage

// Table is an ordered, id-keyed collection held in memory. Duplicate ids are
// allowed; lookups resolve to the first row carrying the id.
type Table[T any] struct {
	rows  []T
	index map[string]int
	idOf  func(*T) string
}

// NewTable builds a table over rows. The slice is owned by the table afterwards.
func NewTable[T any](rows []T, idOf func(*T) string) *Table[T] {
	t := &Table[T]{rows: rows, idOf: idOf}
	t.reindex()
	return t
}

func (t *Table[T]) reindex() {
	t.index = make(map[string]int, len(t.rows))
	for i := range t.rows {
		id := t.idOf(&t.rows[i])
		if _, seen := t.index[id]; !seen {
			t.index[id] = i
		}
	}
}

// Find returns a pointer to the first row with id, or nil.
func (t *Table[T]) Find(id string) *T {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	return &t.rows[i]
}

// FindFunc returns a pointer to the first row matching fn, or nil.
func (t *Table[T]) FindFunc(fn func(*T) bool) *T {
	for i := range t.rows {
		if fn(&t.rows[i]) {
			return &t.rows[i]
		}
	}
	return nil
}

// Append adds row at the end.
func (t *Table[T]) Append(row T) {
	t.rows = append(t.rows, row)
	id := t.idOf(&t.rows[len(t.rows)-1])
	if _, seen := t.index[id]; !seen {
		t.index[id] = len(t.rows) - 1
	}
}

// Prepend adds row at the front.
func (t *Table[T]) Prepend(row T) {
	t.rows = append([]T{row}, t.rows...)
	t.reindex()
}

// RemoveAll deletes every row with id and reports how many were removed.
func (t *Table[T]) RemoveAll(id string) int {
	kept := t.rows[:0]
	removed := 0
	for _, r := range t.rows {
		if t.idOf(&r) == id {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	clear(t.rows[len(kept):])
	t.rows = kept
	if removed > 0 {
		t.reindex()
	}
	return removed
}

// Filter returns the rows matching fn in table order.
func (t *Table[T]) Filter(fn func(*T) bool) []T {
	out := make([]T, 0)
	for i := range t.rows {
		if fn(&t.rows[i]) {
			out = append(out, t.rows[i])
		}
	}
	return out
}

// Rows returns the backing slice. Callers must copy before handing rows out.
func (t *Table[T]) Rows() []T {
	return t.rows
}

// Replace swaps in a new row set.
func (t *Table[T]) Replace(rows []T) {
	t.rows = rows
	t.reindex()
}
