package meshjoin

import "meshjoin/internal/model"

// Results is the order-id keyed results table. A later upsert for the same
// order id replaces the earlier row in place, so Rows keeps first-seen order.
// Only the consumer writes to it; readers must wait for the run to finish.
type Results struct {
	pos  map[int]int
	rows []model.Result
}

// NewResults returns an empty table.
func NewResults() *Results {
	return &Results{pos: make(map[int]int)}
}

// Upsert stores r under r.OrderID. It reports true when an existing row was
// replaced.
func (t *Results) Upsert(r model.Result) bool {
	if i, ok := t.pos[r.OrderID]; ok {
		t.rows[i] = r
		return true
	}
	t.pos[r.OrderID] = len(t.rows)
	t.rows = append(t.rows, r)
	return false
}

// Get returns the row stored for orderID.
func (t *Results) Get(orderID int) (model.Result, bool) {
	i, ok := t.pos[orderID]
	if !ok {
		return model.Result{}, false
	}
	return t.rows[i], true
}

// Len is the number of distinct order ids.
func (t *Results) Len() int { return len(t.rows) }

// Rows returns the stored rows. The slice is shared; do not modify it.
func (t *Results) Rows() []model.Result { return t.rows }
