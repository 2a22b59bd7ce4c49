package tui

import "github.com/ChoisMath/edutech/pkg/catalog"

var _ catalog.Dragger = (*KeyDragger)(nil)

// KeyDragger moves tiles with the keyboard. Every move is a finished drag and
// reports the whole order.
type KeyDragger struct {
	ids     []int64
	commit  func([]int64)
	enabled bool
}

func NewKeyDragger() *KeyDragger {
	return &KeyDragger{}
}

func (d *KeyDragger) Attach(ids []int64, onReorderCommitted func(ids []int64)) {
	d.ids = append([]int64(nil), ids...)
	d.commit = onReorderCommitted
}

func (d *KeyDragger) Detach() {
	d.ids = nil
	d.commit = nil
}

func (d *KeyDragger) SetEnabled(enabled bool) {
	d.enabled = enabled
}

// Move shifts the tile at index from by delta positions and returns its new
// index. Moves past either end, or while detached, leave everything as is.
func (d *KeyDragger) Move(from, delta int) (int, bool) {
	to := from + delta
	if !d.enabled || d.commit == nil || from < 0 || from >= len(d.ids) || to < 0 || to >= len(d.ids) {
		return from, false
	}
	d.ids[from], d.ids[to] = d.ids[to], d.ids[from]
	d.commit(append([]int64(nil), d.ids...))
	return to, true
}
