package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChoisMath/edutech/pkg/client"
	"github.com/ChoisMath/edutech/pkg/core/domain"
)

var ErrReorderNotAllowed = errors.New("reordering needs an empty search, the all category and a sort order on every card")

// CanReorder reports whether positions in visible map to backend sort orders:
// nothing filtered out and every card ordered.
func CanReorder(q Query, visible []domain.Card) bool {
	if q.Active() || len(visible) == 0 {
		return false
	}
	for _, c := range visible {
		if !c.HasSortOrder() {
			return false
		}
	}
	return true
}

// Dragger is the gesture mechanism that rearranges tiles. It reports each
// finished drag with the full id order.
type Dragger interface {
	Attach(ids []int64, onReorderCommitted func(ids []int64))
	Detach()
	SetEnabled(enabled bool)
}

type ReorderState int

const (
	ReorderDisabled ReorderState = iota
	ReorderEnabled
)

func (s ReorderState) String() string {
	if s == ReorderEnabled {
		return "enabled"
	}
	return "disabled"
}

// ReorderController keeps the draft order of a drag session. The draft is UI
// state only until Save succeeds.
type ReorderController struct {
	dragger Dragger
	state   ReorderState
	draft   []int64
}

func NewReorderController(d Dragger) *ReorderController {
	return &ReorderController{dragger: d}
}

func (c *ReorderController) State() ReorderState {
	return c.state
}

func (c *ReorderController) Enabled() bool {
	return c.state == ReorderEnabled
}

// Enable arms drag mode over the given tile order.
func (c *ReorderController) Enable(ids []int64) {
	c.draft = append([]int64(nil), ids...)
	c.state = ReorderEnabled
	if c.dragger != nil {
		c.dragger.Attach(c.Draft(), c.commit)
		c.dragger.SetEnabled(true)
	}
}

// Disable leaves drag mode and throws the draft away.
func (c *ReorderController) Disable() {
	if c.state == ReorderDisabled {
		return
	}
	c.state = ReorderDisabled
	c.draft = nil
	if c.dragger != nil {
		c.dragger.SetEnabled(false)
		c.dragger.Detach()
	}
}

// Draft returns a copy of the current tile order, nil when disabled.
func (c *ReorderController) Draft() []int64 {
	if c.draft == nil {
		return nil
	}
	return append([]int64(nil), c.draft...)
}

// commit receives finished drags. Events after Disable, or ones that are not a
// permutation of the session's tiles, are dropped.
func (c *ReorderController) commit(ids []int64) {
	if c.state != ReorderEnabled || !samePermutation(c.draft, ids) {
		return
	}
	c.draft = append(c.draft[:0], ids...)
}

// Payload numbers the draft 1..N from the top.
func (c *ReorderController) Payload() []domain.CardOrder {
	orders := make([]domain.CardOrder, len(c.draft))
	for i, id := range c.draft {
		orders[i] = domain.CardOrder{ID: id, SortOrder: i + 1}
	}
	return orders
}

// Save submits the draft. On success the controller is disabled; on failure it
// stays enabled with the draft intact so the user can retry.
func (c *ReorderController) Save(ctx context.Context, password string, submit func(ctx context.Context, password string, orders []domain.CardOrder) error) error {
	if c.state != ReorderEnabled {
		return errors.New("drag mode is off")
	}
	if password == "" {
		return &client.ValidationError{Field: "password", Message: "Password is required"}
	}
	if err := submit(ctx, password, c.Payload()); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	c.Disable()
	return nil
}

func samePermutation(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int64]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}
