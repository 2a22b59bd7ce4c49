package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChoisMath/edutech/pkg/client"
	"github.com/ChoisMath/edutech/pkg/core/domain"
)

var ErrNotPermitted = errors.New("this action is not available for the current role")

// ReloadError reports a mutation the backend accepted whose follow-up reload
// failed. The store still holds the listing from before the mutation.
type ReloadError struct {
	Op  string
	Err error
}

func (e *ReloadError) Error() string {
	return fmt.Sprintf("%s saved; reload: %v", e.Op, e.Err)
}

func (e *ReloadError) Unwrap() error {
	return e.Err
}

// Gateway is the backend surface the app mutates through.
type Gateway interface {
	ListCards(ctx context.Context, admin bool) ([]domain.Card, error)
	CreateCard(ctx context.Context, in domain.CardInput) (*domain.Card, error)
	UpdateCard(ctx context.Context, id int64, in domain.CardInput, password string) (*domain.Card, error)
	DeleteCard(ctx context.Context, id int64, password string) error
	ReorderCards(ctx context.Context, password string, orders []domain.CardOrder) error
	CheckDuplicates(ctx context.Context, rawURL string) ([]domain.Card, error)
	UploadThumbnail(ctx context.Context, filename string, data []byte) (*domain.Thumbnail, error)
	DownloadExcel(ctx context.Context, password string) ([]byte, error)
}

var _ Gateway = (*client.Client)(nil)

// App owns the store, the current query and the reorder session. Every
// successful mutation is followed by a full reload; failures leave the store as it was.
type App struct {
	gw      Gateway
	caps    Capabilities
	store   *Store
	query   Query
	reorder *ReorderController
}

func NewApp(gw Gateway, caps Capabilities, dragger Dragger) *App {
	return &App{
		gw:      gw,
		caps:    caps,
		store:   NewStore(nil),
		query:   Query{Category: CategoryAll},
		reorder: NewReorderController(dragger),
	}
}

func (a *App) Capabilities() Capabilities { return a.caps }

func (a *App) Store() *Store { return a.store }

func (a *App) Query() Query { return a.query }

func (a *App) Reorder() *ReorderController { return a.reorder }

// Load replaces the store with a fresh listing.
func (a *App) Load(ctx context.Context) error {
	cards, err := a.gw.ListCards(ctx, a.caps.SeesHidden())
	if err != nil {
		return fmt.Errorf("load cards: %w", err)
	}
	a.store.Replace(cards)
	// A reload can change the set of tiles under an open drag session.
	if a.reorder.Enabled() {
		a.reorder.Disable()
	}
	return nil
}

func (a *App) SetQuery(q Query) {
	if q.Category == "" {
		q.Category = CategoryAll
	}
	a.query = q
	if a.reorder.Enabled() && !a.ReorderAllowed() {
		a.reorder.Disable()
	}
}

func (a *App) SetSearch(text string) {
	q := a.query
	q.Text = text
	a.SetQuery(q)
}

func (a *App) SetCategory(c Category) {
	q := a.query
	q.Category = c
	a.SetQuery(q)
}

// Visible is the filtered view of the store. Roles that do not moderate never
// see hidden cards, whatever the backend returned.
func (a *App) Visible() []domain.Card {
	cards := a.store.Cards()
	if !a.caps.SeesHidden() {
		public := cards[:0]
		for _, c := range cards {
			if !c.Hidden() {
				public = append(public, c)
			}
		}
		cards = public
	}
	return Filter(cards, a.query)
}

func (a *App) ReorderAllowed() bool {
	return a.caps.CanReorder && CanReorder(a.query, a.Visible())
}

// ToggleDragMode flips between browsing and drag mode.
func (a *App) ToggleDragMode() error {
	if a.reorder.Enabled() {
		a.reorder.Disable()
		return nil
	}
	if !a.caps.CanReorder {
		return ErrNotPermitted
	}
	if !a.ReorderAllowed() {
		return ErrReorderNotAllowed
	}
	a.reorder.Enable(ids(a.Visible()))
	return nil
}

// Grid renders the visible cards, in draft order while dragging.
func (a *App) Grid() Grid {
	visible := a.Visible()
	if a.reorder.Enabled() {
		visible = arrange(visible, a.reorder.Draft())
	}
	return BuildGrid(visible, GridOptions{
		DragMode:       a.reorder.Enabled(),
		ReorderAllowed: a.ReorderAllowed(),
		Capabilities:   a.caps,
	})
}

func (a *App) SaveOrder(ctx context.Context, password string) error {
	if !a.caps.CanReorder {
		return ErrNotPermitted
	}
	if err := a.reorder.Save(ctx, password, a.gw.ReorderCards); err != nil {
		return err
	}
	return a.reload(ctx, "order")
}

// Create adds a card. Public submissions are stored hidden until a moderator shows them.
func (a *App) Create(ctx context.Context, in domain.CardInput) (*domain.Card, error) {
	if !a.caps.CanCreate() {
		return nil, ErrNotPermitted
	}
	if !a.caps.CanEdit {
		in.View = domain.IntPtr(domain.ViewHidden)
	}
	card, err := a.gw.CreateCard(ctx, in)
	if err != nil {
		return nil, err
	}
	return card, a.reload(ctx, "card")
}

func (a *App) Update(ctx context.Context, id int64, in domain.CardInput, password string) (*domain.Card, error) {
	if !a.caps.CanEdit {
		return nil, ErrNotPermitted
	}
	card, err := a.gw.UpdateCard(ctx, id, in, password)
	if err != nil {
		return nil, err
	}
	return card, a.reload(ctx, "card")
}

func (a *App) Delete(ctx context.Context, id int64, password string) error {
	if !a.caps.CanDelete {
		return ErrNotPermitted
	}
	if err := a.gw.DeleteCard(ctx, id, password); err != nil {
		return err
	}
	return a.reload(ctx, "delete")
}

func (a *App) reload(ctx context.Context, op string) error {
	if err := a.Load(ctx); err != nil {
		return &ReloadError{Op: op, Err: err}
	}
	return nil
}

// CheckDuplicates is advisory; it never blocks a create.
func (a *App) CheckDuplicates(ctx context.Context, rawURL string) ([]domain.Card, error) {
	return a.gw.CheckDuplicates(ctx, rawURL)
}

func (a *App) UploadThumbnail(ctx context.Context, filename string, data []byte) (*domain.Thumbnail, error) {
	if !a.caps.CanCreate() {
		return nil, ErrNotPermitted
	}
	return a.gw.UploadThumbnail(ctx, filename, data)
}

func (a *App) Export(ctx context.Context, password string) ([]byte, error) {
	if !a.caps.SeesHidden() {
		return nil, ErrNotPermitted
	}
	return a.gw.DownloadExcel(ctx, password)
}

func ids(cards []domain.Card) []int64 {
	out := make([]int64, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

// arrange orders cards by the draft; cards the draft does not mention keep
// their relative order at the end.
func arrange(cards []domain.Card, order []int64) []domain.Card {
	pos := make(map[int64]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	out := make([]domain.Card, len(order), len(cards))
	placed := make([]bool, len(order))
	var rest []domain.Card
	for _, c := range cards {
		if i, ok := pos[c.ID]; ok && !placed[i] {
			out[i] = c
			placed[i] = true
			continue
		}
		rest = append(rest, c)
	}
	// Drop slots for ids that are no longer visible.
	compact := out[:0]
	for i, c := range out {
		if placed[i] {
			compact = append(compact, c)
		}
	}
	return append(compact, rest...)
}
