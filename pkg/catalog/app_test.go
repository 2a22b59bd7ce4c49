package catalog

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ChoisMath/edutech/pkg/client"
	"github.com/ChoisMath/edutech/pkg/core/domain"
)

// fakeGateway serves a fixed listing and fails mutations on demand.
type fakeGateway struct {
	cards     []domain.Card
	fail      error
	listFail  error
	lists     int
	lastAdmin bool
	created   []domain.CardInput
	reordered [][]domain.CardOrder
	deleted   []int64
}

func (g *fakeGateway) ListCards(ctx context.Context, admin bool) ([]domain.Card, error) {
	g.lists++
	g.lastAdmin = admin
	if g.listFail != nil {
		return nil, g.listFail
	}
	out := make([]domain.Card, len(g.cards))
	copy(out, g.cards)
	return out, nil
}

func (g *fakeGateway) CreateCard(ctx context.Context, in domain.CardInput) (*domain.Card, error) {
	if g.fail != nil {
		return nil, g.fail
	}
	g.created = append(g.created, in)
	card := domain.Card{ID: int64(len(g.cards) + 100), URL: in.URL, WebpageName: in.WebpageName, View: in.View}
	g.cards = append(g.cards, card)
	return &card, nil
}

func (g *fakeGateway) UpdateCard(ctx context.Context, id int64, in domain.CardInput, password string) (*domain.Card, error) {
	if g.fail != nil {
		return nil, g.fail
	}
	for i := range g.cards {
		if g.cards[i].ID == id {
			g.cards[i].WebpageName = in.WebpageName
			return &g.cards[i], nil
		}
	}
	return nil, &client.APIError{Status: 404, Message: "Card not found"}
}

func (g *fakeGateway) DeleteCard(ctx context.Context, id int64, password string) error {
	if g.fail != nil {
		return g.fail
	}
	g.deleted = append(g.deleted, id)
	for i := range g.cards {
		if g.cards[i].ID == id {
			g.cards[i].View = domain.IntPtr(domain.ViewHidden)
		}
	}
	return nil
}

func (g *fakeGateway) ReorderCards(ctx context.Context, password string, orders []domain.CardOrder) error {
	if g.fail != nil {
		return g.fail
	}
	g.reordered = append(g.reordered, orders)
	pos := map[int64]int{}
	for _, o := range orders {
		pos[o.ID] = o.SortOrder
	}
	reordered := make([]domain.Card, len(g.cards))
	for _, c := range g.cards {
		c.SortOrder = domain.IntPtr(pos[c.ID])
		reordered[pos[c.ID]-1] = c
	}
	g.cards = reordered
	return nil
}

func (g *fakeGateway) CheckDuplicates(ctx context.Context, rawURL string) ([]domain.Card, error) {
	return nil, g.fail
}

func (g *fakeGateway) UploadThumbnail(ctx context.Context, filename string, data []byte) (*domain.Thumbnail, error) {
	return &domain.Thumbnail{Filename: filename}, g.fail
}

func (g *fakeGateway) DownloadExcel(ctx context.Context, password string) ([]byte, error) {
	if g.fail != nil {
		return nil, g.fail
	}
	return []byte("xlsx"), nil
}

func newLoadedApp(t *testing.T, caps Capabilities, cards []domain.Card) (*App, *fakeGateway, *fakeDragger) {
	t.Helper()
	gw := &fakeGateway{cards: cards}
	d := &fakeDragger{}
	app := NewApp(gw, caps, d)
	if err := app.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return app, gw, d
}

func TestFailedMutationsLeaveStoreUnchanged(t *testing.T) {
	app, gw, d := newLoadedApp(t, AdminCapabilities, orderedCards(1, 2, 3))
	before := app.Store().Cards()
	gw.fail = &client.APIError{Status: 500, Message: "boom"}
	ctx := context.Background()

	if err := app.Delete(ctx, 2, "admin"); err == nil {
		t.Error("delete succeeded")
	}
	if _, err := app.Update(ctx, 1, domain.CardInput{URL: "u", WebpageName: "renamed"}, "1"); err == nil {
		t.Error("update succeeded")
	}
	if err := app.ToggleDragMode(); err != nil {
		t.Fatal(err)
	}
	d.commit([]int64{3, 2, 1})
	if err := app.SaveOrder(ctx, "admin"); err == nil {
		t.Error("reorder succeeded")
	}

	if got := app.Store().Cards(); !reflect.DeepEqual(got, before) {
		t.Errorf("store changed after failures:\n got %+v\nwant %+v", got, before)
	}
	if gw.lists != 1 {
		t.Errorf("store reloaded %d times, want only the initial load", gw.lists)
	}
}

func TestSaveOrderReloadsAndLeavesDragMode(t *testing.T) {
	app, gw, d := newLoadedApp(t, AdminCapabilities, orderedCards(1, 2))

	if err := app.ToggleDragMode(); err != nil {
		t.Fatalf("ToggleDragMode: %v", err)
	}
	d.commit([]int64{2, 1})

	grid := app.Grid()
	if grid.Tiles[0].ID != 2 || !grid.Tiles[0].Draggable {
		t.Errorf("draft order not rendered: first tile %+v", grid.Tiles[0])
	}
	if sort := *app.Store().Cards()[0].SortOrder; sort != 1 {
		t.Errorf("store sort_order changed before save: %d", sort)
	}

	if err := app.SaveOrder(context.Background(), "admin"); err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	want := []domain.CardOrder{{ID: 2, SortOrder: 1}, {ID: 1, SortOrder: 2}}
	if !reflect.DeepEqual(gw.reordered[0], want) {
		t.Errorf("payload = %v, want %v", gw.reordered[0], want)
	}
	if app.Reorder().Enabled() {
		t.Error("still in drag mode")
	}
	if gw.lists != 2 {
		t.Errorf("lists = %d, want a reload after save", gw.lists)
	}
	if got := idsOf(app.Visible()); !reflect.DeepEqual(got, []int64{2, 1}) {
		t.Errorf("visible after reload = %v", got)
	}
}

func TestSaveOrderReportsReloadFailureSeparately(t *testing.T) {
	app, gw, d := newLoadedApp(t, AdminCapabilities, orderedCards(1, 2))
	if err := app.ToggleDragMode(); err != nil {
		t.Fatal(err)
	}
	d.commit([]int64{2, 1})

	gw.listFail = errors.New("connection reset")
	err := app.SaveOrder(context.Background(), "admin")

	var reloadErr *ReloadError
	if !errors.As(err, &reloadErr) {
		t.Fatalf("err = %v, want a ReloadError", err)
	}
	if !strings.Contains(err.Error(), "order saved; reload") || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("err = %q", err)
	}
	if len(gw.reordered) != 1 {
		t.Errorf("reorder submitted %d times, want 1", len(gw.reordered))
	}
	if app.Reorder().Enabled() {
		t.Error("drag mode still on after the order was accepted")
	}
	if got := idsOf(app.Visible()); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("store changed without a reload: %v", got)
	}
}

func TestSaveOrderSubmitsEveryRenderedTile(t *testing.T) {
	app, gw, _ := newLoadedApp(t, AdminCapabilities, orderedCards(4, 5, 6, 7))
	if err := app.ToggleDragMode(); err != nil {
		t.Fatal(err)
	}
	n := len(app.Grid().Tiles)
	if err := app.SaveOrder(context.Background(), "admin"); err != nil {
		t.Fatal(err)
	}
	sent := gw.reordered[0]
	if len(sent) != n {
		t.Fatalf("sent %d entries for %d tiles", len(sent), n)
	}
	for i, o := range sent {
		if o.SortOrder != i+1 {
			t.Errorf("entry %d sort_order = %d", i, o.SortOrder)
		}
	}
}

func TestDragModeRules(t *testing.T) {
	app, _, _ := newLoadedApp(t, AdminCapabilities, orderedCards(1, 2))

	app.SetSearch("card")
	if err := app.ToggleDragMode(); !errors.Is(err, ErrReorderNotAllowed) {
		t.Errorf("drag with search active: err = %v", err)
	}

	app.SetSearch("")
	if err := app.ToggleDragMode(); err != nil {
		t.Fatal(err)
	}
	app.SetCategory(CategoryKeyword)
	if app.Reorder().Enabled() {
		t.Error("category filter did not end drag mode")
	}

	viewer, _, _ := newLoadedApp(t, ViewerCapabilities, orderedCards(1, 2))
	if err := viewer.ToggleDragMode(); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("viewer drag: err = %v", err)
	}
}

func TestVisibleHidesModeratedCardsFromViewers(t *testing.T) {
	cards := orderedCards(1, 2)
	cards[1].View = domain.IntPtr(domain.ViewHidden)

	viewer, gw, _ := newLoadedApp(t, ViewerCapabilities, cards)
	if gw.lastAdmin {
		t.Error("viewer requested the admin listing")
	}
	if got := idsOf(viewer.Visible()); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("viewer visible = %v", got)
	}

	admin, gw, _ := newLoadedApp(t, AdminCapabilities, cards)
	if !gw.lastAdmin {
		t.Error("admin did not request hidden cards")
	}
	if got := idsOf(admin.Visible()); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("admin visible = %v", got)
	}
}

func TestCreateReloadsWithoutPrepend(t *testing.T) {
	public, gw, _ := newLoadedApp(t, PublicCapabilities, orderedCards(1))

	card, err := public.Create(context.Background(), domain.CardInput{URL: "https://new.test", WebpageName: "New"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if gw.created[0].View == nil || *gw.created[0].View != domain.ViewHidden {
		t.Error("public submission not marked pending")
	}
	if !card.Hidden() {
		t.Error("created card should be pending")
	}
	if gw.lists != 2 {
		t.Errorf("lists = %d, want reload after create", gw.lists)
	}
	if public.Store().Len() != 2 {
		t.Errorf("store len = %d, want 2", public.Store().Len())
	}
	if got := idsOf(public.Visible()); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("pending card visible to the public: %v", got)
	}

	if err := public.Delete(context.Background(), 1, "admin"); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("public delete: err = %v", err)
	}
}

func TestExportPassesErrors(t *testing.T) {
	app, gw, _ := newLoadedApp(t, AdminCapabilities, orderedCards(1))
	gw.fail = client.ErrEmptyExport

	if _, err := app.Export(context.Background(), "admin"); !errors.Is(err, client.ErrEmptyExport) {
		t.Errorf("err = %v, want ErrEmptyExport", err)
	}
}
