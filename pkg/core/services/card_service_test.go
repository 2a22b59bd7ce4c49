package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ChoisMath/edutech/pkg/core/domain"
)

// memRepo is an in-memory CardRepository used by the service tests.
type memRepo struct {
	cards  map[int64]*domain.Card
	nextID int64
	err    error
}

func newMemRepo() *memRepo {
	return &memRepo{cards: map[int64]*domain.Card{}, nextID: 1}
}

func (r *memRepo) Create(ctx context.Context, card *domain.Card) error {
	if r.err != nil {
		return r.err
	}
	for _, c := range r.cards {
		if c.URL == card.URL {
			return domain.ErrURLExists
		}
	}
	card.ID = r.nextID
	r.nextID++
	cp := *card
	r.cards[card.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	c, ok := r.cards[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) Update(ctx context.Context, card *domain.Card) error {
	cp := *card
	r.cards[card.ID] = &cp
	return nil
}

func (r *memRepo) SetView(ctx context.Context, id int64, view int) error {
	r.cards[id].View = domain.IntPtr(view)
	return nil
}

func (r *memRepo) List(ctx context.Context, filter domain.CardFilter) ([]domain.Card, error) {
	var out []domain.Card
	for _, c := range r.cards {
		if c.Hidden() && !filter.IncludeHidden {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) FindByHost(ctx context.Context, host string, limit int) ([]domain.Card, error) {
	var out []domain.Card
	for _, c := range r.cards {
		if strings.Contains(c.URL, host) && !c.Hidden() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memRepo) Reorder(ctx context.Context, orders []domain.CardOrder) error {
	for _, o := range orders {
		if c, ok := r.cards[o.ID]; ok {
			c.SortOrder = domain.IntPtr(o.SortOrder)
		}
	}
	return nil
}

func (r *memRepo) Dump(ctx context.Context) ([]domain.Card, error) {
	return r.List(ctx, domain.CardFilter{IncludeHidden: true})
}

func (r *memRepo) Ping(ctx context.Context) error { return r.err }
func (r *memRepo) Close() error                   { return nil }

type stubSheet struct{ rows int }

func (s *stubSheet) Write(w io.Writer, cards []domain.Card) error {
	s.rows = len(cards)
	_, err := w.Write([]byte("PK-fake-xlsx"))
	return err
}

func (s *stubSheet) ContentType() string { return "application/test" }

func newTestService() (*CardService, *memRepo, *stubSheet) {
	repo := newMemRepo()
	sheet := &stubSheet{}
	svc := NewCardService(repo, sheet, Passwords{Admin: "admin", Edit: "1"}, "")
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return svc, repo, sheet
}

func TestCreateCardDefaults(t *testing.T) {
	svc, _, _ := newTestService()

	card, err := svc.CreateCard(context.Background(), domain.CardInput{
		URL:         " https://math.example.com/fractions ",
		WebpageName: "Fraction Lab",
	})
	if err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	if card.ID == 0 {
		t.Error("expected an assigned id")
	}
	if card.URL != "https://math.example.com/fractions" {
		t.Errorf("URL not trimmed: %q", card.URL)
	}
	if want := "https://via.placeholder.com/400x300?text=Fraction%20Lab"; card.ThumbnailURL != want {
		t.Errorf("ThumbnailURL = %q, want %q", card.ThumbnailURL, want)
	}
	if card.SortOrder == nil || *card.SortOrder != 0 {
		t.Errorf("SortOrder = %v, want 0", card.SortOrder)
	}
	if card.View == nil || *card.View != domain.ViewVisible {
		t.Errorf("View = %v, want 1", card.View)
	}
	if card.UsefulSubjects == nil || card.Keyword == nil {
		t.Error("tag lists must never be nil")
	}
}

func TestCreateCardValidation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateCard(context.Background(), domain.CardInput{URL: "https://x.test"})
	var verr domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateCardDuplicateURL(t *testing.T) {
	svc, _, _ := newTestService()
	in := domain.CardInput{URL: "https://x.test", WebpageName: "X"}

	if _, err := svc.CreateCard(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateCard(context.Background(), in); !errors.Is(err, domain.ErrURLExists) {
		t.Fatalf("second create err = %v, want ErrURLExists", err)
	}
}

func TestUpdateCard(t *testing.T) {
	svc, repo, _ := newTestService()
	card, _ := svc.CreateCard(context.Background(), domain.CardInput{URL: "https://x.test", WebpageName: "X"})

	tests := []struct {
		name     string
		id       int64
		password string
		in       domain.CardInput
		wantErr  error
	}{
		{"wrong password", card.ID, "nope", domain.CardInput{URL: "https://x.test", WebpageName: "Y"}, domain.ErrWrongPassword},
		{"missing card", 999, "1", domain.CardInput{URL: "https://x.test", WebpageName: "Y"}, domain.ErrCardNotFound},
		{"ok", card.ID, "1", domain.CardInput{URL: "https://x.test", WebpageName: "Y", View: domain.IntPtr(0)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateCard(context.Background(), tt.id, tt.in, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	stored, _ := repo.GetByID(context.Background(), card.ID)
	if stored.WebpageName != "Y" || !stored.Hidden() {
		t.Errorf("update not persisted: %+v", stored)
	}
	if stored.ThumbnailURL != card.ThumbnailURL {
		t.Errorf("thumbnail changed without being sent: %q", stored.ThumbnailURL)
	}
}

func TestDeleteCardHidesInsteadOfRemoving(t *testing.T) {
	svc, repo, _ := newTestService()
	card, _ := svc.CreateCard(context.Background(), domain.CardInput{URL: "https://x.test", WebpageName: "X"})

	if err := svc.DeleteCard(context.Background(), card.ID, "1"); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("edit password must not delete, got %v", err)
	}
	if err := svc.DeleteCard(context.Background(), card.ID, "admin"); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}

	public, _ := svc.ListCards(context.Background(), domain.CardFilter{})
	if len(public) != 0 {
		t.Errorf("public listing still has %d cards", len(public))
	}
	if _, ok := repo.cards[card.ID]; !ok {
		t.Error("row was removed, expected soft delete")
	}
	if _, err := svc.GetCard(context.Background(), card.ID, false); !errors.Is(err, domain.ErrCardNotFound) {
		t.Errorf("hidden card visible to public: %v", err)
	}
	if _, err := svc.GetCard(context.Background(), card.ID, true); err != nil {
		t.Errorf("hidden card not visible to admin: %v", err)
	}
}

func TestReorderCards(t *testing.T) {
	svc, repo, _ := newTestService()
	a, _ := svc.CreateCard(context.Background(), domain.CardInput{URL: "https://a.test", WebpageName: "A"})
	b, _ := svc.CreateCard(context.Background(), domain.CardInput{URL: "https://b.test", WebpageName: "B"})

	if err := svc.ReorderCards(context.Background(), "admin", nil); err == nil {
		t.Error("empty card_orders accepted")
	}
	dup := []domain.CardOrder{{ID: a.ID, SortOrder: 1}, {ID: a.ID, SortOrder: 2}}
	if err := svc.ReorderCards(context.Background(), "admin", dup); err == nil {
		t.Error("duplicate ids accepted")
	}

	orders := []domain.CardOrder{{ID: b.ID, SortOrder: 1}, {ID: a.ID, SortOrder: 2}}
	if err := svc.ReorderCards(context.Background(), "admin", orders); err != nil {
		t.Fatalf("ReorderCards: %v", err)
	}
	if got := *repo.cards[b.ID].SortOrder; got != 1 {
		t.Errorf("b sort_order = %d, want 1", got)
	}
	if got := *repo.cards[a.ID].SortOrder; got != 2 {
		t.Errorf("a sort_order = %d, want 2", got)
	}
}

func TestFindDuplicatesUsesHost(t *testing.T) {
	svc, _, _ := newTestService()
	svc.CreateCard(context.Background(), domain.CardInput{URL: "https://www.geogebra.org/m/abc", WebpageName: "G"})

	dups, err := svc.FindDuplicates(context.Background(), "www.geogebra.org/classic")
	if err != nil {
		t.Fatal(err)
	}
	if len(dups) != 1 {
		t.Fatalf("got %d duplicates, want 1", len(dups))
	}

	if _, err := svc.FindDuplicates(context.Background(), "  "); err == nil {
		t.Error("blank URL accepted")
	}
}

func TestExportCards(t *testing.T) {
	svc, _, sheet := newTestService()

	if _, err := svc.ExportCards(context.Background(), "admin"); !errors.Is(err, domain.ErrNoCards) {
		t.Fatalf("empty catalog err = %v, want ErrNoCards", err)
	}

	svc.CreateCard(context.Background(), domain.CardInput{URL: "https://a.test", WebpageName: "A"})
	svc.CreateCard(context.Background(), domain.CardInput{URL: "https://b.test", WebpageName: "B", View: domain.IntPtr(0)})

	if _, err := svc.ExportCards(context.Background(), "wrong"); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}

	export, err := svc.ExportCards(context.Background(), "admin")
	if err != nil {
		t.Fatalf("ExportCards: %v", err)
	}
	if export.Filename != "edutech_cards_20261017.xlsx" {
		t.Errorf("Filename = %q", export.Filename)
	}
	if sheet.rows != 1 {
		t.Errorf("exported %d rows, want only the public card", sheet.rows)
	}
	if len(export.Data) == 0 {
		t.Error("export has no data")
	}
}
