package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ChoisMath/edutech/pkg/core/domain"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	// A named shared-cache memory db keeps every pooled connection on the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	repo, err := NewSQLiteRepository(dsn)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seed(t *testing.T, repo *SQLiteRepository, cards ...domain.Card) []domain.Card {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range cards {
		cards[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		cards[i].UpdatedAt = cards[i].CreatedAt
		if err := repo.Create(context.Background(), &cards[i]); err != nil {
			t.Fatalf("seed %s: %v", cards[i].URL, err)
		}
	}
	return cards
}

func TestDriverFor(t *testing.T) {
	tests := map[string]string{
		"file:db.sqlite":             "sqlite",
		":memory:":                   "sqlite",
		"libsql://edutech.turso.io":  "libsql",
		"wss://edutech.turso.io?x=y": "libsql",
	}
	for url, want := range tests {
		if got := DriverFor(url); got != want {
			t.Errorf("DriverFor(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	cards := seed(t, repo, domain.Card{
		URL:            "https://phet.colorado.edu/ko/",
		WebpageName:    "PhET",
		UsefulSubjects: domain.StringList{"science", "math"},
		Keyword:        domain.StringList{"simulation"},
	})

	got, err := repo.GetByID(context.Background(), cards[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("card not found")
	}
	if got.WebpageName != "PhET" || len(got.UsefulSubjects) != 2 || got.Keyword[0] != "simulation" {
		t.Errorf("unexpected card: %+v", got)
	}
	if got.SortOrder == nil || *got.SortOrder != 0 {
		t.Errorf("SortOrder = %v, want 0", got.SortOrder)
	}
	if got.View == nil || *got.View != domain.ViewVisible {
		t.Errorf("View = %v, want 1", got.View)
	}
	if got.AIKeywords == nil {
		t.Error("AIKeywords decoded as nil")
	}

	missing, err := repo.GetByID(context.Background(), 4242)
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestCreateDuplicateURL(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, domain.Card{URL: "https://a.test", WebpageName: "A"})

	err := repo.Create(context.Background(), &domain.Card{URL: "https://a.test", WebpageName: "again"})
	if !errors.Is(err, domain.ErrURLExists) {
		t.Fatalf("err = %v, want ErrURLExists", err)
	}
}

func TestListFiltersAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	cards := seed(t, repo,
		domain.Card{URL: "https://a.test", WebpageName: "Algebra Tiles", UsefulSubjects: domain.StringList{"math"}, AICategory: "tool"},
		domain.Card{URL: "https://b.test", WebpageName: "Biology Atlas", UsefulSubjects: domain.StringList{"science"}, AISummary: "cells and algebra-free"},
		domain.Card{URL: "https://c.test", WebpageName: "Chem Lab", UsefulSubjects: domain.StringList{"science"}, View: domain.IntPtr(0)},
	)
	ctx := context.Background()

	// created_at DESC breaks the sort_order tie
	public, err := repo.List(ctx, domain.CardFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(public) != 2 || public[0].ID != cards[1].ID || public[1].ID != cards[0].ID {
		t.Fatalf("public list order wrong: %+v", public)
	}

	all, _ := repo.List(ctx, domain.CardFilter{IncludeHidden: true})
	if len(all) != 3 {
		t.Errorf("admin list has %d cards, want 3", len(all))
	}

	tests := []struct {
		name   string
		filter domain.CardFilter
		want   int
	}{
		{"search name is case-insensitive", domain.CardFilter{Search: "ALGEBRA"}, 2},
		{"category", domain.CardFilter{Category: "tool"}, 1},
		{"subject", domain.CardFilter{Subject: "science"}, 1},
		{"subject with hidden", domain.CardFilter{Subject: "science", IncludeHidden: true}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d cards, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReorderAndSetView(t *testing.T) {
	repo := newTestRepo(t)
	cards := seed(t, repo,
		domain.Card{URL: "https://a.test", WebpageName: "A"},
		domain.Card{URL: "https://b.test", WebpageName: "B"},
	)
	ctx := context.Background()

	err := repo.Reorder(ctx, []domain.CardOrder{{ID: cards[0].ID, SortOrder: 1}, {ID: cards[1].ID, SortOrder: 2}})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	list, _ := repo.List(ctx, domain.CardFilter{})
	if list[0].ID != cards[0].ID {
		t.Errorf("first card = %d, want %d", list[0].ID, cards[0].ID)
	}

	err = repo.Reorder(ctx, []domain.CardOrder{{ID: cards[1].ID, SortOrder: 0}, {ID: 999, SortOrder: 1}})
	if !errors.Is(err, domain.ErrCardNotFound) {
		t.Fatalf("err = %v, want ErrCardNotFound", err)
	}
	b, _ := repo.GetByID(ctx, cards[1].ID)
	if *b.SortOrder != 2 {
		t.Errorf("failed batch was partially applied: sort_order = %d", *b.SortOrder)
	}

	if err := repo.SetView(ctx, cards[0].ID, domain.ViewHidden); err != nil {
		t.Fatal(err)
	}
	list, _ = repo.List(ctx, domain.CardFilter{})
	if len(list) != 1 {
		t.Errorf("hidden card still listed: %d cards", len(list))
	}
	dump, _ := repo.Dump(ctx)
	if len(dump) != 2 {
		t.Errorf("dump has %d cards, want 2", len(dump))
	}
}

func TestFindByHost(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo,
		domain.Card{URL: "https://www.geogebra.org/m/a", WebpageName: "A"},
		domain.Card{URL: "https://www.geogebra.org/m/b", WebpageName: "B", View: domain.IntPtr(0)},
		domain.Card{URL: "https://desmos.com", WebpageName: "C"},
	)

	got, err := repo.FindByHost(context.Background(), "www.geogebra.org", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].WebpageName != "A" {
		t.Errorf("FindByHost = %+v", got)
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	cards := seed(t, repo,
		domain.Card{URL: "https://a.test", WebpageName: "A"},
		domain.Card{URL: "https://b.test", WebpageName: "B"},
	)
	ctx := context.Background()

	c := cards[0]
	c.WebpageName = "Renamed"
	c.Keyword = domain.StringList{"x", "y"}
	if err := repo.Update(ctx, &c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.GetByID(ctx, c.ID)
	if got.WebpageName != "Renamed" || len(got.Keyword) != 2 {
		t.Errorf("update not stored: %+v", got)
	}

	c.URL = "https://b.test"
	if err := repo.Update(ctx, &c); !errors.Is(err, domain.ErrURLExists) {
		t.Errorf("err = %v, want ErrURLExists", err)
	}
}
