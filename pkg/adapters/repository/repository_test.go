package repository

import (
	"context"
	"testing"
)

func TestBackend(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"file:db.sqlite", "sqlite"},
		{"libsql://cards.turso.io?authToken=x", "libsql"},
		{"postgres://u:p@localhost:5432/edutech", "postgres"},
		{"postgresql://u:p@db.supabase.co/postgres", "postgres"},
	}
	for _, tt := range tests {
		if got := Backend(tt.url); got != tt.want {
			t.Errorf("Backend(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestOpenSQLite(t *testing.T) {
	repo, err := Open("file:openTest?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer repo.Close()

	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
