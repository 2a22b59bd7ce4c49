package catalog

import (
	"testing"

	"github.com/ChoisMath/edutech/pkg/core/domain"
)

func TestStoreUniqueByID(t *testing.T) {
	s := NewStore([]domain.Card{
		{ID: 1, WebpageName: "first"},
		{ID: 2, WebpageName: "B"},
		{ID: 1, WebpageName: "dup"},
	})
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if c, _ := s.Get(1); c.WebpageName != "first" {
		t.Errorf("Get(1) = %q", c.WebpageName)
	}

	s.Replace([]domain.Card{{ID: 3}})
	if _, ok := s.Get(1); ok || s.Len() != 1 {
		t.Error("Replace kept old cards")
	}
}
