// Package catalog holds the client-side card pipeline: the in-memory store,
// filtering, grid projection and the manual reorder workflow.
package catalog

import "github.com/ChoisMath/edutech/pkg/core/domain"

// Store is the in-memory card collection, unique by id. It is only ever replaced
// wholesale from a backend listing.
type Store struct {
	cards []domain.Card
	index map[int64]int
}

func NewStore(cards []domain.Card) *Store {
	s := &Store{}
	s.Replace(cards)
	return s
}

// Replace swaps the whole collection. Later duplicates of an id are dropped.
func (s *Store) Replace(cards []domain.Card) {
	s.cards = make([]domain.Card, 0, len(cards))
	s.index = make(map[int64]int, len(cards))
	for _, c := range cards {
		if _, dup := s.index[c.ID]; dup {
			continue
		}
		s.index[c.ID] = len(s.cards)
		s.cards = append(s.cards, c)
	}
}

// Cards returns a copy in store order.
func (s *Store) Cards() []domain.Card {
	out := make([]domain.Card, len(s.cards))
	copy(out, s.cards)
	return out
}

func (s *Store) Len() int {
	return len(s.cards)
}

func (s *Store) Get(id int64) (domain.Card, bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.Card{}, false
	}
	return s.cards[i], true
}
