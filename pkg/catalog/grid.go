package catalog

import (
	"strings"

	"github.com/ChoisMath/edutech/pkg/core/domain"
)

const (
	MaxTags        = 3
	DefaultSummary = "No summary yet."
)

// TagGroup is the visible head of a tag list plus how many were left out.
type TagGroup struct {
	Shown    []string
	Overflow int
}

func newTagGroup(tags []string) TagGroup {
	if len(tags) <= MaxTags {
		return TagGroup{Shown: tags}
	}
	return TagGroup{Shown: tags[:MaxTags], Overflow: len(tags) - MaxTags}
}

// Tile is one card as every renderer draws it.
type Tile struct {
	Card      domain.Card
	ID        int64
	Title     string
	URL       string
	Thumbnail string
	Subjects  TagGroup
	Keywords  TagGroup
	Summary   string
	Hidden    bool
	Draggable bool
	Editable  bool
	Deletable bool
}

type GridOptions struct {
	DragMode       bool
	ReorderAllowed bool
	Capabilities   Capabilities
}

type Grid struct {
	Tiles []Tile
	Empty bool
	// Reorderable is true when at least one tile carries a drag handle.
	Reorderable bool
}

// BuildGrid projects the visible cards into tiles, in order.
func BuildGrid(visible []domain.Card, opts GridOptions) Grid {
	if len(visible) == 0 {
		return Grid{Empty: true}
	}

	grid := Grid{Tiles: make([]Tile, 0, len(visible))}
	handles := opts.DragMode && opts.ReorderAllowed && opts.Capabilities.CanReorder
	for _, c := range visible {
		summary := strings.TrimSpace(c.UserSummary)
		if summary == "" {
			summary = DefaultSummary
		}
		t := Tile{
			Card:      c,
			ID:        c.ID,
			Title:     c.WebpageName,
			URL:       c.URL,
			Thumbnail: c.Thumbnail(),
			Subjects:  newTagGroup(c.UsefulSubjects),
			Keywords:  newTagGroup(c.Keyword),
			Summary:   summary,
			Hidden:    c.Hidden(),
			Draggable: handles && c.HasSortOrder(),
			Editable:  opts.Capabilities.CanEdit,
			Deletable: opts.Capabilities.CanDelete,
		}
		if t.Draggable {
			grid.Reorderable = true
		}
		grid.Tiles = append(grid.Tiles, t)
	}
	return grid
}
