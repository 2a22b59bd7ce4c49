package domain

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

const placeholderImage = "https://via.placeholder.com/400x300?text="

// Card represents one educational webpage in the catalog
type Card struct {
	ID                 int64      `json:"id" yaml:"id"`
	URL                string     `json:"url" yaml:"url"`
	WebpageName        string     `json:"webpage_name" yaml:"webpage_name"`
	UserSummary        string     `json:"user_summary" yaml:"user_summary"`
	UsefulSubjects     StringList `json:"useful_subjects" yaml:"useful_subjects"`
	Keyword            StringList `json:"keyword" yaml:"keyword"`
	EducationalMeaning string     `json:"educational_meaning" yaml:"educational_meaning"`
	AISummary          string     `json:"ai_summary,omitempty" yaml:"ai_summary,omitempty"`
	AIKeywords         StringList `json:"ai_keywords,omitempty" yaml:"ai_keywords,omitempty"`
	AICategory         string     `json:"ai_category,omitempty" yaml:"ai_category,omitempty"`
	ThumbnailURL       string     `json:"thumbnail_url" yaml:"thumbnail_url"`
	SortOrder          *int       `json:"sort_order,omitempty" yaml:"sort_order,omitempty"` // nil when the backend has no manual ordering
	View               *int       `json:"view,omitempty" yaml:"view,omitempty"`             // 0 = pending moderation, hidden from the public
	CreatedAt          time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" yaml:"updated_at"`
}

const (
	ViewHidden  = 0
	ViewVisible = 1
)

// Hidden reports whether the card is excluded from the public listing.
func (c Card) Hidden() bool {
	return c.View != nil && *c.View == ViewHidden
}

// Thumbnail returns the card image, or the generated placeholder keyed by its name.
func (c Card) Thumbnail() string {
	if strings.TrimSpace(c.ThumbnailURL) != "" {
		return c.ThumbnailURL
	}
	return PlaceholderThumbnail(c.WebpageName)
}

// PlaceholderThumbnail returns the generated image URL used for cards without a thumbnail.
// The name is escaped the way a browser's encodeURIComponent would, so spaces become %20.
func PlaceholderThumbnail(name string) string {
	return placeholderImage + strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}

// HasSortOrder reports whether the card carries a backend sort_order.
func (c Card) HasSortOrder() bool {
	return c.SortOrder != nil
}

// CardInput is the editable part of a card as sent by the create and update forms.
type CardInput struct {
	URL                string     `json:"url"`
	WebpageName        string     `json:"webpage_name"`
	UserSummary        string     `json:"user_summary"`
	UsefulSubjects     StringList `json:"useful_subjects"`
	Keyword            StringList `json:"keyword"`
	EducationalMeaning string     `json:"educational_meaning"`
	ThumbnailURL       *string    `json:"thumbnail_url,omitempty"` // nil leaves the stored thumbnail untouched on update
	View               *int       `json:"view,omitempty"`
}

// Validate checks the fields every card needs.
func (in CardInput) Validate() error {
	if strings.TrimSpace(in.URL) == "" || strings.TrimSpace(in.WebpageName) == "" {
		return ValidationError("URL and webpage_name are required")
	}
	if in.View != nil && *in.View != ViewHidden && *in.View != ViewVisible {
		return ValidationError("view must be 0 or 1")
	}
	return nil
}

// CardOrder assigns a position to a card in a reorder batch
type CardOrder struct {
	ID        int64 `json:"id"`
	SortOrder int   `json:"sort_order"`
}

// StringList is a tag list that tolerates the loose shapes older clients send:
// a JSON array, a comma separated string, or null.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = cleanTags(items)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = ParseTags(s)
		return nil
	}

	// Anything else (null, numbers, objects) counts as no tags.
	*l = StringList{}
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// ParseTags splits a comma separated tag string, trimming blanks.
func ParseTags(s string) StringList {
	return cleanTags(strings.Split(s, ","))
}

func cleanTags(items []string) StringList {
	out := StringList{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IntPtr is a small helper for the optional integer fields.
func IntPtr(v int) *int {
	return &v
}
