package domain

import "time"

// Thumbnail describes an uploaded card image
type Thumbnail struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Export is a rendered spreadsheet ready to be streamed to the client
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
	CardCount   int
	CreatedAt   time.Time
}

// CardFilter narrows a repository listing.
type CardFilter struct {
	Search        string // matched against name, summary and AI summary
	Category      string // exact ai_category
	Subject       string // must be one of useful_subjects
	IncludeHidden bool   // admin listing also returns view=0 cards
}
