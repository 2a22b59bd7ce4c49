package ports

import (
	"context"
	"io"

	"github.com/ChoisMath/edutech/pkg/core/domain"
)

// CardRepository defines storage operations for cards
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByID(ctx context.Context, id int64) (*domain.Card, error) // nil, nil when missing
	Update(ctx context.Context, card *domain.Card) error
	SetView(ctx context.Context, id int64, view int) error // Soft delete
	List(ctx context.Context, filter domain.CardFilter) ([]domain.Card, error)
	FindByHost(ctx context.Context, host string, limit int) ([]domain.Card, error)
	Reorder(ctx context.Context, orders []domain.CardOrder) error
	Dump(ctx context.Context) ([]domain.Card, error) // For migration
	Ping(ctx context.Context) error
	Close() error
}

// ThumbnailStore persists uploaded images and returns their public URL
type ThumbnailStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// SpreadsheetWriter renders cards into a workbook
type SpreadsheetWriter interface {
	Write(w io.Writer, cards []domain.Card) error
	ContentType() string
}

// CardService defines the business logic operations
type CardService interface {
	ListCards(ctx context.Context, filter domain.CardFilter) ([]domain.Card, error)
	GetCard(ctx context.Context, id int64, includeHidden bool) (*domain.Card, error)
	CreateCard(ctx context.Context, in domain.CardInput) (*domain.Card, error)
	UpdateCard(ctx context.Context, id int64, in domain.CardInput, password string) (*domain.Card, error)
	DeleteCard(ctx context.Context, id int64, password string) error
	ReorderCards(ctx context.Context, password string, orders []domain.CardOrder) error
	FindDuplicates(ctx context.Context, rawURL string) ([]domain.Card, error)
	ExportCards(ctx context.Context, password string) (*domain.Export, error)
	Health(ctx context.Context) error
}

// ThumbnailService validates and stores card thumbnails
type ThumbnailService interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (*domain.Thumbnail, error)
	MaxBytes() int64
}
