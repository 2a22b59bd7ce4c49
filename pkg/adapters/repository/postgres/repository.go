package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ChoisMath/edutech/pkg/core/domain"
	"github.com/ChoisMath/edutech/pkg/ports"
)

// cardRecord is the edutech_cards row as gorm maps it.
type cardRecord struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement"`
	URL                string    `gorm:"type:text;not null;uniqueIndex"`
	WebpageName        string    `gorm:"type:text;not null"`
	UserSummary        string    `gorm:"type:text"`
	UsefulSubjects     []string  `gorm:"serializer:json;type:jsonb"`
	Keyword            []string  `gorm:"serializer:json;type:jsonb"`
	EducationalMeaning string    `gorm:"type:text"`
	AISummary          string    `gorm:"column:ai_summary;type:text"`
	AIKeywords         []string  `gorm:"column:ai_keywords;serializer:json;type:jsonb"`
	AICategory         string    `gorm:"column:ai_category;type:text"`
	ThumbnailURL       string    `gorm:"type:text"`
	SortOrder          int       `gorm:"default:0;index"`
	View               int       `gorm:"default:1;index"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (cardRecord) TableName() string {
	return "edutech_cards"
}

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&cardRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func toRecord(c *domain.Card) cardRecord {
	rec := cardRecord{
		ID:                 c.ID,
		URL:                c.URL,
		WebpageName:        c.WebpageName,
		UserSummary:        c.UserSummary,
		UsefulSubjects:     nonNil(c.UsefulSubjects),
		Keyword:            nonNil(c.Keyword),
		EducationalMeaning: c.EducationalMeaning,
		AISummary:          c.AISummary,
		AIKeywords:         nonNil(c.AIKeywords),
		AICategory:         c.AICategory,
		ThumbnailURL:       c.ThumbnailURL,
		View:               domain.ViewVisible,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	if c.SortOrder != nil {
		rec.SortOrder = *c.SortOrder
	}
	if c.View != nil {
		rec.View = *c.View
	}
	return rec
}

func (rec cardRecord) toDomain() domain.Card {
	return domain.Card{
		ID:                 rec.ID,
		URL:                rec.URL,
		WebpageName:        rec.WebpageName,
		UserSummary:        rec.UserSummary,
		UsefulSubjects:     nonNil(rec.UsefulSubjects),
		Keyword:            nonNil(rec.Keyword),
		EducationalMeaning: rec.EducationalMeaning,
		AISummary:          rec.AISummary,
		AIKeywords:         nonNil(rec.AIKeywords),
		AICategory:         rec.AICategory,
		ThumbnailURL:       rec.ThumbnailURL,
		SortOrder:          domain.IntPtr(rec.SortOrder),
		View:               domain.IntPtr(rec.View),
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

func nonNil(l []string) domain.StringList {
	if l == nil {
		return domain.StringList{}
	}
	return domain.StringList(l)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrURLExists
	}
	return err
}

func (r *PostgresRepository) Create(ctx context.Context, card *domain.Card) error {
	rec := toRecord(card)
	rec.ID = 0
	// Select every column so zero values like view=0 are written instead of the column default.
	if err := r.db.WithContext(ctx).Select("*").Omit("id").Create(&rec).Error; err != nil {
		return translate(err)
	}
	*card = rec.toDomain()
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	var rec cardRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	card := rec.toDomain()
	return &card, nil
}

func (r *PostgresRepository) Update(ctx context.Context, card *domain.Card) error {
	rec := toRecord(card)
	err := r.db.WithContext(ctx).Model(&cardRecord{ID: card.ID}).
		Select("url", "webpage_name", "user_summary", "useful_subjects", "keyword",
			"educational_meaning", "thumbnail_url", "view", "updated_at").
		Updates(&rec).Error
	return translate(err)
}

func (r *PostgresRepository) SetView(ctx context.Context, id int64, view int) error {
	return r.db.WithContext(ctx).Model(&cardRecord{}).Where("id = ?", id).
		Updates(map[string]interface{}{"view": view, "updated_at": time.Now()}).Error
}

func (r *PostgresRepository) List(ctx context.Context, filter domain.CardFilter) ([]domain.Card, error) {
	query, err := listQuery(r.db.WithContext(ctx), filter)
	if err != nil {
		return nil, err
	}
	var recs []cardRecord
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}
	return toCards(recs), nil
}

// listQuery narrows the card table by filter, ordered as the grid shows it.
func listQuery(db *gorm.DB, filter domain.CardFilter) (*gorm.DB, error) {
	query := db.Model(&cardRecord{})

	if !filter.IncludeHidden {
		query = query.Where("view = ?", domain.ViewVisible)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("webpage_name ILIKE ? OR user_summary ILIKE ? OR ai_summary ILIKE ?", pattern, pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("ai_category = ?", filter.Category)
	}
	if filter.Subject != "" {
		contains, err := json.Marshal([]string{filter.Subject})
		if err != nil {
			return nil, err
		}
		query = query.Where("useful_subjects @> ?::jsonb", string(contains))
	}
	return query.Order("sort_order ASC").Order("created_at DESC"), nil
}

func (r *PostgresRepository) FindByHost(ctx context.Context, host string, limit int) ([]domain.Card, error) {
	var recs []cardRecord
	if err := hostQuery(r.db.WithContext(ctx), host, limit).Find(&recs).Error; err != nil {
		return nil, err
	}
	return toCards(recs), nil
}

func hostQuery(db *gorm.DB, host string, limit int) *gorm.DB {
	return db.Model(&cardRecord{}).
		Where("view = ? AND url ILIKE ?", domain.ViewVisible, "%"+host+"%").
		Order("created_at DESC").
		Limit(limit)
}

func (r *PostgresRepository) Reorder(ctx context.Context, orders []domain.CardOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyOrders(tx, orders, time.Now())
	})
}

// applyOrders stops at the first id that matches no row so the caller's
// transaction rolls back.
func applyOrders(tx *gorm.DB, orders []domain.CardOrder, now time.Time) error {
	for _, o := range orders {
		res := tx.Model(&cardRecord{}).Where("id = ?", o.ID).
			Updates(map[string]interface{}{"sort_order": o.SortOrder, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("card %d: %w", o.ID, domain.ErrCardNotFound)
		}
	}
	return nil
}

func (r *PostgresRepository) Dump(ctx context.Context) ([]domain.Card, error) {
	var recs []cardRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return toCards(recs), nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toCards(recs []cardRecord) []domain.Card {
	cards := make([]domain.Card, 0, len(recs))
	for _, rec := range recs {
		cards = append(cards, rec.toDomain())
	}
	return cards
}

// Ensure interface compliance
var _ ports.CardRepository = (*PostgresRepository)(nil)
