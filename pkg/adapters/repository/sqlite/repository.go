package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/ChoisMath/edutech/pkg/core/domain"
	"github.com/ChoisMath/edutech/pkg/ports"
)

const cardColumns = `id, url, webpage_name, user_summary, useful_subjects, keyword, educational_meaning,
	ai_summary, ai_keywords, ai_category, thumbnail_url, sort_order, view, created_at, updated_at`

type SQLiteRepository struct {
	db     *sql.DB
	driver string
}

// DriverFor picks the database/sql driver for a DATABASE_URL.
func DriverFor(dbURL string) string {
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		return "libsql"
	}
	return "sqlite"
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := DriverFor(dbURL)

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteRepository{db: db, driver: driverName}, nil
}

func (r *SQLiteRepository) Driver() string {
	return r.driver
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS edutech_cards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		webpage_name TEXT NOT NULL,
		user_summary TEXT DEFAULT '',
		useful_subjects JSON,
		keyword JSON,
		educational_meaning TEXT DEFAULT '',
		ai_summary TEXT DEFAULT '',
		ai_keywords JSON,
		ai_category TEXT DEFAULT '',
		thumbnail_url TEXT DEFAULT '',
		sort_order INTEGER DEFAULT 0,
		view INTEGER DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_edutech_cards_order ON edutech_cards(sort_order, created_at);
	CREATE INDEX IF NOT EXISTS idx_edutech_cards_view ON edutech_cards(view);
	`
	if _, err := db.Exec(query); err != nil {
		return err
	}

	// Databases created before manual ordering existed lack the column.
	// SQLite has no ADD COLUMN IF NOT EXISTS, so the duplicate-column error is ignored.
	_, _ = db.Exec(`ALTER TABLE edutech_cards ADD COLUMN sort_order INTEGER DEFAULT 0`)

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(s rowScanner) (*domain.Card, error) {
	var c domain.Card
	var subjects, keywords, aiKeywords []byte
	var userSummary, meaning, aiSummary, aiCategory, thumbnail sql.NullString
	var sortOrder, view sql.NullInt64

	err := s.Scan(
		&c.ID, &c.URL, &c.WebpageName, &userSummary, &subjects, &keywords, &meaning,
		&aiSummary, &aiKeywords, &aiCategory, &thumbnail, &sortOrder, &view,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.UserSummary = userSummary.String
	c.EducationalMeaning = meaning.String
	c.AISummary = aiSummary.String
	c.AICategory = aiCategory.String
	c.ThumbnailURL = thumbnail.String
	c.UsefulSubjects = decodeList(subjects)
	c.Keyword = decodeList(keywords)
	c.AIKeywords = decodeList(aiKeywords)
	if sortOrder.Valid {
		c.SortOrder = domain.IntPtr(int(sortOrder.Int64))
	}
	if view.Valid {
		c.View = domain.IntPtr(int(view.Int64))
	}
	return &c, nil
}

func decodeList(raw []byte) domain.StringList {
	list := domain.StringList{}
	if len(raw) == 0 {
		return list
	}
	_ = json.Unmarshal(raw, &list)
	if list == nil {
		list = domain.StringList{}
	}
	return list
}

func encodeList(l domain.StringList) ([]byte, error) {
	if l == nil {
		l = domain.StringList{}
	}
	return json.Marshal([]string(l))
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *SQLiteRepository) Create(ctx context.Context, card *domain.Card) error {
	query := `INSERT INTO edutech_cards (url, webpage_name, user_summary, useful_subjects, keyword,
				educational_meaning, ai_summary, ai_keywords, ai_category, thumbnail_url, sort_order, view,
				created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	subjects, err := encodeList(card.UsefulSubjects)
	if err != nil {
		return err
	}
	keywords, err := encodeList(card.Keyword)
	if err != nil {
		return err
	}
	aiKeywords, err := encodeList(card.AIKeywords)
	if err != nil {
		return err
	}

	sortOrder, view := 0, domain.ViewVisible
	if card.SortOrder != nil {
		sortOrder = *card.SortOrder
	}
	if card.View != nil {
		view = *card.View
	}

	res, err := r.db.ExecContext(ctx, query,
		card.URL, card.WebpageName, card.UserSummary, subjects, keywords,
		card.EducationalMeaning, card.AISummary, aiKeywords, card.AICategory, card.ThumbnailURL,
		sortOrder, view, card.CreatedAt, card.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrURLExists
	}
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	card.ID = id
	card.SortOrder = domain.IntPtr(sortOrder)
	card.View = domain.IntPtr(view)
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM edutech_cards WHERE id = ?`

	card, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, card *domain.Card) error {
	query := `UPDATE edutech_cards SET url = ?, webpage_name = ?, user_summary = ?, useful_subjects = ?,
				keyword = ?, educational_meaning = ?, thumbnail_url = ?, view = ?, updated_at = ?
			  WHERE id = ?`

	subjects, err := encodeList(card.UsefulSubjects)
	if err != nil {
		return err
	}
	keywords, err := encodeList(card.Keyword)
	if err != nil {
		return err
	}

	view := domain.ViewVisible
	if card.View != nil {
		view = *card.View
	}

	_, err = r.db.ExecContext(ctx, query,
		card.URL, card.WebpageName, card.UserSummary, subjects, keywords,
		card.EducationalMeaning, card.ThumbnailURL, view, card.UpdatedAt, card.ID,
	)
	if isUniqueViolation(err) {
		return domain.ErrURLExists
	}
	return err
}

func (r *SQLiteRepository) SetView(ctx context.Context, id int64, view int) error {
	query := `UPDATE edutech_cards SET view = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, view, time.Now(), id)
	return err
}

func (r *SQLiteRepository) List(ctx context.Context, filter domain.CardFilter) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM edutech_cards WHERE 1 = 1`
	args := []interface{}{}

	if !filter.IncludeHidden {
		query += " AND view = 1"
	}

	// SQLite LIKE is case-insensitive for ASCII, which matches the ILIKE search of the Postgres backend.
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query += " AND (webpage_name LIKE ? OR user_summary LIKE ? OR ai_summary LIKE ?)"
		args = append(args, pattern, pattern, pattern)
	}

	if filter.Category != "" {
		query += " AND ai_category = ?"
		args = append(args, filter.Category)
	}

	if filter.Subject != "" {
		query += " AND EXISTS (SELECT 1 FROM json_each(edutech_cards.useful_subjects) WHERE value = ?)"
		args = append(args, filter.Subject)
	}

	query += " ORDER BY sort_order ASC, created_at DESC"

	return r.queryCards(ctx, query, args...)
}

func (r *SQLiteRepository) FindByHost(ctx context.Context, host string, limit int) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM edutech_cards
			  WHERE view = 1 AND url LIKE ?
			  ORDER BY created_at DESC LIMIT ?`
	return r.queryCards(ctx, query, "%"+host+"%", limit)
}

// Reorder writes every sort_order of the batch atomically. An unknown id aborts the batch.
func (r *SQLiteRepository) Reorder(ctx context.Context, orders []domain.CardOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE edutech_cards SET sort_order = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, o := range orders {
		res, err := stmt.ExecContext(ctx, o.SortOrder, now, o.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("card %d: %w", o.ID, domain.ErrCardNotFound)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM edutech_cards ORDER BY id ASC`
	return r.queryCards(ctx, query)
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) queryCards(ctx context.Context, query string, args ...interface{}) ([]domain.Card, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []domain.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

// Ensure interface compliance
var _ ports.CardRepository = (*SQLiteRepository)(nil)
