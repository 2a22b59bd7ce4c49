package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ChoisMath/edutech/pkg/core/domain"
	"github.com/ChoisMath/edutech/pkg/ports"
)

const duplicateLimit = 5

type CardService struct {
	repo         ports.CardRepository
	sheet        ports.SpreadsheetWriter
	passwords    Passwords
	exportPrefix string
	now          func() time.Time
}

func NewCardService(repo ports.CardRepository, sheet ports.SpreadsheetWriter, passwords Passwords, exportPrefix string) *CardService {
	if exportPrefix == "" {
		exportPrefix = "edutech_cards"
	}
	return &CardService{
		repo:         repo,
		sheet:        sheet,
		passwords:    passwords,
		exportPrefix: exportPrefix,
		now:          time.Now,
	}
}

func (s *CardService) ListCards(ctx context.Context, filter domain.CardFilter) ([]domain.Card, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	cards, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	return cards, nil
}

func (s *CardService) GetCard(ctx context.Context, id int64, includeHidden bool) (*domain.Card, error) {
	card, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get card %d: %w", id, err)
	}
	if card == nil || (card.Hidden() && !includeHidden) {
		return nil, domain.ErrCardNotFound
	}
	return card, nil
}

func (s *CardService) CreateCard(ctx context.Context, in domain.CardInput) (*domain.Card, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	thumbnail := ""
	if in.ThumbnailURL != nil {
		thumbnail = strings.TrimSpace(*in.ThumbnailURL)
	}
	if thumbnail == "" {
		thumbnail = domain.PlaceholderThumbnail(strings.TrimSpace(in.WebpageName))
	}

	view := domain.ViewVisible
	if in.View != nil {
		view = *in.View
	}

	now := s.now()
	card := &domain.Card{
		URL:                strings.TrimSpace(in.URL),
		WebpageName:        strings.TrimSpace(in.WebpageName),
		UserSummary:        in.UserSummary,
		UsefulSubjects:     nonNil(in.UsefulSubjects),
		Keyword:            nonNil(in.Keyword),
		EducationalMeaning: in.EducationalMeaning,
		AIKeywords:         domain.StringList{},
		ThumbnailURL:       thumbnail,
		SortOrder:          domain.IntPtr(0), // new cards go to the front
		View:               domain.IntPtr(view),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

func (s *CardService) UpdateCard(ctx context.Context, id int64, in domain.CardInput, password string) (*domain.Card, error) {
	if !MatchPassword(s.passwords.Edit, password) {
		return nil, domain.ErrWrongPassword
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	card, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get card %d: %w", id, err)
	}
	if card == nil {
		return nil, domain.ErrCardNotFound
	}

	card.URL = strings.TrimSpace(in.URL)
	card.WebpageName = strings.TrimSpace(in.WebpageName)
	card.UserSummary = in.UserSummary
	card.UsefulSubjects = nonNil(in.UsefulSubjects)
	card.Keyword = nonNil(in.Keyword)
	card.EducationalMeaning = in.EducationalMeaning
	if in.ThumbnailURL != nil {
		card.ThumbnailURL = *in.ThumbnailURL
	}
	if in.View != nil {
		card.View = domain.IntPtr(*in.View)
	}
	card.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("update card %d: %w", id, err)
	}
	return card, nil
}

// DeleteCard hides the card from the public listing. Rows are never removed.
func (s *CardService) DeleteCard(ctx context.Context, id int64, password string) error {
	if !MatchPassword(s.passwords.Admin, password) {
		return domain.ErrWrongPassword
	}

	card, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get card %d: %w", id, err)
	}
	if card == nil {
		return domain.ErrCardNotFound
	}

	if err := s.repo.SetView(ctx, id, domain.ViewHidden); err != nil {
		return fmt.Errorf("hide card %d: %w", id, err)
	}
	return nil
}

func (s *CardService) ReorderCards(ctx context.Context, password string, orders []domain.CardOrder) error {
	if !MatchPassword(s.passwords.Admin, password) {
		return domain.ErrWrongPassword
	}
	if len(orders) == 0 {
		return domain.ValidationError("card_orders is required")
	}

	seen := make(map[int64]bool, len(orders))
	for _, o := range orders {
		if o.ID <= 0 {
			return domain.ValidationError("card_orders entries need a valid id")
		}
		if seen[o.ID] {
			return domain.ValidationError(fmt.Sprintf("card %d appears twice in card_orders", o.ID))
		}
		seen[o.ID] = true
	}

	if err := s.repo.Reorder(ctx, orders); err != nil {
		return fmt.Errorf("reorder cards: %w", err)
	}
	return nil
}

// FindDuplicates returns public cards hosted on the same domain as rawURL.
func (s *CardService) FindDuplicates(ctx context.Context, rawURL string) ([]domain.Card, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, domain.ValidationError("URL is required")
	}

	host := hostOf(rawURL)
	if host == "" {
		return []domain.Card{}, nil
	}

	cards, err := s.repo.FindByHost(ctx, host, duplicateLimit)
	if err != nil {
		return nil, fmt.Errorf("find duplicates for %s: %w", host, err)
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	return cards, nil
}

// ExportCards renders every public card into a spreadsheet.
func (s *CardService) ExportCards(ctx context.Context, password string) (*domain.Export, error) {
	if !MatchPassword(s.passwords.Admin, password) {
		return nil, domain.ErrWrongPassword
	}

	cards, err := s.repo.List(ctx, domain.CardFilter{})
	if err != nil {
		return nil, fmt.Errorf("list cards for export: %w", err)
	}
	if len(cards) == 0 {
		return nil, domain.ErrNoCards
	}

	var buf bytes.Buffer
	if err := s.sheet.Write(&buf, cards); err != nil {
		return nil, fmt.Errorf("write spreadsheet: %w", err)
	}

	now := s.now()
	return &domain.Export{
		Filename:    fmt.Sprintf("%s_%s.xlsx", s.exportPrefix, now.Format("20060102")),
		ContentType: s.sheet.ContentType(),
		Data:        buf.Bytes(),
		CardCount:   len(cards),
		CreatedAt:   now,
	}, nil
}

func (s *CardService) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		// Users often paste "example.com/page" without a scheme.
		u, err = url.Parse("http://" + rawURL)
		if err != nil {
			return ""
		}
	}
	return strings.ToLower(u.Hostname())
}

func nonNil(l domain.StringList) domain.StringList {
	if l == nil {
		return domain.StringList{}
	}
	return l
}

// Ensure interface compliance
var _ ports.CardService = (*CardService)(nil)
