// Package client talks to the card catalog REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ChoisMath/edutech/pkg/config"
	"github.com/ChoisMath/edutech/pkg/core/domain"
)

type Client struct {
	baseURL           string
	http              *http.Client
	maxThumbnailBytes int64
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithMaxThumbnailBytes sets the upload ceiling checked before sending.
func WithMaxThumbnailBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxThumbnailBytes = n
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		http:              http.DefaultClient,
		maxThumbnailBytes: config.DefaultMaxThumbnailBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) MaxThumbnailBytes() int64 {
	return c.maxThumbnailBytes
}

// ExportFilename is the date-stamped name a downloaded workbook is saved under.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("edutech_cards_%s.xlsx", now.Format("2006-01-02"))
}

func (c *Client) ListCards(ctx context.Context, admin bool) ([]domain.Card, error) {
	path := "/api/cards"
	if admin {
		path += "?admin=true"
	}
	var cards []domain.Card
	if err := c.doJSON(ctx, "list cards", http.MethodGet, path, nil, &cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	return cards, nil
}

func (c *Client) CreateCard(ctx context.Context, in domain.CardInput) (*domain.Card, error) {
	if err := in.Validate(); err != nil {
		return nil, &ValidationError{Field: "card", Message: err.Error()}
	}
	var card domain.Card
	if err := c.doJSON(ctx, "create card", http.MethodPost, "/api/cards", in, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

type updateRequest struct {
	domain.CardInput
	Password string `json:"password"`
}

func (c *Client) UpdateCard(ctx context.Context, id int64, in domain.CardInput, password string) (*domain.Card, error) {
	if err := requirePassword(password); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, &ValidationError{Field: "card", Message: err.Error()}
	}
	var card domain.Card
	path := "/api/cards/" + strconv.FormatInt(id, 10)
	if err := c.doJSON(ctx, "update card", http.MethodPut, path, updateRequest{CardInput: in, Password: password}, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) DeleteCard(ctx context.Context, id int64, password string) error {
	if err := requirePassword(password); err != nil {
		return err
	}
	path := "/api/cards/" + strconv.FormatInt(id, 10)
	return c.doJSON(ctx, "delete card", http.MethodDelete, path, map[string]string{"password": password}, nil)
}

func (c *Client) ReorderCards(ctx context.Context, password string, orders []domain.CardOrder) error {
	if err := requirePassword(password); err != nil {
		return err
	}
	body := struct {
		Password   string             `json:"password"`
		CardOrders []domain.CardOrder `json:"card_orders"`
	}{password, orders}
	return c.doJSON(ctx, "reorder cards", http.MethodPost, "/api/cards/reorder", body, nil)
}

func (c *Client) CheckDuplicates(ctx context.Context, rawURL string) ([]domain.Card, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &ValidationError{Field: "url", Message: "URL is required"}
	}
	var resp struct {
		Duplicates []domain.Card `json:"duplicates"`
	}
	if err := c.doJSON(ctx, "duplicate check", http.MethodPost, "/api/duplicate-check", map[string]string{"url": rawURL}, &resp); err != nil {
		return nil, err
	}
	if resp.Duplicates == nil {
		resp.Duplicates = []domain.Card{}
	}
	return resp.Duplicates, nil
}

// UploadThumbnail checks the image locally and only then sends it as the multipart field "thumbnail".
func (c *Client) UploadThumbnail(ctx context.Context, filename string, data []byte) (*domain.Thumbnail, error) {
	contentType, err := c.checkThumbnail(filename, data)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="thumbnail"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-thumbnail", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var thumb domain.Thumbnail
	if err := c.send(req, "upload thumbnail", &thumb); err != nil {
		return nil, err
	}
	return &thumb, nil
}

func (c *Client) checkThumbnail(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ValidationError{Field: "thumbnail", Message: "No file selected"}
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", &ValidationError{Field: "thumbnail", Message: "Only image files can be uploaded"}
	}
	if int64(len(data)) > c.maxThumbnailBytes {
		return "", &ValidationError{
			Field:   "thumbnail",
			Message: fmt.Sprintf("%s is %d bytes; the limit is %d bytes", filepath.Base(filename), len(data), c.maxThumbnailBytes),
		}
	}
	return contentType, nil
}

// DownloadExcel returns the exported workbook. A successful response with an
// empty body is reported as ErrEmptyExport.
func (c *Client) DownloadExcel(ctx context.Context, password string) ([]byte, error) {
	if err := requirePassword(password); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/download-excel", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "download excel", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "download excel", Err: err}
	}
	if len(data) == 0 {
		return nil, ErrEmptyExport
	}
	return data, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, "health", http.MethodGet, "/health", nil, nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.send(req, op, out)
}

func (c *Client) send(req *http.Request, op string, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Error
		if msg == "" {
			msg = body.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func requirePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return &ValidationError{Field: "password", Message: "Password is required"}
	}
	return nil
}
