package handler

import (
	"log"
	"net/http"

	"github.com/ChoisMath/edutech/pkg/catalog"
	"github.com/ChoisMath/edutech/pkg/core/domain"
	"github.com/ChoisMath/edutech/pkg/ports"
	"github.com/ChoisMath/edutech/pkg/render"
)

var categories = []catalog.Category{catalog.CategoryAll, catalog.CategorySubject, catalog.CategoryKeyword}

// PageHandler serves the HTML catalog for visitors and moderators.
type PageHandler struct {
	service  ports.CardService
	renderer *render.Renderer
}

func NewPageHandler(service ports.CardService, renderer *render.Renderer) *PageHandler {
	return &PageHandler{service: service, renderer: renderer}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.grid(w, r, catalog.ViewerCapabilities)
}

func (h *PageHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.grid(w, r, catalog.AdminCapabilities)
}

func (h *PageHandler) grid(w http.ResponseWriter, r *http.Request, caps catalog.Capabilities) {
	params := r.URL.Query()
	category, err := catalog.ParseCategory(params.Get("category"))
	if err != nil {
		category = catalog.CategoryAll
	}
	mode, err := catalog.ParseMatchMode(params.Get("mode"))
	if err != nil {
		mode = catalog.MatchAll
	}
	query := catalog.Query{Text: params.Get("q"), Category: category, Mode: mode}

	store, err := h.service.ListCards(r.Context(), domain.CardFilter{IncludeHidden: caps.SeesHidden()})
	if err != nil {
		log.Printf("page list cards: %v", err)
		http.Error(w, "Could not load cards", http.StatusInternalServerError)
		return
	}

	visible := catalog.Filter(store, query)
	allowed := caps.CanReorder && catalog.CanReorder(query, visible)
	dragMode := allowed && params.Get("drag") == "1"

	data := render.PageData{
		Title:          "EduTech Cards",
		Admin:          caps.SeesHidden(),
		Grid:           catalog.BuildGrid(visible, catalog.GridOptions{DragMode: dragMode, ReorderAllowed: allowed, Capabilities: caps}),
		Query:          query,
		Categories:     categories,
		DragMode:       dragMode,
		ReorderAllowed: allowed,
		Shown:          len(visible),
		Total:          len(store),
	}
	h.render(w, "grid.html", data)
}

func (h *PageHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	admin := r.URL.Query().Get("admin") == "true"
	card, err := h.service.GetCard(r.Context(), id, admin)
	if err != nil {
		status, message := statusFor(err)
		http.Error(w, message, status)
		return
	}

	grid := catalog.BuildGrid([]domain.Card{*card}, catalog.GridOptions{})
	h.render(w, "detail.html", render.DetailData{
		Title: card.WebpageName,
		Admin: admin,
		Card:  *card,
		Tile:  grid.Tiles[0],
	})
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data any) {
	if err := h.renderer.RenderHTTP(w, http.StatusOK, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "template render error", http.StatusInternalServerError)
	}
}
