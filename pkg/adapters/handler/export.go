package handler

import (
	"fmt"
	"net/http"
)

// Download Excel export of public cards
func (h *HTTPHandler) DownloadExcel(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	export, err := h.service.ExportCards(r.Context(), req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}
