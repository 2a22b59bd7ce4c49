package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ChoisMath/edutech/pkg/core/services"
	"github.com/ChoisMath/edutech/pkg/ports"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 64 << 10

type UploadHandler struct {
	service ports.ThumbnailService
}

func NewUploadHandler(service ports.ThumbnailService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Upload Thumbnail (multipart field "thumbnail")
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.service.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("File size must be less than %s", services.FormatBytes(limit)))
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	thumb, err := h.service.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"filename": thumb.Filename,
		"url":      thumb.URL,
	})
}
