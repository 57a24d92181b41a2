package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"invoice_recorder/internal/services/importer"

	"github.com/google/uuid"
)

// UploadImport stages a multipart `file` in object storage and imports it
// right away; the response is the import summary.
func (h *Handlers) UploadImport(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.JSON(w, http.StatusRequestEntityTooLarge, errorResp{Error: "file too large"})
			return
		}
		h.JSON(w, http.StatusBadRequest, errorResp{Error: "bad multipart: " + err.Error()})
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		h.JSON(w, http.StatusBadRequest, errorResp{Error: "file is required"})
		return
	}
	defer f.Close()

	name := path.Base(fh.Filename)
	ext := strings.ToLower(path.Ext(name))
	if ext != ".csv" && ext != ".xlsx" {
		h.JSON(w, http.StatusBadRequest, errorResp{Error: "please upload a .csv or .xlsx file"})
		return
	}

	key := fmt.Sprintf("imports/%s/%s%s", url.PathEscape(owner), uuid.NewString(), ext)
	if _, err := h.Uploads.Put(r.Context(), key, f, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		h.Error(w, r, fmt.Errorf("stage upload: %w", err))
		return
	}
	h.Logger.Info().Str("owner_id", owner).Str("key", key).Int64("size", fh.Size).Msg("import file staged")

	h.runImport(w, r, importer.Request{
		OwnerID:  owner,
		FilePath: fmt.Sprintf("s3://%s/%s", h.Bucket, key),
		FileName: name,
	})
}
