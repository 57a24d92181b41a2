package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"invoice_recorder/internal/services/reports"

	"github.com/gorilla/mux"
)

type reportResp struct {
	Month     string `json:"month"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
	FileName  string `json:"file_name"`
}

func (h *Handlers) GenerateReport(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	month := mux.Vars(r)["month"]
	f, err := reports.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.Error(w, r, err)
		return
	}

	a, err := h.Reports.Generate(r.Context(), owner, month, f)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusCreated, reportResp{
		Month:     a.Month,
		Format:    a.Format,
		SizeBytes: a.SizeBytes,
		FileName:  reports.FileName(month, f),
	})
}

func (h *Handlers) DownloadReport(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	month := mux.Vars(r)["month"]
	f, err := reports.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.Error(w, r, err)
		return
	}

	rc, a, err := h.Reports.Open(r.Context(), owner, month, f)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.FileName(month, f)))
	if a.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(a.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Warn().Err(err).Str("owner_id", owner).Str("month", month).Msg("stream report")
	}
}
