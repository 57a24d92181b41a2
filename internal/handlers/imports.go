package handlers

import (
	"net/http"
	"strconv"
	"strings"

	importitems "invoice_recorder/internal/repository/imports"
	"invoice_recorder/internal/services/importer"

	"github.com/gorilla/mux"
)

type remoteImportRequest struct {
	FilePath string `json:"file_path"`
}

type importResp struct {
	importer.Summary
	Message string `json:"message"`
}

// RemoteImport imports a file that is already reachable by s3:// or
// http(s):// path.
func (h *Handlers) RemoteImport(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req remoteImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.JSON(w, http.StatusBadRequest, errorResp{Error: "bad JSON: " + err.Error()})
		return
	}
	fp := strings.TrimSpace(req.FilePath)
	if fp == "" {
		h.JSON(w, http.StatusBadRequest, errorResp{Error: "file_path is required"})
		return
	}
	if strings.HasPrefix(fp, "file://") || strings.HasPrefix(fp, "/") || strings.HasPrefix(fp, ".") {
		h.JSON(w, http.StatusBadRequest, errorResp{Error: "file_path must be an s3:// or http(s):// location"})
		return
	}

	h.runImport(w, r, importer.Request{OwnerID: owner, FilePath: fp})
}

func (h *Handlers) runImport(w http.ResponseWriter, r *http.Request, req importer.Request) {
	sum, err := h.Importer.Import(r.Context(), req)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, importResp{Summary: sum, Message: sum.Message()})
}

type importListResp struct {
	Records []importitems.Record `json:"records"`
	Total   int64                `json:"total"`
}

func (h *Handlers) ListImports(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	skip, _ := strconv.ParseInt(r.URL.Query().Get("skip"), 10, 64)

	recs, total, err := h.Records.List(r.Context(), owner, limit, skip)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, importListResp{Records: recs, Total: total})
}

type importDetailResp struct {
	Record importitems.Record `json:"record"`
	Items  []importitems.Item `json:"items"`
}

// GetImport returns the record with its row items; ?failed=true keeps only
// the failed rows.
func (h *Handlers) GetImport(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	rec, err := h.Records.Find(r.Context(), owner, id)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	items, err := h.Records.Items(r.Context(), id, r.URL.Query().Get("failed") == "true")
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, importDetailResp{Record: rec, Items: items})
}
