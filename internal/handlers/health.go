package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type healthResp struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.Health == nil {
		h.JSON(w, http.StatusOK, healthResp{OK: true})
		return
	}
	if err := h.Health.CheckConnections(ctx); err != nil {
		h.JSON(w, http.StatusInternalServerError, healthResp{Errors: strings.Split(err.Error(), "\n")})
		return
	}
	h.JSON(w, http.StatusOK, healthResp{OK: true})
}
