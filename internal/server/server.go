package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"invoice_recorder/internal/handlers"
	"invoice_recorder/internal/logger"
	"invoice_recorder/internal/transport/auth"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(port string, h *handlers.Handlers, tokens auth.TokenRepo) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      NewRouter(h, tokens),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func NewRouter(h *handlers.Handlers, tokens auth.TokenRepo) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLog)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(auth.TokenMiddleware(tokens))

	api.HandleFunc("/invoices", h.ListInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices", h.CreateInvoice).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}", h.GetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", h.UpdateInvoice).Methods(http.MethodPut)
	api.HandleFunc("/invoices/{id}", h.DeleteInvoice).Methods(http.MethodDelete)
	api.HandleFunc("/invoices/{id}/settle-payment-1", h.SettlePayment1).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}/settle-payment-2", h.SettlePayment2).Methods(http.MethodPost)

	api.HandleFunc("/imports", h.ListImports).Methods(http.MethodGet)
	api.HandleFunc("/imports", h.UploadImport).Methods(http.MethodPost)
	api.HandleFunc("/imports/remote", h.RemoteImport).Methods(http.MethodPost)
	api.HandleFunc("/imports/{id}", h.GetImport).Methods(http.MethodGet)

	api.HandleFunc("/reports/{month}", h.GenerateReport).Methods(http.MethodPost)
	api.HandleFunc("/reports/{month}", h.DownloadReport).Methods(http.MethodGet)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLog(next http.Handler) http.Handler {
	log := logger.WithComponent("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
