package opener

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"invoice_recorder/internal/logger"
	"invoice_recorder/internal/ports"
)

type HTTPOpener struct{ Client *http.Client }

func NewHTTPOpener(cli *http.Client) *HTTPOpener {
	if cli == nil {
		cli = &http.Client{}
	}
	return &HTTPOpener{Client: cli}
}

func (h *HTTPOpener) Open(ctx context.Context, url string) (io.ReadCloser, ports.Meta, error) {
	log := logger.WithComponent("opener_http")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ports.Meta{}, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("fetch import file")
		return nil, ports.Meta{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		log.Error().Str("url", url).Int("status", resp.StatusCode).Msg("fetch import file")
		return nil, ports.Meta{}, fmt.Errorf("http status %d", resp.StatusCode)
	}

	meta := ports.Meta{
		Source:      "https",
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}
	log.Debug().Str("url", url).Str("content_type", meta.ContentType).Int64("size", meta.Size).Msg("import file opened")
	return resp.Body, meta, nil
}
