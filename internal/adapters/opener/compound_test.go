package opener

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3URL(t *testing.T) {
	b, k, err := parseS3URL("s3://invoices/uploads/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "invoices", b)
	assert.Equal(t, "uploads/a.csv", k)

	_, _, err = parseS3URL("s3://invoices/")
	assert.Error(t, err)
}

func TestCompoundOpener_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "firm\nShree\n")
	}))
	defer srv.Close()

	c := NewCompoundOpener(NewHTTPOpener(srv.Client()), nil, "")

	rc, meta, err := c.Open(context.Background(), srv.URL+"/in.csv")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "firm\nShree\n", string(body))
	assert.Equal(t, "text/csv", meta.ContentType)

	_, _, err = c.Open(context.Background(), srv.URL+"/missing.csv")
	assert.Error(t, err)
}

func TestCompoundOpener_Local(t *testing.T) {
	p := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(p, []byte("firm\n"), 0o600))

	c := &CompoundOpener{Local: &LocalOpener{}}
	rc, meta, err := c.Open(context.Background(), p)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "file", meta.Source)
	assert.Equal(t, int64(5), meta.Size)

	rc, _, err = c.Open(context.Background(), "file://"+p)
	require.NoError(t, err)
	rc.Close()
}

func TestCompoundOpener_Unconfigured(t *testing.T) {
	c := &CompoundOpener{}

	_, _, err := c.Open(context.Background(), "https://example.com/a.csv")
	assert.ErrorIs(t, err, ErrNoOpener)

	_, _, err = c.Open(context.Background(), "uploads/a.csv")
	assert.Error(t, err)
}
