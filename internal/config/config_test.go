package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("AWS_BUCKET", "")

	st := Load()
	assert.Equal(t, "8070", st.Port)
	assert.Equal(t, "invoices", st.S3.Bucket)
	assert.Equal(t, int64(32), st.MaxUploadMB)
	assert.Equal(t, "info", st.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("PG_MAX_CONNS", "3")
	t.Setenv("IMPORT_MAX_UPLOAD_MB", "not-a-number")
	t.Setenv("AWS_USE_SSL", "true")

	st := Load()
	assert.Equal(t, "9999", st.Port)
	assert.Equal(t, int32(3), st.Postgres.MaxConns)
	assert.Equal(t, int64(32), st.MaxUploadMB)
	assert.True(t, st.S3.UseSSL)
}

func TestPostgresDSNEscapesPassword(t *testing.T) {
	st := Load()
	st.Postgres.Password = "p@ss word"
	assert.Contains(t, st.Postgres.DSN(), "p%40ss%20word")
}
