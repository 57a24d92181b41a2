package opener

import (
	"context"
	"io"
	"os"

	"invoice_recorder/internal/ports"
)

// LocalOpener reads files from disk; only the CLI enables it.
type LocalOpener struct{}

func (LocalOpener) Open(_ context.Context, name string) (io.ReadCloser, ports.Meta, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, ports.Meta{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ports.Meta{}, err
	}
	return f, ports.Meta{Source: "file", Size: st.Size()}, nil
}
