package fetch

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/nao1215/linkex/internal/model"
)

// Source supplies the text to scan.
type Source interface {
	// Read returns the complete input. It blocks until all of it is
	// available or an error occurs.
	Read(ctx context.Context) (string, error)

	// Name identifies the source in logs and in the history database.
	Name() string
}

// ReaderSource reads its input from an io.Reader, typically os.Stdin.
type ReaderSource struct {
	r io.Reader
}

// NewReaderSource creates a Source that reads r to EOF.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

// Read implements Source. The context is not consulted; reading standard
// input cannot be interrupted portably.
func (s *ReaderSource) Read(_ context.Context) (string, error) {
	data, err := io.ReadAll(s.r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("failed to read input: %w", ErrInvalidUTF8)
	}
	return string(data), nil
}

// Name implements Source.
func (s *ReaderSource) Name() string {
	return model.StdinSource
}
