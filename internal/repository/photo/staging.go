package photo

import (
	"fmt"
	"io"

	"todoList/internal/logger"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Staging holds uploaded images until the photo store has copied them.
type Staging struct {
	fs  afero.Fs
	dir string
}

func NewStaging(fs afero.Fs, dir string) (*Staging, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &Staging{fs: fs, dir: dir}, nil
}

// Stage copies r into a temp file and returns its URI and a cleanup func.
func (s *Staging) Stage(r io.Reader) (string, func(), error) {
	f, err := afero.TempFile(s.fs, s.dir, "upload-*"+Extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating staging file: %w", err)
	}
	name := f.Name()
	cleanup := func() {
		if err := s.fs.Remove(name); err != nil {
			logger.Warn("Repository: could not remove staged upload", zap.String("file", name), zap.Error(err))
		}
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing staging file: %w", err)
	}
	return LocalURI(name), cleanup, nil
}
