package store

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/joseph-ayodele/deepread-extract/constants"
	"github.com/joseph-ayodele/deepread-extract/internal/common"
)

// Store writes results under <root>/<process type>/.
type Store struct {
	root   string
	logger *slog.Logger
}

func New(root string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: root, logger: logger}
}

// Dir is the output directory for pt. It is not created.
func (s *Store) Dir(pt constants.ProcessType) string {
	return filepath.Join(s.root, string(pt))
}

// JSONPath is where Persist writes the result for originalFilename.
func (s *Store) JSONPath(pt constants.ProcessType, originalFilename string) string {
	base := filepath.Base(originalFilename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(s.Dir(pt), stem+".json")
}

// Persist writes raw unchanged to <root>/<pt>/<stem>.json, replacing any
// earlier result for the same stem.
func (s *Store) Persist(pt constants.ProcessType, originalFilename string, raw []byte) (string, error) {
	if err := s.ensureDir(pt); err != nil {
		return "", err
	}
	path := s.JSONPath(pt, originalFilename)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		s.logger.Error("store.write_json_failed", "path", path, "error", err)
		return "", common.NewFileSystemError(fmt.Sprintf("write %s", path), err)
	}
	s.logger.Debug("store.json_written", "path", path, "bytes", len(raw))
	return path, nil
}

// SaveImage writes img as <root>/<pt>/<basename of filename>; the encoder
// follows the extension.
func (s *Store) SaveImage(pt constants.ProcessType, filename string, img image.Image) (string, error) {
	if err := s.ensureDir(pt); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir(pt), filepath.Base(filename))
	if err := imaging.Save(img, path, imaging.JPEGQuality(90)); err != nil {
		s.logger.Error("store.write_image_failed", "path", path, "error", err)
		return "", common.NewFileSystemError(fmt.Sprintf("write %s", path), err)
	}
	s.logger.Debug("store.image_written", "path", path)
	return path, nil
}

func (s *Store) ensureDir(pt constants.ProcessType) error {
	dir := s.Dir(pt)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("store.mkdir_failed", "dir", dir, "error", err)
		return common.NewFileSystemError(fmt.Sprintf("create %s", dir), err)
	}
	return nil
}
