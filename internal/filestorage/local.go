package filestorage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	stagingDir   = "tmp"
	blobsDir     = "blobs"
	textIconsDir = "text-icons"
	originalStem = "default"
)

// Local lays assets out under a root directory:
//
//	tmp/<uuid>                        staging files
//	blobs/<id>/default<ext>           originals
//	blobs/<id>/<w>x<h>[_fill]<ext>    variants
//	text-icons/<TEXT>/<s>x<s>.png     text icons
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	for _, dir := range []string{stagingDir, blobsDir, textIconsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}
	return &Local{root: root}, nil
}

func (l *Local) Root() string {
	return l.root
}

// CreateStaging opens a new uniquely named staging file.
func (l *Local) CreateStaging() (*os.File, error) {
	path := filepath.Join(l.root, stagingDir, uuid.NewString())
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
}

// Commit moves a staging file to the original location of asset id.
func (l *Local) Commit(stagingPath string, id uuid.UUID, ext string) error {
	if err := os.MkdirAll(l.AssetDir(id), 0o755); err != nil {
		return err
	}
	return os.Rename(stagingPath, l.OriginalPath(id, ext))
}

func (l *Local) AssetDir(id uuid.UUID) string {
	return filepath.Join(l.root, blobsDir, id.String())
}

func (l *Local) OriginalPath(id uuid.UUID, ext string) string {
	return filepath.Join(l.AssetDir(id), originalStem+ext)
}

func (l *Local) VariantPath(id uuid.UUID, width, height int, fill bool, ext string) string {
	name := fmt.Sprintf("%dx%d", width, height)
	if fill {
		name += "_fill"
	}
	return filepath.Join(l.AssetDir(id), name+ext)
}

func (l *Local) TextIconPath(text string, size int) string {
	return filepath.Join(l.root, textIconsDir, text, fmt.Sprintf("%dx%d.png", size, size))
}

// WriteAtomic writes data next to path and renames it into place so
// readers never observe a partial file.
func (l *Local) WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// RemoveAsset deletes the asset directory with the original and every
// variant. A missing directory is not an error.
func (l *Local) RemoveAsset(id uuid.UUID) error {
	return os.RemoveAll(l.AssetDir(id))
}

// SweepStaging removes staging files last modified before the cutoff.
func (l *Local) SweepStaging(before time.Time) (int, error) {
	entries, err := os.ReadDir(filepath.Join(l.root, stagingDir))
	if err != nil {
		return 0, err
	}
	var (
		n    int
		errs []error
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.ModTime().Before(before) {
			continue
		}
		if err := os.Remove(filepath.Join(l.root, stagingDir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}
