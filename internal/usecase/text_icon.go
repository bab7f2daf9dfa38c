package usecase

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
)

const (
	DefaultTextIconSize = 32
	MaxTextIconSize     = 512
)

// ValidTextIcon reports whether text and size can be rendered: one or two
// ASCII letters or digits and a size between 1 and MaxTextIconSize.
func ValidTextIcon(text string, size int) bool {
	if len(text) == 0 || len(text) > 2 || size < 1 || size > MaxTextIconSize {
		return false
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

// GetTextIcon returns a PNG placeholder with the upper-cased text, rendering
// and caching it on first use.
func (u Usecase) GetTextIcon(ctx context.Context, text string, size int) ([]byte, error) {
	if !ValidTextIcon(text, size) {
		return nil, ErrInvalidTextIcon
	}
	text = strings.ToUpper(text)

	path := u.storage.TextIconPath(text, size)
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, u.storageError(ctx, "read text icon", err)
	}

	var buf bytes.Buffer
	if err := u.images.TextIcon(&buf, text, size); err != nil {
		return nil, u.storageError(ctx, "render text icon", err)
	}
	if err := u.storage.WriteAtomic(path, buf.Bytes()); err != nil {
		u.logger.WarnContext(ctx, "failed to cache text icon", "path", path, "error", err)
	}
	return buf.Bytes(), nil
}
