package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

const hashChunkSize = 32 * 1024

// copyAndHash streams src into dst, returning the byte count and the hex
// BLAKE3 digest of everything written. The whole input is never buffered.
func copyAndHash(ctx context.Context, dst io.Writer, src io.Reader) (int64, string, error) {
	h := blake3.New()
	w := io.MultiWriter(dst, h)
	buf := make([]byte, hashChunkSize)

	var n int64
	for {
		if err := ctx.Err(); err != nil {
			return n, "", err
		}
		m, rerr := src.Read(buf)
		if m > 0 {
			if _, err := w.Write(buf[:m]); err != nil {
				return n, "", err
			}
			n += int64(m)
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return n, "", rerr
		}
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

type stagedFile struct {
	Path     string
	ByteSize int64
	Digest   string
}

// stage writes r to a fresh staging file. The staging file is removed on
// any failure.
func (u Usecase) stage(ctx context.Context, r io.Reader) (stagedFile, error) {
	f, err := u.storage.CreateStaging()
	if err != nil {
		return stagedFile{}, u.storageError(ctx, "create staging file", err)
	}

	n, digest, err := copyAndHash(ctx, f, r)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		if ctx.Err() != nil {
			return stagedFile{}, ctx.Err()
		}
		return stagedFile{}, u.storageError(ctx, "write staging file", err)
	}

	return stagedFile{Path: f.Name(), ByteSize: n, Digest: digest}, nil
}
