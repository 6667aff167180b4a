// Package archive exports an output directory as a Zstandard-compressed
// ZIP (method 93), the same container the web download bundles use.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// MethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
const MethodZstd = zstd.ZipMethodWinZip

// DefaultLevel is the zstd level used for bundles. Videos are already
// compressed, so higher levels cost time without saving much.
const DefaultLevel = 3

// Stats describes a written bundle.
type Stats struct {
	Files int
	Bytes int64
}

// Bundle writes every regular file under root into w, with paths relative
// to root. exclude lists absolute paths to skip, such as the bundle itself.
func Bundle(ctx context.Context, root string, w io.Writer, level int, exclude ...string) (Stats, error) {
	if level <= 0 {
		level = DefaultLevel
	}
	skip := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(MethodZstd, zstd.ZipCompressor(zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level))))

	var stats Stats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && skip[abs] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		n, err := addFile(zw, path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		stats.Files++
		stats.Bytes += n
		return nil
	})
	if err != nil {
		zw.Close()
		return stats, fmt.Errorf("bundle %s: %w", root, err)
	}
	if err := zw.Close(); err != nil {
		return stats, fmt.Errorf("close ZIP writer: %w", err)
	}

	log.Info().
		Str("path", root).
		Int("files", stats.Files).
		Int64("bytes", stats.Bytes).
		Msg("Bundle written")
	return stats, nil
}

func addFile(zw *zip.Writer, path, name string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	header := &zip.FileHeader{Name: name, Method: MethodZstd}
	header.Modified = info.ModTime().UTC().Truncate(time.Second)

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return 0, fmt.Errorf("create ZIP entry for %s: %w", name, err)
	}
	n, err := io.Copy(entry, f)
	if err != nil {
		return 0, fmt.Errorf("write to ZIP for %s: %w", name, err)
	}
	return n, nil
}

// BundleFile writes the bundle to outPath, creating it atomically.
func BundleFile(ctx context.Context, root, outPath string, level int) (Stats, error) {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".bundle-*.zip")
	if err != nil {
		return Stats{}, fmt.Errorf("create temp ZIP: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	stats, err := Bundle(ctx, root, tmp, level, outPath, tmpPath)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return stats, err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return stats, fmt.Errorf("rename bundle: %w", err)
	}
	return stats, nil
}

// OpenReader opens a bundle for reading with the Zstandard decompressor
// registered.
func OpenReader(path string) (*zip.ReadCloser, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	rc.RegisterDecompressor(MethodZstd, zstd.ZipDecompressor())
	return rc, nil
}
