/*
 * savevault: save-data backup and restore engine
 * Copyright © 2026 Mario Finelli
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package layout

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
)

// Format selects whether a game's backups live as a plain directory
// tree or a single zip archive.
type Format string

const (
	FormatPlain Format = "plain"
	FormatZip   Format = "zip"
)

// Compression selects the zip entry compressor. Only meaningful when
// Format is FormatZip; a plain-format backup never compresses.
type Compression string

const (
	CompressionNone    Compression = "none"
	CompressionDeflate Compression = "deflate"
	CompressionBzip2   Compression = "bzip2"
	CompressionZstd    Compression = "zstd"
)

// ParseFormat parses the configured format string ("plain" or "zip").
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPlain:
		return FormatPlain, nil
	case FormatZip, "":
		return FormatZip, nil
	default:
		return "", fmt.Errorf("unknown backup format %q", s)
	}
}

// ParseCompression parses the configured compression string.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case CompressionNone:
		return CompressionNone, nil
	case CompressionDeflate:
		return CompressionDeflate, nil
	case CompressionBzip2:
		return CompressionBzip2, nil
	case CompressionZstd, "":
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown compression %q", s)
	}
}

// registerCompressors wires zip.Writer up to use klauspost/zstd and
// dsnet/compress's bzip2 writer for methods the standard archive/zip
// package can't produce on its own (stdlib compress/bzip2 is
// read-only).
func registerCompressors(w *zip.Writer) {
	const methodBzip2 = 12
	const methodZstd = 93

	w.RegisterCompressor(methodBzip2, func(out io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(out, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	})

	w.RegisterCompressor(methodZstd, func(out io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(out)
	})
}

func registerDecompressors(r *zip.Reader) {
	const methodBzip2 = 12
	const methodZstd = 93

	r.RegisterDecompressor(methodBzip2, func(in io.Reader) io.ReadCloser {
		rc, err := bzip2.NewReader(in, &bzip2.ReaderConfig{})
		if err != nil {
			return io.NopCloser(errReader{err})
		}
		return rc
	})

	r.RegisterDecompressor(methodZstd, func(in io.Reader) io.ReadCloser {
		dec, err := zstd.NewReader(in)
		if err != nil {
			return io.NopCloser(errReader{err})
		}
		return dec.IOReadCloser()
	})
}

func methodFor(c Compression) (uint16, error) {
	switch c {
	case CompressionNone:
		return zip.Store, nil
	case CompressionDeflate:
		return zip.Deflate, nil
	case CompressionBzip2:
		return 12, nil
	case CompressionZstd:
		return 93, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", c)
	}
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }
