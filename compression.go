/*
 * compression.go, part of sile.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package sile

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

//Compression identifies the transparent compression of a text sile.
type Compression int

const (
	Plain Compression = iota
	Gzip
	Zstd
)

//CompressionOf deduces the compression from the file extension:
//.gz is gzip, .zst (or .zstd) is zstandard, anything else is plain text.
func CompressionOf(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	}
	return Plain
}

//Suffix returns the lower-case extension of path, without the dot and
//without the compression extension, if any. "a/b/RUN.ham.gz" gives "ham".
func Suffix(path string) string {
	base := filepath.Base(path)
	if CompressionOf(base) != Plain {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(base)), ".")
}

//*zstd.Decoder's Close doesn't return an error, so it
//doesn't implement io.ReadCloser. This fixes that.
type zstdql struct {
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.Decoder.Close()
	return nil
}

//newReader returns a reader that decompresses (or not) data from r according to c.
func (c Compression) newReader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewReader(r)
	case Zstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdql{d}, nil
	}
	return io.NopCloser(r), nil
}

//newWriter returns a writer that compresses (or not) data into w according to c.
//level is only used for gzip, 0 means the library default.
//Appending to an existing compressed file adds a new gzip member or zstd frame,
//which both readers concatenate transparently.
func (c Compression) newWriter(w io.Writer, level int) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		return gzip.NewWriterLevel(w, level)
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	}
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
