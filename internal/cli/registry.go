/*
 * registry.go, part of sile.
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

package cli

import (
	"log"

	"github.com/rmera/sile"
	"github.com/rmera/sile/cdf"
	"github.com/rmera/sile/geom"
	"github.com/rmera/sile/ham"
	"github.com/rmera/sile/xyz"
)

//newRegistry returns the formats sdata knows about, configured with cfg.
func newRegistry(cfg *Config, l *log.Logger) *sile.Registry {
	opts := []sile.Option{sile.WithComment(cfg.Comment...), sile.WithLogger(l)}
	R := sile.NewRegistry()
	R.Register(func(path string, mode sile.Mode) sile.Handle {
		return ham.New(path, mode, opts...)
	}, "ham", "tb")
	R.Register(func(path string, mode sile.Mode) sile.Handle {
		return xyz.New(path, mode, sile.WithLogger(l))
	}, "xyz")
	R.Register(func(path string, mode sile.Mode) sile.Handle {
		return cdf.New(path, mode, cdf.WithCompression(cfg.Compression), cdf.WithLogger(l))
	}, "nc", "h5")
	return R
}

//geometryReader returns a geometry reader for path.
func geometryReader(R *sile.Registry, path string) (geom.Reader, error) {
	h, err := R.Get(path, sile.Read)
	if err != nil {
		return nil, err
	}
	r, ok := h.(geom.Reader)
	if !ok {
		return nil, sile.NewError("Can't read a geometry", h, sile.ErrFormat)
	}
	return r, nil
}

//geometryWriter returns a geometry writer for path.
func geometryWriter(R *sile.Registry, path string) (geom.Writer, error) {
	h, err := R.Get(path, sile.Write)
	if err != nil {
		return nil, err
	}
	w, ok := h.(geom.Writer)
	if !ok {
		return nil, sile.NewError("Can't write a geometry", h, sile.ErrFormat)
	}
	return w, nil
}
