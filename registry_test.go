/*
 * registry_test.go, part of sile.
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
	"errors"
	"testing"
)

func TestSuffix(Te *testing.T) {
	cases := map[string]string{
		"a/b/RUN.ham":    "ham",
		"RUN.HAM.gz":     "ham",
		"traj.xyz.zst":   "xyz",
		"noext":          "",
		"archive.gz":     "",
		"siesta.nc":      "nc",
		"dir.d/file.XYZ": "xyz",
	}
	for in, want := range cases {
		if got := Suffix(in); got != want {
			Te.Errorf("Suffix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegistry(Te *testing.T) {
	R := NewRegistry()
	R.Register(func(path string, mode Mode) Handle {
		return New(path, mode, WithKind("TextSile"))
	}, ".txt", "dat")
	h, err := R.Get("some/file.DAT.gz", Append)
	if err != nil {
		Te.Fatal(err)
	}
	if h.Kind() != "TextSile" || h.Mode() != Append || h.Path() != "some/file.DAT.gz" {
		Te.Errorf("unexpected handle %s %v %s", h.Kind(), h.Mode(), h.Path())
	}
	if _, err := R.Get("file.unknown", Read); !errors.Is(err, ErrFormat) {
		Te.Errorf("expected a format error, got %v", err)
	}
	if s := R.Suffixes(); len(s) != 2 || s[0] != "dat" || s[1] != "txt" {
		Te.Errorf("unexpected suffixes %v", s)
	}
}
