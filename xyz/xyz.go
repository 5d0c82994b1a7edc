/*
 * xyz.go, part of sile.
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

//Package xyz reads and writes XYZ coordinate files. The comment line can
//carry the cell and the supercells, as Lattice="ax ay az bx by bz cx cy cz"
//and nsc="n1 n2 n3".
package xyz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rmera/sile"
	"github.com/rmera/sile/geom"
)

//Sile is an XYZ file.
type Sile struct {
	*sile.Sile
}

//New returns an XYZ sile for path. The file is not opened.
//The XYZ comment line is free text, so no comment prefixes are skipped.
func New(path string, mode sile.Mode, options ...sile.Option) *Sile {
	options = append([]sile.Option{sile.WithKind("XYZSile"), sile.WithComment()}, options...)
	return &Sile{sile.New(path, mode, options...)}
}

//ReadGeometry reads the first frame in the file.
func (S *Sile) ReadGeometry() (*geom.Geometry, error) {
	if err := sile.RaiseRead(S); err != nil {
		return nil, err
	}
	var G *geom.Geometry
	err := S.With(func(*sile.Sile) error {
		var err error
		G, err = S.read()
		return err
	})
	return G, sile.Decorate(err, "ReadGeometry", S)
}

func (S *Sile) read() (*geom.Geometry, error) {
	line, err := S.ReadLine(false)
	if err != nil {
		return nil, err
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms < 0 {
		return nil, sile.FormatError(S, "Ill formatted XYZ file, bad number of atoms %q", strings.TrimSpace(line))
	}
	comment, err := S.ReadLine(false)
	if err != nil {
		return nil, err
	}
	cell, nsc, err := parseComment(comment)
	if err != nil {
		return nil, sile.FormatError(S, "bad comment line: %v", err)
	}
	//the count is not trusted for allocation; a short file ends in an error.
	var atoms []geom.Atom
	var coords []float64
	for i := 0; i < natoms; i++ {
		line, err = S.ReadLine(false)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, sile.FormatError(S, "Line number %d ill formed", i+3)
		}
		z, err := geom.Z(fields[0])
		if err != nil {
			return nil, sile.FormatError(S, "Line number %d: %v", i+3, err)
		}
		atoms = append(atoms, geom.Atom{Z: z, Orbitals: 1})
		for j := 0; j < 3; j++ {
			c, err := strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, sile.FormatError(S, "Line number %d: %v", i+3, err)
			}
			coords = append(coords, c)
		}
	}
	G, err := geom.New(atoms, coords, cell, nsc)
	if err != nil {
		return nil, sile.FormatError(S, "%v", err)
	}
	return G, nil
}

//parseComment extracts the key="value" pairs Lattice and nsc from an
//XYZ comment line. Anything else is ignored.
func parseComment(line string) ([]float64, [3]int, error) {
	var cell []float64
	var nsc [3]int
	for key, val := range keyValues(line) {
		switch strings.ToLower(key) {
		case "lattice":
			f := strings.Fields(val)
			if len(f) != 9 && len(f) != 3 {
				return nil, nsc, fmt.Errorf("Lattice needs 3 or 9 values, got %d", len(f))
			}
			cell = make([]float64, len(f))
			for i, v := range f {
				var err error
				if cell[i], err = strconv.ParseFloat(v, 64); err != nil {
					return nil, nsc, err
				}
			}
		case "nsc":
			f := strings.Fields(val)
			if len(f) != 3 {
				return nil, nsc, fmt.Errorf("nsc needs 3 values, got %d", len(f))
			}
			for i, v := range f {
				var err error
				if nsc[i], err = strconv.Atoi(v); err != nil {
					return nil, nsc, err
				}
			}
		}
	}
	return cell, nsc, nil
}

//keyValues returns the key="value" pairs in line.
func keyValues(line string) map[string]string {
	ret := make(map[string]string)
	for {
		eq := strings.Index(line, "=\"")
		if eq < 0 {
			return ret
		}
		key := line[:eq]
		if sp := strings.LastIndexAny(key, " \t"); sp >= 0 {
			key = key[sp+1:]
		}
		rest := line[eq+2:]
		end := strings.Index(rest, "\"")
		if end < 0 {
			return ret
		}
		ret[key] = rest[:end]
		line = rest[end+1:]
	}
}

//WriteGeometry writes G as a single frame. The cell and supercells go in the
//comment line when any lattice vector is not zero.
func (S *Sile) WriteGeometry(G *geom.Geometry) error {
	if err := sile.RaiseWrite(S); err != nil {
		return err
	}
	err := S.With(func(*sile.Sile) error { return S.write(G) })
	return sile.Decorate(err, "WriteGeometry", S)
}

func (S *Sile) write(G *geom.Geometry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4d\n", G.Len())
	if G.HasCell() {
		b.WriteString("Lattice=\"")
		for i, v := range G.Cell.RawMatrix().Data {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(strconv.FormatFloat(v, 'f', 8, 64))
		}
		fmt.Fprintf(&b, "\" nsc=\"%d %d %d\"", G.NSC[0], G.NSC[1], G.NSC[2])
	}
	b.WriteString("\n")
	for i, a := range G.Atoms {
		c := G.Coord(i)
		fmt.Fprintf(&b, "%-2s  %12.8f %12.8f %12.8f\n", a.Symbol(), c[0], c[1], c[2])
	}
	return S.WriteString(b.String())
}
