/*
 * ham.go, part of sile.
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

/*Package ham reads and writes the plain-text tight-binding Hamiltonian format:

	begin cell
	  ax ay az
	  bx by bz
	  cx cy cz
	end cell

	supercell n1 n2 n3

	begin atom
	  Z x y z
	  Z[no] x y z
	end atom

	begin matrix i1 i2 i3
	  jo io h [s]
	end matrix

Keywords are case-insensitive. "cell a b c" and "nsc n1 n2 n3" are accepted as
one-line forms. Orbitals in matrix blocks are either plain orbital indices or
"ia[o]", orbital o of atom ia. A fourth column in a matrix block is the overlap.
*/
package ham

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rmera/sile"
	"github.com/rmera/sile/geom"
)

//Sile is a Hamiltonian file.
type Sile struct {
	*sile.Sile
}

//New returns a Hamiltonian sile for path. The file is not opened.
func New(path string, mode sile.Mode, options ...sile.Option) *Sile {
	options = append([]sile.Option{sile.WithKind("HamiltonianSile")}, options...)
	return &Sile{sile.New(path, mode, options...)}
}

//scoped runs fn with the file open. If it is already open, fn just runs, so
//readers can call each other.
func (S *Sile) scoped(fn func() error) error {
	if S.IsOpen() {
		return fn()
	}
	return S.With(func(*sile.Sile) error { return fn() })
}

//rewind goes back to the beginning of the file, by reopening it.
func (S *Sile) rewind() error {
	if err := S.Close(); err != nil {
		return err
	}
	return S.Open()
}

//ReadGeometry reads the cell, supercell and atom sections.
func (S *Sile) ReadGeometry() (*geom.Geometry, error) {
	if err := sile.RaiseRead(S); err != nil {
		return nil, err
	}
	var G *geom.Geometry
	err := S.scoped(func() error {
		var err error
		G, err = S.readGeometry()
		return err
	})
	return G, sile.Decorate(err, "ReadGeometry", S)
}

func (S *Sile) readGeometry() (*geom.Geometry, error) {
	if err := sile.RaiseRead(S); err != nil {
		return nil, err
	}
	var cell []float64
	var atoms []geom.Atom
	var xyz []float64
	var nsc [3]int
	keys := sile.Key("atom", "cell", "supercell", "nsc")
	for i := 0; i < 4; i++ {
		found, line, err := S.StepTo(keys, false)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		low := strings.ToLower(line)
		fields := strings.Fields(line)
		switch {
		//"supercell" contains "cell", so it goes first.
		case strings.Contains(low, "supercell") || strings.Contains(low, "nsc"):
			if nsc, err = parseInts3(fields); err != nil {
				return nil, S.formatError("bad supercell line %q: %v", line, err)
			}
		case strings.Contains(low, "cell"):
			if cell, err = S.readCell(low, fields); err != nil {
				return nil, err
			}
		case strings.Contains(low, "atom"):
			if atoms, xyz, err = S.readAtoms(); err != nil {
				return nil, err
			}
		}
	}
	G, err := geom.New(atoms, xyz, cell, nsc)
	if err != nil {
		return nil, S.formatError("%v", err)
	}
	return G, nil
}

func (S *Sile) formatError(format string, args ...interface{}) error {
	return sile.FormatError(S, format, args...)
}

func (S *Sile) readCell(low string, fields []string) ([]float64, error) {
	if !strings.Contains(low, "begin") {
		//the diagonal, in one line
		cell, err := parseFloats(fields[1:], 3)
		if err != nil {
			return nil, S.formatError("bad cell line %q: %v", strings.Join(fields, " "), err)
		}
		return cell, nil
	}
	cell := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		line, err := S.ReadLine(true)
		if err != nil {
			return nil, err
		}
		v, err := parseFloats(strings.Fields(line), 3)
		if err != nil {
			return nil, S.formatError("bad lattice vector %q: %v", line, err)
		}
		cell = append(cell, v...)
	}
	_, err := S.ReadLine(true) //end cell
	return cell, err
}

func (S *Sile) readAtoms() ([]geom.Atom, []float64, error) {
	var atoms []geom.Atom
	var xyz []float64
	for {
		line, err := S.ReadLine(true)
		if err != nil {
			return nil, nil, err
		}
		if line == "" {
			return nil, nil, S.formatError("atom block not terminated")
		}
		if isEnd(line) {
			return atoms, xyz, nil
		}
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		if len(f) < 4 {
			return nil, nil, S.formatError("bad atom line %q", line)
		}
		a, err := parseSpecie(f[0])
		if err != nil {
			return nil, nil, S.formatError("bad atom line %q: %v", line, err)
		}
		if len(f) > 4 && !strings.Contains(f[0], "[") {
			if no, err := strconv.Atoi(f[4]); err == nil {
				a.Orbitals = no
			}
		}
		c, err := parseFloats(f[1:4], 3)
		if err != nil {
			return nil, nil, S.formatError("bad atom line %q: %v", line, err)
		}
		atoms = append(atoms, a)
		xyz = append(xyz, c...)
	}
}

//ReadHamiltonian reads the geometry and all the matrix blocks. If hermitian is
//true, each element (jo, io) of supercell isc also sets (io, jo) of supercell -isc.
func (S *Sile) ReadHamiltonian(hermitian bool) (*Hamiltonian, error) {
	if err := sile.RaiseRead(S); err != nil {
		return nil, err
	}
	var H *Hamiltonian
	err := S.scoped(func() error {
		G, err := S.readGeometry()
		if err != nil {
			return err
		}
		if err = S.rewind(); err != nil {
			return err
		}
		H, err = S.readMatrices(G, hermitian)
		return err
	})
	return H, sile.Decorate(err, "ReadHamiltonian", S)
}

func (S *Sile) readMatrices(G *geom.Geometry, hermitian bool) (*Hamiltonian, error) {
	H := NewHamiltonian(G, true)
	no := G.NO()
	overlap := make(map[Element]float64)
	for {
		found, line, err := S.StepTo(sile.Key("matrix"), false)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		isc := matrixSupercell(line)
		i1, err := G.SCIndex(isc)
		if err != nil {
			return nil, S.formatError("%v", err)
		}
		i2, err := G.SCIndex([3]int{-isc[0], -isc[1], -isc[2]})
		if err != nil {
			return nil, S.formatError("%v", err)
		}
		off1, off2 := i1*no, i2*no
		for {
			line, err = S.ReadLine(true)
			if err != nil {
				return nil, err
			}
			if line == "" {
				return nil, S.formatError("matrix block not terminated")
			}
			if isEnd(line) {
				break
			}
			f := strings.Fields(line)
			if len(f) == 0 {
				continue
			}
			if len(f) < 3 {
				return nil, S.formatError("bad matrix line %q", line)
			}
			jo, err1 := orbital(G, f[0])
			io, err2 := orbital(G, f[1])
			h, err3 := strconv.ParseFloat(f[2], 64)
			if err := firstError(err1, err2, err3); err != nil {
				return nil, S.formatError("bad matrix line %q: %v", line, err)
			}
			if jo < 0 || jo >= no || io < 0 || io >= no {
				return nil, S.formatError("orbital out of range in %q", line)
			}
			var s float64
			if len(f) > 3 {
				H.Orthogonal = false
				if s, err = strconv.ParseFloat(f[3], 64); err != nil {
					return nil, S.formatError("bad matrix line %q: %v", line, err)
				}
			}
			H.H[Element{jo, io + off1}] = h
			overlap[Element{jo, io + off1}] = s
			if hermitian {
				H.H[Element{io, jo + off2}] = h
				overlap[Element{io, jo + off2}] = s
			}
		}
	}
	if !H.Orthogonal {
		H.S = overlap
	}
	return H, nil
}

//WriteGeometry writes the cell, supercell and atom sections.
func (S *Sile) WriteGeometry(G *geom.Geometry) error {
	if err := sile.RaiseWrite(S); err != nil {
		return err
	}
	err := S.scoped(func() error { return S.writeGeometry(G) })
	return sile.Decorate(err, "WriteGeometry", S)
}

func (S *Sile) writeGeometry(G *geom.Geometry) error {
	if err := sile.RaiseWrite(S); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("begin cell\n")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "  %.8f %.8f %.8f\n", G.Cell.At(i, 0), G.Cell.At(i, 1), G.Cell.At(i, 2))
	}
	b.WriteString("end cell\n")
	fmt.Fprintf(&b, "\nsupercell %d %d %d\n", G.NSC[0], G.NSC[1], G.NSC[2])
	b.WriteString("\nbegin atom\n")
	for i, a := range G.Atoms {
		c := G.Coord(i)
		if a.Orbitals == 1 {
			fmt.Fprintf(&b, "  %d %.8f %.8f %.8f\n", a.Z, c[0], c[1], c[2])
		} else {
			fmt.Fprintf(&b, "  %d[%d] %.8f %.8f %.8f\n", a.Z, a.Orbitals, c[0], c[1], c[2])
		}
	}
	b.WriteString("end atom\n")
	return S.WriteString(b.String())
}

//hermTol is the largest difference allowed between an element and its
//hermitian partner when writing half of a model.
const hermTol = 1e-6

//WriteHamiltonian writes the geometry followed by one matrix block per supercell
//with stored elements. If any atom has more than one orbital, orbitals are
//written as ia[o].
//If hermitian is true and the model is hermitian within hermTol, only half of
//it is written: blocks of supercells whose first non-zero index is negative are
//left out, and the unit cell block keeps io >= jo. Such a file must be read with
//hermitian=true. A model that turns out not to be hermitian is written in full,
//with a warning.
func (S *Sile) WriteHamiltonian(H *Hamiltonian, hermitian bool) error {
	if err := sile.RaiseWrite(S); err != nil {
		return err
	}
	if hermitian && !isHermitian(H) {
		S.Logf("ham: the model in %s is not hermitian within %g, writing all the elements", S.Path(), hermTol)
		hermitian = false
	}
	err := S.scoped(func() error {
		if err := S.writeGeometry(H.Geometry); err != nil {
			return err
		}
		return S.writeMatrices(H, hermitian)
	})
	return sile.Decorate(err, "WriteHamiltonian", S)
}

//partner returns the position of the hermitian partner of e.
func partner(G *geom.Geometry, e Element) (Element, error) {
	no := G.NO()
	isc := G.SCOff()[e.Col/no]
	i, err := G.SCIndex([3]int{-isc[0], -isc[1], -isc[2]})
	if err != nil {
		return e, err
	}
	return Element{e.Col % no, e.Row + i*no}, nil
}

func isHermitian(H *Hamiltonian) bool {
	for _, e := range H.Elements() {
		p, err := partner(H.Geometry, e)
		if err != nil {
			return false
		}
		h1, s1 := H.At(e.Row, e.Col)
		h2, s2 := H.At(p.Row, p.Col)
		if math.Abs(h1-h2) > hermTol || math.Abs(s1-s2) > hermTol {
			return false
		}
	}
	return true
}

//upperHalf is true for the elements kept when writing half of a hermitian model.
func upperHalf(G *geom.Geometry, e Element) bool {
	no := G.NO()
	isc := G.SCOff()[e.Col/no]
	for _, v := range isc {
		if v != 0 {
			return v > 0
		}
	}
	return e.Col%no >= e.Row
}

func (S *Sile) writeMatrices(H *Hamiltonian, hermitian bool) error {
	G := H.Geometry
	no := G.NO()
	advanced := false
	for _, a := range G.Atoms {
		if a.Orbitals > 1 {
			advanced = true
		}
	}
	orb := func(o int) string {
		if !advanced {
			return strconv.Itoa(o)
		}
		ia, io := G.O2A(o)
		return fmt.Sprintf("%d[%d]", ia, io)
	}
	blocks := make(map[int][]Element)
	for _, e := range H.Elements() {
		if hermitian && !upperHalf(G, e) {
			continue
		}
		blocks[e.Col/no] = append(blocks[e.Col/no], e)
	}
	var b strings.Builder
	for isc, off := range G.SCOff() {
		els := blocks[isc]
		if len(els) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\nbegin matrix %d %d %d\n", off[0], off[1], off[2])
		for _, e := range els {
			h, s := H.At(e.Row, e.Col)
			fmt.Fprintf(&b, "  %s %s %s", orb(e.Row), orb(e.Col%no), strconv.FormatFloat(h, 'g', -1, 64))
			if !H.Orthogonal {
				fmt.Fprintf(&b, " %s", strconv.FormatFloat(s, 'g', -1, 64))
			}
			b.WriteString("\n")
		}
		b.WriteString("end matrix\n")
	}
	return S.WriteString(b.String())
}

func isEnd(line string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "end")
}

//parseSpecie parses "Z" or "Z[no]". Z can also be an element symbol.
func parseSpecie(s string) (geom.Atom, error) {
	a := geom.Atom{Orbitals: 1}
	f := strings.Fields(strings.NewReplacer("[", " ", "]", " ").Replace(s))
	if len(f) == 0 {
		return a, fmt.Errorf("empty specie")
	}
	var err error
	if a.Z, err = geom.Z(f[0]); err != nil {
		return a, err
	}
	if len(f) > 1 {
		if a.Orbitals, err = strconv.Atoi(f[1]); err != nil {
			return a, err
		}
	}
	return a, nil
}

//orbital parses an orbital given either as an index or as ia[o].
func orbital(G *geom.Geometry, s string) (int, error) {
	if o, err := strconv.Atoi(s); err == nil {
		return o, nil
	}
	f := strings.Fields(strings.NewReplacer("[", " ", "]", " ").Replace(s))
	if len(f) != 2 {
		return 0, fmt.Errorf("bad orbital %q", s)
	}
	ia, err := strconv.Atoi(f[0])
	if err != nil {
		return 0, err
	}
	o, err := strconv.Atoi(f[1])
	if err != nil {
		return 0, err
	}
	if ia < 0 || ia >= G.Len() {
		return 0, fmt.Errorf("atom %d out of range", ia)
	}
	return G.A2O(ia) + o, nil
}

//matrixSupercell returns the three integers after "matrix" in line, or the
//unit cell if they are not there.
func matrixSupercell(line string) [3]int {
	f := strings.Fields(strings.ToLower(line))
	for i, v := range f {
		if v == "matrix" {
			if isc, err := parseInts3(f[i:]); err == nil {
				return isc
			}
			break
		}
	}
	return [3]int{}
}

//parseInts3 parses f[1:4] as integers.
func parseInts3(f []string) ([3]int, error) {
	var ret [3]int
	if len(f) < 4 {
		return ret, fmt.Errorf("need 3 values, got %d", len(f)-1)
	}
	for i := range ret {
		v, err := strconv.Atoi(f[i+1])
		if err != nil {
			return ret, err
		}
		ret[i] = v
	}
	return ret, nil
}

func parseFloats(f []string, n int) ([]float64, error) {
	if len(f) < n {
		return nil, fmt.Errorf("need %d values, got %d", n, len(f))
	}
	ret := make([]float64, n)
	for i := range ret {
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return nil, err
		}
		ret[i] = v
	}
	return ret, nil
}

func firstError(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
