/*
 * hamiltonian.go, part of sile.
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

package ham

import (
	"fmt"
	"math"
	"sort"

	"github.com/rmera/sile/geom"
)

//Element is the position of a matrix element. Col runs over the orbitals of
//all the supercells: scIndex*no + io, with scIndex the position of the supercell
//in Geometry.SCOff.
type Element struct {
	Row, Col int
}

//Hamiltonian is a sparse tight-binding model: the Hamiltonian H and, unless the
//basis is orthogonal, the overlap S, over the supercells of Geometry.
type Hamiltonian struct {
	Geometry   *geom.Geometry
	H          map[Element]float64
	S          map[Element]float64
	Orthogonal bool
}

//NewHamiltonian returns an empty model on g.
func NewHamiltonian(g *geom.Geometry, orthogonal bool) *Hamiltonian {
	return &Hamiltonian{
		Geometry:   g,
		H:          make(map[Element]float64),
		S:          make(map[Element]float64),
		Orthogonal: orthogonal,
	}
}

//Shape returns the number of rows (orbitals in the unit cell) and columns
//(orbitals in all the supercells) of the model.
func (H *Hamiltonian) Shape() (int, int) {
	no := H.Geometry.NO()
	return no, no * H.Geometry.NSCTotal()
}

func (H *Hamiltonian) check(row, col int) error {
	r, c := H.Shape()
	if row < 0 || row >= r || col < 0 || col >= c {
		return fmt.Errorf("ham: element (%d, %d) outside of a %dx%d model", row, col, r, c)
	}
	return nil
}

//Set sets the Hamiltonian element (row, col).
func (H *Hamiltonian) Set(row, col int, h float64) error {
	if err := H.check(row, col); err != nil {
		return err
	}
	H.H[Element{row, col}] = h
	return nil
}

//SetOverlap sets the overlap element (row, col). It fails on an orthogonal model.
func (H *Hamiltonian) SetOverlap(row, col int, s float64) error {
	if H.Orthogonal {
		return fmt.Errorf("ham: can't set overlap elements of an orthogonal model")
	}
	if err := H.check(row, col); err != nil {
		return err
	}
	H.S[Element{row, col}] = s
	return nil
}

//At returns the Hamiltonian and overlap elements at (row, col). Elements
//not stored are zero. For an orthogonal model the overlap is the identity.
func (H *Hamiltonian) At(row, col int) (float64, float64) {
	e := Element{row, col}
	s := H.S[e]
	if H.Orthogonal && row == col {
		s = 1
	}
	return H.H[e], s
}

//Elements returns the positions of all the stored elements (of H or S),
//sorted by row and then column.
func (H *Hamiltonian) Elements() []Element {
	seen := make(map[Element]bool, len(H.H))
	ret := make([]Element, 0, len(H.H))
	for _, m := range []map[Element]float64{H.H, H.S} {
		for e := range m {
			if !seen[e] {
				seen[e] = true
				ret = append(ret, e)
			}
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Row != ret[j].Row {
			return ret[i].Row < ret[j].Row
		}
		return ret[i].Col < ret[j].Col
	})
	return ret
}

//Equal compares two models within tol. Elements missing in one of them count as zero.
func (H *Hamiltonian) Equal(O *Hamiltonian, tol float64) bool {
	if H.Orthogonal != O.Orthogonal || !H.Geometry.Equal(O.Geometry, tol) {
		return false
	}
	for _, els := range [][]Element{H.Elements(), O.Elements()} {
		for _, e := range els {
			h1, s1 := H.At(e.Row, e.Col)
			h2, s2 := O.At(e.Row, e.Col)
			if math.Abs(h1-h2) > tol || math.Abs(s1-s2) > tol {
				return false
			}
		}
	}
	return true
}
