/*
 * geometry.go, part of sile.
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

//Package geom contains the minimal geometry the sile formats read and write:
//atoms, Cartesian coordinates, the lattice cell and the number of supercells
//in each lattice direction.
package geom

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//Atom is an atomic species with its number of orbitals.
type Atom struct {
	Z        int
	Orbitals int
}

//Symbol returns the element symbol of the atom.
func (A Atom) Symbol() string { return Symbol(A.Z) }

//Geometry is a set of atoms in a (possibly periodic) cell.
//XYZ is na x 3, Cell is 3x3 with the lattice vectors as rows.
//NSC holds the number of supercells along each lattice vector,
//always odd so the unit cell sits in the middle.
type Geometry struct {
	Atoms []Atom
	XYZ   *mat.Dense
	Cell  *mat.Dense
	NSC   [3]int
}

//Reader is implemented by the siles that can read a geometry.
type Reader interface {
	ReadGeometry() (*Geometry, error)
}

//Writer is implemented by the siles that can write a geometry.
type Writer interface {
	WriteGeometry(*Geometry) error
}

//New builds a geometry. xyz must have 3 coordinates per atom. cell can be nil
//(no cell), 3 values (orthogonal cell) or 9 values (row-major). A zero in nsc
//is taken as 1. Atoms with less than one orbital get one.
func New(atoms []Atom, xyz []float64, cell []float64, nsc [3]int) (*Geometry, error) {
	if len(xyz) != 3*len(atoms) {
		return nil, fmt.Errorf("geom: %d coordinates given for %d atoms", len(xyz), len(atoms))
	}
	G := &Geometry{Atoms: make([]Atom, len(atoms))}
	for i, a := range atoms {
		if a.Orbitals < 1 {
			a.Orbitals = 1
		}
		G.Atoms[i] = a
	}
	if len(atoms) > 0 {
		G.XYZ = mat.NewDense(len(atoms), 3, append([]float64(nil), xyz...))
	}
	G.Cell = mat.NewDense(3, 3, nil)
	switch len(cell) {
	case 0:
	case 3:
		for i, v := range cell {
			G.Cell.Set(i, i, v)
		}
	case 9:
		G.Cell = mat.NewDense(3, 3, append([]float64(nil), cell...))
	default:
		return nil, fmt.Errorf("geom: cell needs 3 or 9 values, got %d", len(cell))
	}
	for i, n := range nsc {
		if n == 0 {
			n = 1
		}
		if n < 0 || n%2 == 0 {
			return nil, fmt.Errorf("geom: number of supercells must be odd and positive, got %v", nsc)
		}
		G.NSC[i] = n
	}
	return G, nil
}

//Len returns the number of atoms.
func (G *Geometry) Len() int { return len(G.Atoms) }

//NO returns the number of orbitals in the unit cell.
func (G *Geometry) NO() int {
	no := 0
	for _, a := range G.Atoms {
		no += a.Orbitals
	}
	return no
}

//A2O returns the index of the first orbital of atom ia.
func (G *Geometry) A2O(ia int) int {
	o := 0
	for _, a := range G.Atoms[:ia] {
		o += a.Orbitals
	}
	return o
}

//O2A returns the atom orbital io (in the unit cell) belongs to, and the
//index of the orbital within the atom.
func (G *Geometry) O2A(io int) (int, int) {
	for ia, a := range G.Atoms {
		if io < a.Orbitals {
			return ia, io
		}
		io -= a.Orbitals
	}
	return -1, -1
}

//Coord returns the coordinates of atom i.
func (G *Geometry) Coord(i int) [3]float64 {
	return [3]float64{G.XYZ.At(i, 0), G.XYZ.At(i, 1), G.XYZ.At(i, 2)}
}

//NSCTotal returns the total number of supercells, unit cell included.
func (G *Geometry) NSCTotal() int {
	return G.NSC[0] * G.NSC[1] * G.NSC[2]
}

//SCOff returns the integer offsets of all the supercells. The unit cell
//(0,0,0) is always the first one, the others follow with the first
//lattice direction running fastest.
func (G *Geometry) SCOff() [][3]int {
	ret := make([][3]int, 1, G.NSCTotal())
	n := [3]int{G.NSC[0] / 2, G.NSC[1] / 2, G.NSC[2] / 2}
	for k := -n[2]; k <= n[2]; k++ {
		for j := -n[1]; j <= n[1]; j++ {
			for i := -n[0]; i <= n[0]; i++ {
				if i == 0 && j == 0 && k == 0 {
					continue
				}
				ret = append(ret, [3]int{i, j, k})
			}
		}
	}
	return ret
}

//SCIndex returns the position of the supercell offset isc in SCOff.
func (G *Geometry) SCIndex(isc [3]int) (int, error) {
	for i, v := range isc {
		if v < -G.NSC[i]/2 || v > G.NSC[i]/2 {
			return -1, fmt.Errorf("geom: supercell %v outside of %v", isc, G.NSC)
		}
	}
	for i, v := range G.SCOff() {
		if v == isc {
			return i, nil
		}
	}
	return -1, fmt.Errorf("geom: supercell %v not found", isc) //can't happen
}

//Volume returns the volume of the cell (the absolute value of its determinant).
func (G *Geometry) Volume() float64 {
	d := mat.Det(G.Cell)
	if d < 0 {
		return -d
	}
	return d
}

//HasCell is true if any lattice vector is non-zero, even when the cell is degenerate.
func (G *Geometry) HasCell() bool {
	return G.Cell != nil && mat.Norm(G.Cell, 1) != 0
}

//Mass returns the total mass of the atoms whose mass is known.
func (G *Geometry) Mass() float64 {
	m := make([]float64, len(G.Atoms))
	for i, a := range G.Atoms {
		m[i] = Mass(a.Z)
	}
	return floats.Sum(m)
}

//Equal compares two geometries, with tolerance tol for coordinates and cell.
func (G *Geometry) Equal(O *Geometry, tol float64) bool {
	if G.Len() != O.Len() || G.NSC != O.NSC {
		return false
	}
	for i, a := range G.Atoms {
		if a != O.Atoms[i] {
			return false
		}
	}
	if !floats.EqualApprox(G.Cell.RawMatrix().Data, O.Cell.RawMatrix().Data, tol) {
		return false
	}
	if G.Len() == 0 {
		return true
	}
	return mat.EqualApprox(G.XYZ, O.XYZ, tol)
}
