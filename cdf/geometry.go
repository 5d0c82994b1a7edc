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

package cdf

import (
	"github.com/rmera/sile"
	"github.com/rmera/sile/geom"
)

//Names of the geometry dimensions and variables in the root group.
const (
	DimAtoms = "na_u"
	DimXYZ   = "xyz"
	VarCell  = "cell"
	VarXYZ   = "xa"
	VarZ     = "Z"
	VarOrbs  = "orbitals"
	VarNSC   = "nsc"
)

//ReadGeometry reads the geometry stored in the root group.
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

func (S *Sile) scoped(fn func() error) error {
	if S.IsOpen() {
		return fn()
	}
	return S.With(func(*Sile) error { return fn() })
}

func (S *Sile) readGeometry() (*geom.Geometry, error) {
	get := func(name string) (*Variable, error) { return S.Variable(nil, name) }
	cellv, err := get(VarCell)
	if err != nil {
		return nil, err
	}
	xav, err := get(VarXYZ)
	if err != nil {
		return nil, err
	}
	zv, err := get(VarZ)
	if err != nil {
		return nil, err
	}
	cell, err := cellv.Float64s()
	if err != nil {
		return nil, err
	}
	xyz, err := xav.Float64s()
	if err != nil {
		return nil, err
	}
	z, err := zv.Ints()
	if err != nil {
		return nil, err
	}
	orbs := make([]int, len(z))
	if ov, err := get(VarOrbs); err == nil {
		if orbs, err = ov.Ints(); err != nil {
			return nil, err
		}
	}
	var nsc [3]int
	if nv, err := get(VarNSC); err == nil {
		n, err := nv.Ints()
		if err != nil {
			return nil, err
		}
		copy(nsc[:], n)
	}
	if len(orbs) != len(z) {
		return nil, sile.FormatError(S, "%d orbital counts for %d atoms", len(orbs), len(z))
	}
	atoms := make([]geom.Atom, len(z))
	for i := range atoms {
		atoms[i] = geom.Atom{Z: z[i], Orbitals: orbs[i]}
	}
	G, err := geom.New(atoms, xyz, cell, nsc)
	if err != nil {
		return nil, sile.FormatError(S, "%v", err)
	}
	return G, nil
}

//WriteGeometry stores G in the root group.
func (S *Sile) WriteGeometry(G *geom.Geometry) error {
	if err := sile.RaiseWrite(S); err != nil {
		return err
	}
	err := S.scoped(func() error { return S.writeGeometry(G) })
	return sile.Decorate(err, "WriteGeometry", S)
}

func (S *Sile) writeGeometry(G *geom.Geometry) error {
	if _, err := S.CreateDimension(nil, DimAtoms, G.Len()); err != nil {
		return err
	}
	if _, err := S.CreateDimension(nil, DimXYZ, 3); err != nil {
		return err
	}
	z := make([]int32, G.Len())
	orbs := make([]int32, G.Len())
	for i, a := range G.Atoms {
		z[i] = int32(a.Z)
		orbs[i] = int32(a.Orbitals)
	}
	xyz := make([]float64, 0, 3*G.Len())
	for i := range G.Atoms {
		c := G.Coord(i)
		xyz = append(xyz, c[:]...)
	}
	nsc := []int32{int32(G.NSC[0]), int32(G.NSC[1]), int32(G.NSC[2])}
	vars := []struct {
		name string
		t    Type
		data interface{}
		dims []string
	}{
		{VarCell, Float64, append([]float64(nil), G.Cell.RawMatrix().Data...), []string{DimXYZ, DimXYZ}},
		{VarXYZ, Float64, xyz, []string{DimAtoms, DimXYZ}},
		{VarZ, Int32, z, []string{DimAtoms}},
		{VarOrbs, Int32, orbs, []string{DimAtoms}},
		{VarNSC, Int32, nsc, []string{DimXYZ}},
	}
	for _, d := range vars {
		v, err := S.CreateVariable(nil, d.name, d.t, d.dims...)
		if err != nil {
			return err
		}
		if err := v.Put(d.data); err != nil {
			return err
		}
	}
	return nil
}
