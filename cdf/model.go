/*
 * model.go, part of sile.
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
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/robert-malhotra/go-hdf5/hdf5"

	"github.com/rmera/sile"
)

//NetCDF4 conventions for dimension scales.
const (
	attrClass      = "CLASS"
	attrName       = "NAME"
	attrDimNames   = "DIMENSION_NAMES"
	dimensionScale = "DIMENSION_SCALE"
	dimensionNote  = "This is a netCDF dimension but not a netCDF variable."
)

//Type is the element type of a variable.
type Type int

const (
	Float64 Type = iota
	Float32
	Int32
	Int64
)

func (t Type) String() string {
	switch t {
	case Float64:
		return "double"
	case Float32:
		return "float"
	case Int32:
		return "int"
	case Int64:
		return "int64"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

//zero returns a zeroed slice of n elements of type t, nil for an unknown type.
func (t Type) zero(n int) interface{} {
	switch t {
	case Float64:
		return make([]float64, n)
	case Float32:
		return make([]float32, n)
	case Int32:
		return make([]int32, n)
	case Int64:
		return make([]int64, n)
	}
	return nil
}

func typeOf(k reflect.Kind) (Type, bool) {
	switch k {
	case reflect.Float64:
		return Float64, true
	case reflect.Float32:
		return Float32, true
	case reflect.Int32:
		return Int32, true
	case reflect.Int64:
		return Int64, true
	}
	return 0, false
}

//Dimension is a named length.
type Dimension struct {
	Name string
	Len  int
}

//Group is a NetCDF group: a container of dimensions, variables and other groups.
type Group struct {
	s        *Sile
	parent   *Group
	path     string
	h        *hdf5.Group //nil until a new group is written
	stored   bool        //read from the file
	size     int         //bytes of messages in the group header
	queue    []link      //objects to write at Close, in definition order
	children map[string]*Group
	dims     map[string]*Dimension
	dimOrder []string
	vars     map[string]*Variable
	varOrder []string
}

//link is an object waiting to be written in a group.
type link struct {
	name  string
	write func() error
}

//newGroup registers a group in the Sile's cache. Groups created in the session are
//only known through the cache, since the library can't list them.
func newGroup(S *Sile, parent *Group, name string, h *hdf5.Group) *Group {
	g := &Group{
		s:        S,
		parent:   parent,
		path:     "/",
		h:        h,
		size:     headerBase,
		children: make(map[string]*Group),
		dims:     make(map[string]*Dimension),
		vars:     make(map[string]*Variable),
	}
	if parent != nil {
		g.path = parent.path + sep(parent.path) + name
		parent.children[name] = g
	}
	S.groups = append(S.groups, g)
	return g
}

//Path returns the absolute path of the group.
func (G *Group) Path() string { return G.path }

//Groups returns the names of the subgroups, sorted.
func (G *Group) Groups() []string {
	ret := make([]string, 0, len(G.children))
	for k := range G.children {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//Group returns the subgroup name, and false if there isn't one.
func (G *Group) Group(name string) (*Group, bool) {
	g, ok := G.children[name]
	return g, ok
}

//Dimensions returns the dimensions defined in the group, in definition order.
func (G *Group) Dimensions() []*Dimension {
	ret := make([]*Dimension, len(G.dimOrder))
	for i, n := range G.dimOrder {
		ret[i] = G.dims[n]
	}
	return ret
}

//Variables returns the variables of the group, in definition order.
func (G *Group) Variables() []*Variable {
	ret := make([]*Variable, len(G.varOrder))
	for i, n := range G.varOrder {
		ret[i] = G.vars[n]
	}
	return ret
}

//dimension looks name up in G and its parents.
func (G *Group) dimension(name string) *Dimension {
	for g := G; g != nil; g = g.parent {
		if d, ok := g.dims[name]; ok {
			return d
		}
	}
	return nil
}

//load reads the contents of an existing group. All the dimensions and variables
//of G are read before its subgroups, whose variables may use G's dimensions.
func (G *Group) load() error {
	G.stored = true
	members, err := G.h.Members()
	if err != nil {
		return err
	}
	sort.Strings(members)
	var vars []*hdf5.Dataset
	var subgroups []string
	for _, m := range members {
		G.size += linkSize(m)
		ds, err := G.h.OpenDataset(m)
		if errors.Is(err, hdf5.ErrNotDataset) {
			subgroups = append(subgroups, m)
			continue
		}
		if err != nil {
			return err
		}
		if isDimension(ds) {
			n, err := ds.ReadInt64()
			if err != nil {
				return err
			}
			if len(n) == 0 {
				return fmt.Errorf("empty dimension %s", m)
			}
			G.dims[m] = &Dimension{Name: m, Len: int(n[0])}
			G.dimOrder = append(G.dimOrder, m)
			continue
		}
		vars = append(vars, ds)
	}
	for _, ds := range vars {
		v, err := G.loadVariable(ds)
		if err != nil {
			return err
		}
		G.vars[v.Name] = v
		G.varOrder = append(G.varOrder, v.Name)
	}
	for _, m := range subgroups {
		h, err := G.h.OpenGroup(m)
		if err != nil {
			return err
		}
		if err := newGroup(G.s, G, m, h).load(); err != nil {
			return err
		}
	}
	return nil
}

//flush writes the objects defined in the session, in an order the HDF5
//writer can lay out.
func (G *Group) flush() error {
	if len(G.queue) == 0 {
		return nil
	}
	sizes := make([]int, len(G.queue))
	for i, l := range G.queue {
		sizes[i] = linkSize(l.name)
	}
	order, ok := linkOrder(G.size, sizes)
	if !ok {
		return sile.NewError("No layout of the new objects of group "+G.path+" can be written", G.s, ErrUnsupported)
	}
	for _, i := range order {
		if err := G.queue[i].write(); err != nil {
			return err
		}
		G.size += sizes[i]
	}
	G.queue = nil
	return nil
}

//writeDimension stores d as a scalar dataset marked as a dimension scale.
func (G *Group) writeDimension(d *Dimension) error {
	_, err := G.h.CreateDataset(d.Name, int64(d.Len),
		hdf5.WithAttribute(attrClass, dimensionScale),
		hdf5.WithAttribute(attrName, dimensionNote))
	if err != nil {
		return fmt.Errorf("writing dimension %s: %w", d.Name, err)
	}
	return nil
}

func sep(p string) string {
	if p == "/" {
		return ""
	}
	return "/"
}

func isDimension(ds *hdf5.Dataset) bool {
	a := ds.Attr(attrClass)
	if a == nil {
		return false
	}
	s, err := a.ReadScalarString()
	return err == nil && s == dimensionScale
}

func (G *Group) loadVariable(ds *hdf5.Dataset) (*Variable, error) {
	rt, err := ds.GoType()
	if err != nil {
		return nil, err
	}
	t, ok := typeOf(rt.Kind())
	if !ok {
		return nil, fmt.Errorf("variable %s has unsupported type %v", ds.Name(), rt)
	}
	v := &Variable{Name: ds.Name(), Type: t, group: G, ds: ds}
	if a := ds.Attr(attrDimNames); a != nil {
		if v.Dims, err = a.ReadString(); err != nil {
			return nil, err
		}
	}
	v.shape = make([]int, len(v.Dims))
	for i, dn := range v.Dims {
		d := G.dimension(dn)
		if d == nil {
			return nil, fmt.Errorf("variable %s uses unknown dimension %s", v.Name, dn)
		}
		v.shape[i] = d.Len
	}
	return v, nil
}

//Variable is an array with named dimensions.
type Variable struct {
	Name string
	Type Type
	Dims []string

	group   *Group
	shape   []int
	ds      *hdf5.Dataset //nil until written
	data    interface{}   //values given with Put
	pending bool          //defined in this session, not yet written
}

//Group returns the group the variable belongs to.
func (V *Variable) Group() *Group { return V.group }

//Shape returns the length of each dimension of the variable.
func (V *Variable) Shape() []int { return append([]int(nil), V.shape...) }

//Len returns the number of elements in the variable.
func (V *Variable) Len() int {
	n := 1
	for _, v := range V.shape {
		n *= v
	}
	return n
}

//Put sets the values of a variable defined in this session. data must be a
//slice of the variable's type, flattened in row-major order, with Len elements.
func (V *Variable) Put(data interface{}) error {
	S := V.group.s
	if S.f == nil {
		return S.closedError("put variable " + V.Name)
	}
	if err := sile.RaiseWrite(S); err != nil {
		return err
	}
	if !V.pending {
		return sile.FormatError(S, "variable %s is already stored in the file", V.Name)
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice {
		return sile.FormatError(S, "variable %s: expected a slice, got %T", V.Name, data)
	}
	if t, ok := typeOf(rv.Type().Elem().Kind()); !ok || t != V.Type {
		return sile.FormatError(S, "variable %s is %v, got %T", V.Name, V.Type, data)
	}
	if rv.Len() != V.Len() {
		return sile.FormatError(S, "variable %s has %d elements, got %d", V.Name, V.Len(), rv.Len())
	}
	cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(cp, rv)
	V.data = cp.Interface()
	return nil
}

//values returns the variable's data, reading it from the file if needed.
func (V *Variable) values() (interface{}, error) {
	S := V.group.s
	if S.f == nil {
		return nil, S.closedError("read variable " + V.Name)
	}
	if V.pending {
		if V.data == nil {
			return V.Type.zero(V.Len()), nil
		}
		return V.data, nil
	}
	if err := sile.RaiseRead(S); err != nil {
		return nil, err
	}
	var ret interface{}
	var err error
	switch V.Type {
	case Float64:
		ret, err = V.ds.ReadFloat64()
	case Float32:
		ret, err = V.ds.ReadFloat32()
	case Int32:
		ret, err = V.ds.ReadInt32()
	case Int64:
		ret, err = V.ds.ReadInt64()
	}
	if err != nil {
		return nil, sile.Decorate(err, "Variable.values", S)
	}
	return ret, nil
}

//Float64s returns the values of the variable as float64, whatever its type.
func (V *Variable) Float64s() ([]float64, error) {
	d, err := V.values()
	if err != nil {
		return nil, err
	}
	switch v := d.(type) {
	case []float64:
		return append([]float64(nil), v...), nil
	case []float32:
		ret := make([]float64, len(v))
		for i, x := range v {
			ret[i] = float64(x)
		}
		return ret, nil
	case []int32:
		ret := make([]float64, len(v))
		for i, x := range v {
			ret[i] = float64(x)
		}
		return ret, nil
	case []int64:
		ret := make([]float64, len(v))
		for i, x := range v {
			ret[i] = float64(x)
		}
		return ret, nil
	}
	return nil, fmt.Errorf("cdf: unexpected data %T", d)
}

//Ints returns the values of an integer variable.
func (V *Variable) Ints() ([]int, error) {
	d, err := V.values()
	if err != nil {
		return nil, err
	}
	switch v := d.(type) {
	case []int32:
		ret := make([]int, len(v))
		for i, x := range v {
			ret[i] = int(x)
		}
		return ret, nil
	case []int64:
		ret := make([]int, len(v))
		for i, x := range v {
			ret[i] = int(x)
		}
		return ret, nil
	}
	return nil, sile.FormatError(V.group.s, "variable %s is %v, not an integer", V.Name, V.Type)
}

//write creates the dataset for a pending variable.
func (V *Variable) write(c CompressionArgs) error {
	data := V.data
	if data == nil {
		data = V.Type.zero(V.Len())
	}
	var opts []hdf5.DatasetOption
	if len(V.Dims) > 0 {
		opts = append(opts, hdf5.WithAttribute(attrDimNames, V.Dims))
	}
	if n := V.Len(); c.Enabled && n > 0 {
		opts = append(opts, hdf5.WithChunks(uint64(n)), hdf5.WithShuffle(), hdf5.WithCompression(c.Level))
	}
	ds, err := V.group.h.CreateDataset(V.Name, data, opts...)
	if err != nil {
		return fmt.Errorf("writing variable %s: %w", V.Name, err)
	}
	V.ds = ds
	V.pending = false
	return nil
}
