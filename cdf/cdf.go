/*
 * cdf.go, part of sile.
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

/*Package cdf implements the columnar Sile, for NetCDF4 files (which are HDF5 files
with some conventions). The file holds groups, and each group holds dimensions and
variables. A dimension is a named length, a variable is an array whose shape is
given by a list of dimension names, looked up in the variable's group and then in
its parents.

Dimensions are stored as scalar datasets carrying the NetCDF dimension scale
attributes, and variables as flat datasets carrying the names of their
dimensions in the DIMENSION_NAMES attribute.

The underlying library writes a dataset in one go, so the objects defined in a
session are kept in memory (variables are filled with Put) and written to the
file when the Sile is closed. The library relinks groups only below the root, so
new groups can't be nested deeper than that, and groups read from an existing
file, other than the root, can't take new objects.*/
package cdf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"strings"

	"github.com/robert-malhotra/go-hdf5/hdf5"

	"github.com/rmera/sile"
)

//ErrNotFound is matched by the errors of the getters when the object doesn't exist.
var ErrNotFound = errors.New("not found")

//ErrUnsupported is matched by the errors for layouts the HDF5 writer can't produce.
var ErrUnsupported = errors.New("not supported by the HDF5 writer")

//CompressionArgs are the compression parameters for new variables.
type CompressionArgs struct {
	Enabled bool
	Level   int
}

//Sile is a columnar file handle. It is only usable between Open and
//Close (or inside With).
type Sile struct {
	path   string
	mode   sile.Mode
	level  int
	logger *log.Logger

	f      *hdf5.File //nil when closed
	root   *Group
	groups []*Group //all groups, in creation order, root first
}

//Option configures a Sile.
type Option func(*Sile)

//WithCompression sets the deflate level (1-9) for new variables. 0 disables compression.
func WithCompression(level int) Option {
	return func(S *Sile) { S.level = level }
}

//WithLogger sets the logger for warnings. The standard logger is used otherwise.
func WithLogger(l *log.Logger) Option {
	return func(S *Sile) { S.logger = l }
}

//New returns a columnar Sile for path. The file is not opened.
func New(path string, mode sile.Mode, options ...Option) *Sile {
	S := &Sile{path: path, mode: mode}
	for _, o := range options {
		o(S)
	}
	if S.level < 0 || S.level > 9 {
		S.logf("cdf: compression level %d out of range, compression disabled", S.level)
		S.level = 0
	}
	return S
}

//Path returns the file name.
func (S *Sile) Path() string { return S.path }

//Mode returns the declared mode.
func (S *Sile) Mode() sile.Mode { return S.mode }

//Kind returns the handle type name used in errors.
func (S *Sile) Kind() string { return "SileCDF" }

//IsOpen is true between Open and Close.
func (S *Sile) IsOpen() bool { return S.f != nil }

//CompressionArgs returns the compression parameters used when creating variables.
func (S *Sile) CompressionArgs() CompressionArgs {
	return CompressionArgs{Enabled: S.level > 0, Level: S.level}
}

func (S *Sile) logf(format string, args ...interface{}) {
	if S.logger != nil {
		S.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

//Resource returns the open HDF5 file, for the operations Sile doesn't cover.
//It is nil when the Sile is closed. Objects written through it are not seen by
//the Sile until the file is opened again.
func (S *Sile) Resource() *hdf5.File { return S.f }

//Open opens the file for the declared mode. In Append mode the file is
//created if it doesn't exist.
func (S *Sile) Open() error {
	if S.f != nil {
		return sile.NewError("Can't open", S, sile.ErrOpen)
	}
	var f *hdf5.File
	var err error
	scan := true
	switch S.mode {
	case sile.Write:
		f, err = hdf5.Create(S.path)
		scan = false
	case sile.Append:
		if _, serr := os.Stat(S.path); errors.Is(serr, os.ErrNotExist) {
			var nf *hdf5.File
			if nf, err = hdf5.Create(S.path); err == nil {
				err = nf.Close()
			}
			if err != nil {
				break
			}
		}
		f, err = hdf5.OpenReadWrite(S.path)
	default:
		f, err = hdf5.Open(S.path)
	}
	if err != nil {
		return sile.Decorate(err, "Open", S)
	}
	S.f = f
	S.groups = nil
	S.root = newGroup(S, nil, "", f.Root())
	if scan {
		if err := S.root.load(); err != nil {
			S.f.Close()
			S.reset()
			return sile.Decorate(err, "Open", S)
		}
	}
	return nil
}

func (S *Sile) reset() {
	S.f = nil
	S.root = nil
	S.groups = nil
}

//Close writes the objects defined in the session and closes the file.
//The file is released even if writing fails. It is a no-op on a closed Sile.
func (S *Sile) Close() (err error) {
	if S.f == nil {
		return nil
	}
	f := S.f
	defer func() {
		cerr := f.Close()
		S.reset()
		if err == nil {
			err = sile.Decorate(cerr, "Close", S)
		}
	}()
	return sile.Decorate(S.flush(), "Close", S)
}

//With opens the Sile, runs fn and closes the Sile, whatever way fn returns.
//An error from fn takes precedence over an error from closing.
func (S *Sile) With(fn func(*Sile) error) (err error) {
	if err = S.Open(); err != nil {
		return err
	}
	defer func() {
		cerr := S.Close()
		if err == nil {
			err = cerr
		} else if cerr != nil {
			S.logf("cdf: error closing %s after a failure: %v", S.path, cerr)
		}
	}()
	return fn(S)
}

func (S *Sile) closedError(what string) error {
	return sile.NewError("Can't "+what, S, sile.ErrClosed)
}

func (S *Sile) notFound(kind, name string) error {
	return sile.NewError(kind+" "+name+" not found", S, ErrNotFound)
}

//Root returns the root group.
func (S *Sile) Root() (*Group, error) {
	if S.f == nil {
		return nil, S.closedError("get the root group")
	}
	return S.root, nil
}

//Group returns the group with the given absolute path ("/" or "" is the root).
func (S *Sile) Group(gpath string) (*Group, error) {
	if S.f == nil {
		return nil, S.closedError("get group " + gpath)
	}
	gpath = path.Clean("/" + gpath)
	for _, g := range S.groups {
		if g.path == gpath {
			return g, nil
		}
	}
	return nil, S.notFound("Group", gpath)
}

//CreateGroup returns the group name in parent (the root if parent is nil),
//creating it if needed. New groups can only be made in the root.
func (S *Sile) CreateGroup(parent *Group, name string) (*Group, error) {
	if S.f == nil {
		return nil, S.closedError("create group " + name)
	}
	parent = S.orRoot(parent)
	if g, ok := parent.children[name]; ok {
		return g, nil
	}
	if err := S.canAdd(parent, name); err != nil {
		return nil, err
	}
	if parent != S.root {
		return nil, sile.NewError("Can't create group "+name+" below "+parent.path, S, ErrUnsupported)
	}
	if _, ok := parent.dims[name]; ok {
		return nil, sile.FormatError(S, "%s is already a dimension in group %s", name, parent.path)
	}
	if _, ok := parent.vars[name]; ok {
		return nil, sile.FormatError(S, "%s is already a variable in group %s", name, parent.path)
	}
	g := newGroup(S, parent, name, nil)
	parent.queue = append(parent.queue, link{name, func() error {
		h, err := parent.h.CreateGroup(name)
		if err != nil {
			return fmt.Errorf("writing group %s: %w", g.path, err)
		}
		g.h = h
		return nil
	}})
	return g, nil
}

//canAdd checks that a new object called name can be defined in g.
func (S *Sile) canAdd(g *Group, name string) error {
	if err := sile.RaiseWrite(S); err != nil {
		return err
	}
	if err := checkName(name); err != nil {
		return sile.NewError(err.Error(), S, sile.ErrFormat)
	}
	if g.stored && g != S.root {
		return sile.NewError("Can't add "+name+" to the stored group "+g.path, S, ErrUnsupported)
	}
	if _, ok := g.children[name]; ok {
		return sile.FormatError(S, "%s is already a group in %s", name, g.path)
	}
	return nil
}

//Dimension returns the dimension name, looking first in g (the root if nil)
//and then in its parents.
func (S *Sile) Dimension(g *Group, name string) (*Dimension, error) {
	if S.f == nil {
		return nil, S.closedError("get dimension " + name)
	}
	if d := S.orRoot(g).dimension(name); d != nil {
		return d, nil
	}
	return nil, S.notFound("Dimension", name)
}

//CreateDimension defines the dimension name with length n in g (the root if nil).
//If g already has that dimension nothing is done, and the existing one is returned.
func (S *Sile) CreateDimension(g *Group, name string, n int) (*Dimension, error) {
	if S.f == nil {
		return nil, S.closedError("create dimension " + name)
	}
	g = S.orRoot(g)
	if d, ok := g.dims[name]; ok {
		if d.Len != n {
			S.logf("cdf: dimension %s already exists with length %d, not %d", name, d.Len, n)
		}
		return d, nil
	}
	if err := S.canAdd(g, name); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, sile.FormatError(S, "negative length %d for dimension %s", n, name)
	}
	if _, ok := g.vars[name]; ok {
		return nil, sile.FormatError(S, "%s is already a variable in group %s", name, g.path)
	}
	d := &Dimension{Name: name, Len: n}
	g.dims[name] = d
	g.dimOrder = append(g.dimOrder, name)
	g.queue = append(g.queue, link{name, func() error { return g.writeDimension(d) }})
	return d, nil
}

//Variable returns the variable name of group g (the root if nil).
func (S *Sile) Variable(g *Group, name string) (*Variable, error) {
	if S.f == nil {
		return nil, S.closedError("get variable " + name)
	}
	if v, ok := S.orRoot(g).vars[name]; ok {
		return v, nil
	}
	return nil, S.notFound("Variable", name)
}

//CreateVariable returns the variable name of g (the root if nil), defining it with
//type t and the given dimensions if it doesn't exist. The dimensions must be
//visible from g. The new variable is written when the Sile is closed.
func (S *Sile) CreateVariable(g *Group, name string, t Type, dims ...string) (*Variable, error) {
	if S.f == nil {
		return nil, S.closedError("create variable " + name)
	}
	g = S.orRoot(g)
	if v, ok := g.vars[name]; ok {
		return v, nil
	}
	if err := S.canAdd(g, name); err != nil {
		return nil, err
	}
	if _, ok := g.dims[name]; ok {
		return nil, sile.FormatError(S, "%s is already a dimension in group %s", name, g.path)
	}
	if t.zero(0) == nil {
		return nil, sile.FormatError(S, "unknown type %d for variable %s", int(t), name)
	}
	shape := make([]int, len(dims))
	for i, dn := range dims {
		d := g.dimension(dn)
		if d == nil {
			return nil, S.notFound("Dimension", dn)
		}
		shape[i] = d.Len
	}
	v := &Variable{Name: name, Type: t, Dims: append([]string(nil), dims...), group: g, shape: shape, pending: true}
	g.vars[name] = v
	g.varOrder = append(g.varOrder, name)
	g.queue = append(g.queue, link{name, func() error { return v.write(S.CompressionArgs()) }})
	return v, nil
}

func (S *Sile) orRoot(g *Group) *Group {
	if g == nil {
		return S.root
	}
	return g
}

//flush writes the objects defined in the session, parents before their
//subgroups. A failure inside the HDF5 writer is returned as an error.
func (S *Sile) flush() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = sile.NewError(fmt.Sprintf("HDF5 writer failed: %v", r), S, ErrUnsupported)
		}
	}()
	for _, g := range S.groups {
		if err := g.flush(); err != nil {
			return sile.Decorate(err, "flush", S)
		}
	}
	return nil
}

func checkName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}
