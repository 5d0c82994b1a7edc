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

package sile

import (
	"fmt"
	"sort"
	"strings"
)

//Constructor builds a handle for path with the given mode.
type Constructor func(path string, mode Mode) Handle

//Registry maps file suffixes to the constructors of the siles that understand them.
//There is no package-level registry: programs build the one they need.
type Registry struct {
	ctors map[string]Constructor
}

//NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

//Register associates ctor with the given suffixes (with or without the leading dot).
//A suffix registered twice keeps the last constructor.
func (R *Registry) Register(ctor Constructor, suffixes ...string) {
	for _, s := range suffixes {
		R.ctors[strings.ToLower(strings.TrimPrefix(s, "."))] = ctor
	}
}

//Get returns a handle for path, chosen by its suffix (compression extensions are
//ignored, so "x.ham.gz" is a "ham" file).
func (R *Registry) Get(path string, mode Mode) (Handle, error) {
	suf := Suffix(path)
	ctor, ok := R.ctors[suf]
	if !ok {
		return nil, NewError(fmt.Sprintf("No sile registered for suffix %q of %s", suf, path), nil, ErrFormat)
	}
	return ctor(path, mode), nil
}

//Suffixes returns the registered suffixes, sorted.
func (R *Registry) Suffixes() []string {
	ret := make([]string, 0, len(R.ctors))
	for k := range R.ctors {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
