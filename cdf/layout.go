/*
 * layout.go, part of sile.
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

//The HDF5 writer rewrites the object header of a group each time a link is
//added. Headers shorter than minChunk bytes of messages are padded with a NIL
//message, which takes nilHeader bytes by itself, so a header that falls
//short of minChunk by less than nilHeader bytes can't be written.
//Sizes are those of the writer's default 8-byte offsets.
const (
	minChunk   = 120
	nilHeader  = 4
	headerBase = 28 //link info and group info messages
	offsetSize = 8
)

//linkSize is the number of bytes a hard link called name adds to a group header.
func linkSize(name string) int {
	n := len(name)
	lenField := 1
	switch {
	case n > 0xFFFF:
		lenField = 4
	case n > 0xFF:
		lenField = 2
	}
	return nilHeader + 2 + lenField + n + offsetSize
}

//padGap is true for header sizes the writer can't pad.
func padGap(size int) bool {
	return size < minChunk && size > minChunk-nilHeader
}

//linkOrder returns an order in which links of the given sizes can be added to a
//header that currently takes size bytes, keeping every intermediate header out
//of the padding gap. The original order is kept as far as possible. The second
//return value is false if no such order exists.
func linkOrder(size int, sizes []int) ([]int, bool) {
	ret := make([]int, 0, len(sizes))
	used := make([]bool, len(sizes))
	var walk func(size int) bool
	walk = func(size int) bool {
		if len(ret) == len(sizes) {
			return true
		}
		if size >= minChunk {
			for i := range sizes {
				if !used[i] {
					ret = append(ret, i)
				}
			}
			return true
		}
		tried := make(map[int]bool)
		for i, s := range sizes {
			if used[i] || tried[s] || padGap(size+s) {
				continue
			}
			tried[s] = true
			used[i] = true
			ret = append(ret, i)
			if walk(size + s) {
				return true
			}
			ret = ret[:len(ret)-1]
			used[i] = false
		}
		return false
	}
	if !walk(size) {
		return nil, false
	}
	return ret, true
}
