/*
 * mode.go, part of sile.
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
	"os"
	"strings"
)

//Mode is the declared intent for a handle.
type Mode int

const (
	Read   Mode = iota //open existing, fail if absent
	Write              //create or truncate
	Append             //create or open, write at the end. Can also read.
)

func (m Mode) String() string {
	switch m {
	case Read:
		return "r"
	case Write:
		return "w"
	case Append:
		return "a"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

//CanRead is true for Read and Append.
func (m Mode) CanRead() bool { return m == Read || m == Append }

//CanWrite is true for Write and Append.
func (m Mode) CanWrite() bool { return m == Write || m == Append }

//flag returns the os.OpenFile flags for the mode.
func (m Mode) flag() int {
	switch m {
	case Write:
		return os.O_CREATE | os.O_TRUNC | os.O_WRONLY
	case Append:
		return os.O_CREATE | os.O_APPEND | os.O_RDWR
	}
	return os.O_RDONLY
}

//ParseMode accepts "r", "w", "a" (an optional "b" or "+" is ignored)
//and the long forms "read", "write" and "append".
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "read":
		return Read, nil
	case "write":
		return Write, nil
	case "append":
		return Append, nil
	}
	s = strings.Trim(s, "b+")
	switch s {
	case "r":
		return Read, nil
	case "w":
		return Write, nil
	case "a":
		return Append, nil
	}
	return Read, fmt.Errorf("unknown mode %q", s)
}
