/*
 * errors.go, part of sile.
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
	"errors"
	"fmt"
)

var (
	//ErrModeViolation is matched (with errors.Is) by every error produced when
	//a read is attempted on a write-only handle or a write on a read-only one.
	ErrModeViolation = errors.New("mode violation")

	//ErrClosed is returned when a handle is used outside its open region.
	ErrClosed = errors.New("sile is not open")

	//ErrOpen is returned when opening a handle that is already open.
	ErrOpen = errors.New("sile is already open")

	//ErrFormat is matched by the parse errors of the format readers.
	ErrFormat = errors.New("wrong format")
)

//Handle is what an Error needs to know about the object that failed.
//Every sile in this module implements it.
type Handle interface {
	//Path returns the file the handle is associated to.
	Path() string
	//Kind is the name of the handle type, as shown in error messages.
	Kind() string
	//Mode is the declared open mode.
	Mode() Mode
}

//Error is the error type of the sile packages. It carries a message, optionally the
//handle that produced it, and a "decoration" trail with the functions the error
//went through.
type Error struct {
	message  string
	handle   Handle
	deco     []string
	critical bool
	err      error //sentinel or underlying error, for errors.Is/As
}

//NewError returns an Error with the given message, attached to the handle h, which can be nil.
//err is the wrapped error and can also be nil.
func NewError(message string, h Handle, err error) *Error {
	return &Error{message: message, handle: h, err: err, critical: true}
}

//Error returns "message in Kind(path)" if a handle is attached, otherwise just the message.
func (err *Error) Error() string {
	if err.handle == nil {
		return err.message
	}
	return fmt.Sprintf("%s in %s(%s)", err.message, err.handle.Kind(), err.handle.Path())
}

//Unwrap returns the wrapped error, if any.
func (err *Error) Unwrap() error { return err.err }

//Decorate adds new information to the error and returns the trail so far.
//If given an empty string, it just returns the current trail.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Handle returns the handle associated to the error, or nil.
func (err *Error) Handle() Handle { return err.handle }

//FileName returns the file associated to the error, or an empty string.
func (err *Error) FileName() string {
	if err.handle == nil {
		return ""
	}
	return err.handle.Path()
}

//Critical returns false only for errors that leave the handle usable.
func (err *Error) Critical() bool { return err.critical }

//errDecorate adds caller to the trail of err if it is an *Error. Other errors are
//wrapped in an *Error attached to h.
func errDecorate(err error, caller string, h Handle) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return err
	}
	e = NewError(err.Error(), h, err)
	e.Decorate(caller)
	return e
}

//Decorate is errDecorate for the format packages built on top of Sile.
func Decorate(err error, caller string, h Handle) error {
	return errDecorate(err, caller, h)
}

//FormatError returns an error matching ErrFormat, attached to h.
func FormatError(h Handle, format string, args ...interface{}) error {
	return NewError(fmt.Sprintf(format, args...), h, ErrFormat)
}

//RaiseWrite fails with a mode violation unless h was declared for writing or appending.
func RaiseWrite(h Handle) error {
	if h.Mode().CanWrite() {
		return nil
	}
	return NewError("Writing to a read-only file not possible", h, ErrModeViolation)
}

//RaiseRead fails with a mode violation unless h was declared for reading or appending.
func RaiseRead(h Handle) error {
	if h.Mode().CanRead() {
		return nil
	}
	return NewError("Reading a write-only file not possible", h, ErrModeViolation)
}
