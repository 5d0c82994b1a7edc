/*
 * sile.go, part of sile.
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
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

//Sile is a structured text file with a declared mode and a comment convention.
//The file is only open inside a With call (or between Open and Close). Outside
//that region every operation other than opening fails with ErrClosed.
//A Sile is not safe for concurrent use.
type Sile struct {
	path    string
	mode    Mode
	comment []string
	kind    string
	level   int
	logger  *log.Logger
	res     *resource //nil when closed
}

//Option configures a Sile.
type Option func(*Sile)

//WithComment replaces the comment prefixes (default "#").
//Empty prefixes are ignored.
func WithComment(prefixes ...string) Option {
	return func(S *Sile) {
		S.comment = S.comment[:0]
		for _, v := range prefixes {
			if v != "" {
				S.comment = append(S.comment, v)
			}
		}
	}
}

//WithLogger sets the logger for warnings. The standard logger is used otherwise.
func WithLogger(l *log.Logger) Option {
	return func(S *Sile) { S.logger = l }
}

//WithKind sets the type name shown in error messages. Format packages use it
//so errors read "... in HamiltonianSile(file.ham)".
func WithKind(kind string) Option {
	return func(S *Sile) { S.kind = kind }
}

//WithCompressionLevel sets the gzip level used when writing .gz files.
func WithCompressionLevel(level int) Option {
	return func(S *Sile) { S.level = level }
}

//New returns a Sile for path, declared with the given mode. The file is not opened.
func New(path string, mode Mode, options ...Option) *Sile {
	S := &Sile{
		path:    path,
		mode:    mode,
		comment: []string{"#"},
		kind:    "Sile",
	}
	for _, o := range options {
		o(S)
	}
	return S
}

//Path returns the file name.
func (S *Sile) Path() string { return S.path }

//Mode returns the declared mode.
func (S *Sile) Mode() Mode { return S.mode }

//Kind returns the type name used in error messages.
func (S *Sile) Kind() string { return S.kind }

//Comment returns a copy of the comment prefixes.
func (S *Sile) Comment() []string {
	return append([]string(nil), S.comment...)
}

//IsOpen is true inside the open region.
func (S *Sile) IsOpen() bool { return S.res != nil }

//Logf prints a warning through the logger given with WithLogger, or the standard one.
func (S *Sile) Logf(format string, args ...interface{}) { S.logf(format, args...) }

func (S *Sile) logf(format string, args ...interface{}) {
	if S.logger != nil {
		S.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

//Open acquires the file for the declared mode. Most callers should use With instead.
func (S *Sile) Open() error {
	if S.res != nil {
		return NewError("Can't open", S, ErrOpen)
	}
	f, err := os.OpenFile(S.path, S.mode.flag(), 0644)
	if err != nil {
		return errDecorate(err, "Open", S)
	}
	S.res = &resource{f: f, comp: CompressionOf(S.path), level: S.level}
	return nil
}

//Close releases the file. It is a no-op on a closed Sile.
func (S *Sile) Close() error {
	if S.res == nil {
		return nil
	}
	err := S.res.close()
	S.res = nil
	return errDecorate(err, "Close", S)
}

//With opens the Sile, runs fn on it and closes it, whatever way fn returns
//(including a panic). An error from fn takes precedence over an error from closing
//the file. The Sile can be opened again afterwards.
func (S *Sile) With(fn func(*Sile) error) (err error) {
	if err = S.Open(); err != nil {
		return err
	}
	defer func() {
		cerr := S.Close()
		if err == nil {
			err = cerr
		} else if cerr != nil {
			S.logf("sile: error closing %s after a failure: %v", S.path, cerr)
		}
	}()
	return fn(S)
}

func (S *Sile) isComment(line string) bool {
	l := strings.TrimLeft(line, " \t")
	for _, c := range S.comment {
		if strings.HasPrefix(l, c) {
			return true
		}
	}
	return false
}

//ReadLine reads the next line, including its trailing newline.
//If skipComments is true, lines starting (after blanks) with one of the comment
//prefixes are skipped. At the end of the file it returns an empty string and a nil error.
func (S *Sile) ReadLine(skipComments bool) (string, error) {
	if err := RaiseRead(S); err != nil {
		return "", err
	}
	if S.res == nil {
		return "", NewError("Can't read", S, ErrClosed)
	}
	for {
		line, err := S.res.readLine()
		if err != nil {
			return "", errDecorate(err, "ReadLine", S)
		}
		if line == "" || !skipComments || !S.isComment(line) {
			return line, nil
		}
	}
}

//StepTo reads lines, skipping comments, until one contains key, and returns
//that line. The search is a plain substring search; if caseSensitive is false both
//the line and the candidates are lower-cased first. The scan consumes the file: a
//later call continues from the line after the match.
//An empty keyword matches the first non-comment line.
//If the end of the file is reached, it returns false and an empty string.
func (S *Sile) StepTo(key Keyword, caseSensitive bool) (bool, string, error) {
	m, err := S.StepEither([]Keyword{key}, caseSensitive)
	if err != nil {
		return false, "", errDecorate(err, "StepTo", S)
	}
	return m.Found, m.Line, nil
}

//StepEither is like StepTo, but takes several independent keywords and also
//reports the index of the first of them that matched. When a line matches
//more than one keyword, the smallest index wins. The index is -1 if nothing is found.
//With no keywords at all nothing can match, so the whole file is consumed.
func (S *Sile) StepEither(keywords []Keyword, caseSensitive bool) (Match, error) {
	for {
		line, err := S.ReadLine(true)
		if err != nil {
			return Match{Index: -1}, err
		}
		if line == "" {
			return Match{Index: -1}, nil
		}
		if i := firstMatch(line, keywords, caseSensitive); i >= 0 {
			return Match{Found: true, Index: i, Line: line}, nil
		}
	}
}

//Write implements io.Writer. It fails with a mode violation on a read-only Sile.
func (S *Sile) Write(p []byte) (int, error) {
	if err := RaiseWrite(S); err != nil {
		return 0, err
	}
	if S.res == nil {
		return 0, NewError("Can't write", S, ErrClosed)
	}
	w, err := S.res.writer()
	if err != nil {
		return 0, errDecorate(err, "Write", S)
	}
	n, err := w.Write(p)
	return n, errDecorate(err, "Write", S)
}

//WriteString writes s to the file.
func (S *Sile) WriteString(s string) error {
	_, err := S.Write([]byte(s))
	return err
}

//Printf writes formatted output to the file.
func (S *Sile) Printf(format string, args ...interface{}) error {
	return S.WriteString(fmt.Sprintf(format, args...))
}

//resource is the open file plus the (de)compression layers on top of it.
//The layers are built the first time they are needed, so an Append Sile
//only touches what it uses.
type resource struct {
	f     *os.File
	comp  Compression
	level int

	rc    io.ReadCloser
	r     *bufio.Reader
	empty bool //the compressed stream had no data at all

	wc io.WriteCloser
	w  *bufio.Writer
}

func (r *resource) reader() (*bufio.Reader, error) {
	if r.r != nil || r.empty {
		return r.r, nil
	}
	rc, err := r.comp.newReader(bufio.NewReader(r.f))
	if err == io.EOF {
		//gzip reads the header eagerly, an empty file is just an empty stream.
		r.empty = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.rc = rc
	r.r = bufio.NewReader(rc)
	return r.r, nil
}

func (r *resource) readLine() (string, error) {
	b, err := r.reader()
	if err != nil || b == nil {
		return "", err
	}
	line, err := b.ReadString('\n')
	if err == io.EOF {
		return line, nil
	}
	return line, err
}

func (r *resource) writer() (*bufio.Writer, error) {
	if r.w != nil {
		return r.w, nil
	}
	wc, err := r.comp.newWriter(r.f, r.level)
	if err != nil {
		return nil, err
	}
	r.wc = wc
	r.w = bufio.NewWriter(wc)
	return r.w, nil
}

//close flushes and closes every layer, innermost last. It returns the first error found,
//but always tries to close the file.
func (r *resource) close() error {
	var first error
	keep := func(err error) {
		if first == nil && err != nil {
			first = err
		}
	}
	if r.w != nil {
		keep(r.w.Flush())
		keep(r.wc.Close())
	}
	if r.rc != nil {
		keep(r.rc.Close())
	}
	keep(r.f.Close())
	return first
}
