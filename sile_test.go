/*
 * sile_test.go, part of sile.
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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

var scenario = []string{"# header\n", "foo 1\n", "bar 2\n", "# comment\n", "baz 3\n"}

func writeLines(Te *testing.T, name string, lines []string) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), 0644); err != nil {
		Te.Fatal(err)
	}
	return path
}

func TestScenario(Te *testing.T) {
	path := writeLines(Te, "scenario.dat", scenario)
	s := New(path, Read)
	err := s.With(func(s *Sile) error {
		found, line, err := s.StepTo(Key("bar"), true)
		if err != nil {
			return err
		}
		if !found || line != "bar 2\n" {
			Te.Errorf("first step: got %v %q", found, line)
		}
		found, line, err = s.StepTo(Key("baz"), true)
		if err != nil {
			return err
		}
		if !found || line != "baz 3\n" {
			Te.Errorf("second step: got %v %q", found, line)
		}
		return nil
	})
	if err != nil {
		Te.Error(err)
	}
	if s.IsOpen() {
		Te.Error("Sile still open after With")
	}
}

func TestModeGuards(Te *testing.T) {
	path := writeLines(Te, "modes.dat", scenario)

	r := New(path, Read)
	err := r.With(func(s *Sile) error {
		if _, err := s.Write([]byte("x\n")); !errors.Is(err, ErrModeViolation) {
			Te.Errorf("write on read sile: expected a mode violation, got %v", err)
		}
		return RaiseRead(s)
	})
	if err != nil {
		Te.Error(err)
	}

	w := New(filepath.Join(Te.TempDir(), "out.dat"), Write)
	err = w.With(func(s *Sile) error {
		if _, err := s.ReadLine(true); !errors.Is(err, ErrModeViolation) {
			Te.Errorf("read on write sile: expected a mode violation, got %v", err)
		}
		return RaiseWrite(s)
	})
	if err != nil {
		Te.Error(err)
	}

	a := New(path, Append)
	if err := RaiseRead(a); err != nil {
		Te.Error(err)
	}
	if err := RaiseWrite(a); err != nil {
		Te.Error(err)
	}
	err = a.With(func(s *Sile) error {
		line, err := s.ReadLine(true)
		if err != nil {
			return err
		}
		if line != "foo 1\n" {
			Te.Errorf("append read: got %q", line)
		}
		return s.WriteString("qux 4\n")
	})
	if err != nil {
		Te.Error(err)
	}
	b, _ := os.ReadFile(path)
	if !strings.HasSuffix(string(b), "baz 3\nqux 4\n") {
		Te.Errorf("append didn't write at the end: %q", string(b))
	}
}

func TestReadLineComments(Te *testing.T) {
	lines := []string{"#a\n", "  # indented\n", "one\n", "#b\n", "#c\n", "two\n", "# trailing\n"}
	path := writeLines(Te, "comments.dat", lines)
	s := New(path, Read)
	var got []string
	err := s.With(func(s *Sile) error {
		for {
			l, err := s.ReadLine(true)
			if err != nil {
				return err
			}
			if l == "" {
				return nil
			}
			got = append(got, l)
		}
	})
	if err != nil {
		Te.Fatal(err)
	}
	if len(got) != 2 || got[0] != "one\n" || got[1] != "two\n" {
		Te.Errorf("unexpected lines %q", got)
	}
	//without skipping, everything comes back.
	var all int
	s.With(func(s *Sile) error {
		for l, _ := s.ReadLine(false); l != ""; l, _ = s.ReadLine(false) {
			all++
		}
		return nil
	})
	if all != len(lines) {
		Te.Errorf("read %d raw lines, expected %d", all, len(lines))
	}
}

func TestCustomComment(Te *testing.T) {
	path := writeLines(Te, "bang.dat", []string{"! fortran\n", "# not a comment here\n"})
	s := New(path, Read, WithComment("!"))
	s.With(func(s *Sile) error {
		l, _ := s.ReadLine(true)
		if l != "# not a comment here\n" {
			Te.Errorf("got %q", l)
		}
		return nil
	})
}

func TestStepToNotFound(Te *testing.T) {
	path := writeLines(Te, "nf.dat", scenario)
	s := New(path, Read)
	s.With(func(s *Sile) error {
		found, line, err := s.StepTo(Key("nothere"), true)
		if err != nil || found || line != "" {
			Te.Errorf("got %v %q %v", found, line, err)
		}
		//the stream is consumed
		l, _ := s.ReadLine(false)
		if l != "" {
			Te.Errorf("stream not consumed, got %q", l)
		}
		return nil
	})
}

func TestStepToList(Te *testing.T) {
	path := writeLines(Te, "list.dat", scenario)
	for _, k := range []Keyword{Key("baz", "bar"), Key("bar", "baz")} {
		s := New(path, Read)
		s.With(func(s *Sile) error {
			found, line, _ := s.StepTo(k, true)
			if !found || line != "bar 2\n" {
				Te.Errorf("keyword %v: got %v %q", k, found, line)
			}
			return nil
		})
	}
}

func TestStepEither(Te *testing.T) {
	path := writeLines(Te, "either.dat", []string{"nothing\n", "alpha gamma\n", "beta\n"})
	s := New(path, Read)
	s.With(func(s *Sile) error {
		m, err := s.StepEither(Keys("alpha", "beta", "gamma"), true)
		if err != nil {
			Te.Fatal(err)
		}
		if !m.Found || m.Index != 0 || m.Line != "alpha gamma\n" {
			Te.Errorf("got %+v", m)
		}
		m, _ = s.StepEither([]Keyword{Key("zeta"), Key("x", "beta")}, true)
		if !m.Found || m.Index != 1 || m.Line != "beta\n" {
			Te.Errorf("got %+v", m)
		}
		m, _ = s.StepEither(Keys("alpha"), true)
		if m.Found || m.Index != -1 || m.Line != "" {
			Te.Errorf("got %+v at the end of file", m)
		}
		return nil
	})
}

func TestCaseInsensitive(Te *testing.T) {
	path := writeLines(Te, "case.dat", []string{"total energy = 1.0\n"})
	s := New(path, Read)
	s.With(func(s *Sile) error {
		found, _, _ := s.StepTo(Key("Energy"), true)
		if found {
			Te.Error("case sensitive search matched")
		}
		return nil
	})
	s.With(func(s *Sile) error {
		found, line, _ := s.StepTo(Key("Energy"), false)
		if !found || line != "total energy = 1.0\n" {
			Te.Errorf("got %v %q", found, line)
		}
		return nil
	})
}

func TestEmptyKeyword(Te *testing.T) {
	path := writeLines(Te, "empty.dat", scenario)
	s := New(path, Read)
	s.With(func(s *Sile) error {
		found, line, _ := s.StepTo(Key(""), true)
		if !found || line != "foo 1\n" {
			Te.Errorf("got %v %q", found, line)
		}
		found, line, _ = s.StepTo(Key(), true)
		if !found || line != "bar 2\n" {
			Te.Errorf("got %v %q", found, line)
		}
		return nil
	})
}

func TestReleaseOnFailure(Te *testing.T) {
	path := writeLines(Te, "fail.dat", scenario)
	s := New(path, Read)
	boom := errors.New("boom")
	err := s.With(func(s *Sile) error {
		s.ReadLine(true)
		return boom
	})
	if !errors.Is(err, boom) {
		Te.Errorf("expected the body error, got %v", err)
	}
	if s.IsOpen() {
		Te.Error("resource not released after an error")
	}
	func() {
		defer func() { recover() }()
		s.With(func(s *Sile) error { panic("again") })
	}()
	if s.IsOpen() {
		Te.Error("resource not released after a panic")
	}
	//can be reopened
	if err := s.With(func(s *Sile) error { return nil }); err != nil {
		Te.Error(err)
	}
	if _, err := s.ReadLine(true); !errors.Is(err, ErrClosed) {
		Te.Errorf("expected ErrClosed outside the open region, got %v", err)
	}
}

func TestOpenMissing(Te *testing.T) {
	s := New(filepath.Join(Te.TempDir(), "missing.dat"), Read)
	err := s.With(func(s *Sile) error { return nil })
	if !errors.Is(err, fs.ErrNotExist) {
		Te.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestGzipTransparent(Te *testing.T) {
	dir := Te.TempDir()
	plain := writeLines(Te, "plain.dat", scenario)
	gz := filepath.Join(dir, "plain.dat.gz")
	f, err := os.Create(gz)
	if err != nil {
		Te.Fatal(err)
	}
	w := gzip.NewWriter(f)
	w.Write([]byte(strings.Join(scenario, "")))
	w.Close()
	f.Close()
	read := func(path string) []string {
		var ret []string
		New(path, Read).With(func(s *Sile) error {
			for l, _ := s.ReadLine(false); l != ""; l, _ = s.ReadLine(false) {
				ret = append(ret, l)
			}
			return nil
		})
		return ret
	}
	a, b := read(plain), read(gz)
	if strings.Join(a, "") != strings.Join(b, "") || len(a) != len(scenario) {
		Te.Errorf("gzip content differs: %q vs %q", a, b)
	}
}

func TestCompressedRoundTrip(Te *testing.T) {
	for _, name := range []string{"out.dat.gz", "out.dat.zst"} {
		path := filepath.Join(Te.TempDir(), name)
		err := New(path, Write).With(func(s *Sile) error {
			return s.Printf("%s %d\n", "energy", 3)
		})
		if err != nil {
			Te.Fatal(err)
		}
		//a second member/frame
		err = New(path, Append).With(func(s *Sile) error {
			return s.WriteString("forces 4\n")
		})
		if err != nil {
			Te.Fatal(err)
		}
		New(path, Read).With(func(s *Sile) error {
			found, line, err := s.StepTo(Key("forces"), true)
			if err != nil || !found || line != "forces 4\n" {
				Te.Errorf("%s: got %v %q %v", name, found, line, err)
			}
			return nil
		})
	}
}

func TestErrorString(Te *testing.T) {
	s := New("x.ham", Read, WithKind("HamiltonianSile"))
	err := RaiseWrite(s)
	if err.Error() != "Writing to a read-only file not possible in HamiltonianSile(x.ham)" {
		Te.Errorf("unexpected message %q", err.Error())
	}
	plain := NewError("just this", nil, nil)
	if plain.Error() != "just this" {
		Te.Errorf("unexpected message %q", plain.Error())
	}
	e := errDecorate(errors.New("low level"), "Caller", s).(*Error)
	if d := e.Decorate(""); len(d) != 1 || d[0] != "Caller" {
		Te.Errorf("unexpected decoration %v", d)
	}
}

func TestParseMode(Te *testing.T) {
	for in, want := range map[string]Mode{"r": Read, "rb": Read, "w": Write, "a+": Append, "append": Append} {
		m, err := ParseMode(in)
		if err != nil || m != want {
			Te.Errorf("%q: got %v %v", in, m, err)
		}
	}
	if _, err := ParseMode("x"); err == nil {
		Te.Error("expected an error for an unknown mode")
	}
}
