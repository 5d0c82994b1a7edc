/*
 * ham_test.go, part of sile.
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

package ham

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/sile"
	"github.com/rmera/sile/geom"
)

const chain = `# a two-atom chain
begin cell
  2.5 0 0
  0 10 0
  0 0 10
end cell

SuperCell 3 1 1

begin atom
  6 0.0 0.0 0.0
  6[2] 1.25 0.0 0.0
end atom

begin matrix 0 0 0
  0 0 -0.5
  0 1 -1.0
  1 2 0.2
end matrix

begin matrix 1 0 0
  0 2 -1.0
end matrix
`

func writeFile(Te *testing.T, name, content string) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		Te.Fatal(err)
	}
	return path
}

func TestReadGeometry(Te *testing.T) {
	path := writeFile(Te, "chain.ham", chain)
	G, err := New(path, sile.Read).ReadGeometry()
	if err != nil {
		Te.Fatal(err)
	}
	if G.Len() != 2 || G.NO() != 3 {
		Te.Fatalf("wrong atoms: %v", G.Atoms)
	}
	if G.NSC != [3]int{3, 1, 1} {
		Te.Errorf("nsc %v", G.NSC)
	}
	if G.Cell.At(0, 0) != 2.5 || G.Cell.At(2, 2) != 10 {
		Te.Errorf("wrong cell")
	}
	if G.Coord(1)[0] != 1.25 {
		Te.Errorf("wrong coordinates %v", G.Coord(1))
	}
}

func TestOneLineCell(Te *testing.T) {
	path := writeFile(Te, "one.ham", "cell 1 2 3\nnsc 1 1 3\nbegin atom\n  H 0 0 0\nend atom\n")
	G, err := New(path, sile.Read).ReadGeometry()
	if err != nil {
		Te.Fatal(err)
	}
	if G.Volume() != 6 || G.NSC != [3]int{1, 1, 3} || G.Atoms[0].Z != 1 {
		Te.Errorf("wrong geometry %v %v %v", G.Volume(), G.NSC, G.Atoms)
	}
}

func TestReadHamiltonian(Te *testing.T) {
	path := writeFile(Te, "chain.ham", chain)
	H, err := New(path, sile.Read).ReadHamiltonian(false)
	if err != nil {
		Te.Fatal(err)
	}
	if !H.Orthogonal {
		Te.Error("model should be orthogonal")
	}
	if len(H.H) != 4 {
		Te.Errorf("expected 4 elements, got %d", len(H.H))
	}
	G := H.Geometry
	i1, _ := G.SCIndex([3]int{1, 0, 0})
	if h, _ := H.At(0, 2+3*i1); h != -1.0 {
		Te.Errorf("wrong coupling to the next cell %v", h)
	}
	if _, s := H.At(1, 1); s != 1 {
		Te.Errorf("orthogonal overlap diagonal is %v", s)
	}
}

func TestReadHermitian(Te *testing.T) {
	path := writeFile(Te, "chain.ham", chain)
	H, err := New(path, sile.Read).ReadHamiltonian(true)
	if err != nil {
		Te.Fatal(err)
	}
	G := H.Geometry
	im, _ := G.SCIndex([3]int{-1, 0, 0})
	if h, _ := H.At(2, 0+3*im); h != -1.0 {
		Te.Errorf("hermitian partner in the -1 cell is %v", h)
	}
	if h, _ := H.At(1, 0); h != -1.0 {
		Te.Errorf("hermitian partner in the unit cell is %v", h)
	}
}

func TestAtomOrbitalNotation(Te *testing.T) {
	content := "begin atom\n 6[2] 0 0 0\n 1 1 0 0\nend atom\nbegin matrix\n 0[1] 1[0] 0.5 0.9\nend matrix\n"
	path := writeFile(Te, "ao.ham", content)
	H, err := New(path, sile.Read).ReadHamiltonian(false)
	if err != nil {
		Te.Fatal(err)
	}
	if H.Orthogonal {
		Te.Error("an overlap column was given")
	}
	if h, s := H.At(1, 2); h != 0.5 || s != 0.9 {
		Te.Errorf("At(1,2) = %v %v", h, s)
	}
}

func TestRoundTrip(Te *testing.T) {
	G, err := geom.New([]geom.Atom{{Z: 6, Orbitals: 2}, {Z: 7}},
		[]float64{0, 0, 0, 1.3, 0.1, -0.2}, []float64{3, 0, 0, 0, 3, 0, 0, 0, 12}, [3]int{3, 3, 1})
	if err != nil {
		Te.Fatal(err)
	}
	H := NewHamiltonian(G, false)
	no := G.NO()
	for _, v := range []struct {
		r, c int
		h, s float64
	}{{0, 0, -1.5, 1}, {0, 2, 0.3, 0.05}, {2, 1 + 4*no, -0.25, 0.01}, {1, 2 + 8*no, 1e-7, 0}} {
		if err := H.Set(v.r, v.c, v.h); err != nil {
			Te.Fatal(err)
		}
		if err := H.SetOverlap(v.r, v.c, v.s); err != nil {
			Te.Fatal(err)
		}
	}
	path := filepath.Join(Te.TempDir(), "rt.ham.gz")
	if err := New(path, sile.Write).WriteHamiltonian(H, false); err != nil {
		Te.Fatal(err)
	}
	H2, err := New(path, sile.Read).ReadHamiltonian(false)
	if err != nil {
		Te.Fatal(err)
	}
	if !H.Equal(H2, 1e-8) {
		Te.Errorf("round trip changed the model:\n%v\n%v", H.H, H2.H)
	}
}

func TestSetOutOfRange(Te *testing.T) {
	G, _ := geom.New([]geom.Atom{{Z: 1}}, []float64{0, 0, 0}, nil, [3]int{})
	H := NewHamiltonian(G, true)
	if err := H.Set(0, 1, 1); err == nil {
		Te.Error("expected an error for a column outside of the model")
	}
	if err := H.SetOverlap(0, 0, 1); err == nil {
		Te.Error("expected an error setting the overlap of an orthogonal model")
	}
}

func TestHamModeGuard(Te *testing.T) {
	path := writeFile(Te, "chain.ham", chain)
	_, err := New(path, sile.Write).ReadGeometry()
	if !errors.Is(err, sile.ErrModeViolation) {
		Te.Fatalf("expected a mode violation, got %v", err)
	}
	if want := "Reading a write-only file not possible in HamiltonianSile(" + path + ")"; err.Error() != want {
		Te.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestUnterminatedBlock(Te *testing.T) {
	path := writeFile(Te, "bad.ham", "begin atom\n 1 0 0 0\n")
	_, err := New(path, sile.Read).ReadGeometry()
	if !errors.Is(err, sile.ErrFormat) {
		Te.Errorf("expected a format error, got %v", err)
	}
}

func hermitianChain(Te *testing.T) *Hamiltonian {
	Te.Helper()
	G, err := geom.New([]geom.Atom{{Z: 6}, {Z: 6}},
		[]float64{0, 0, 0, 1.25, 0, 0}, []float64{2.5, 10, 10}, [3]int{3, 1, 1})
	if err != nil {
		Te.Fatal(err)
	}
	H := NewHamiltonian(G, true)
	no := G.NO()
	ip, _ := G.SCIndex([3]int{1, 0, 0})
	im, _ := G.SCIndex([3]int{-1, 0, 0})
	for _, v := range []struct {
		r, c int
		h    float64
	}{{0, 0, -1}, {1, 1, -1}, {0, 1, 0.5}, {1, 0, 0.5}, {1, ip * no, 0.3}, {0, 1 + im*no, 0.3}} {
		if err := H.Set(v.r, v.c, v.h); err != nil {
			Te.Fatal(err)
		}
	}
	return H
}

func TestWriteHermitian(Te *testing.T) {
	H := hermitianChain(Te)
	path := filepath.Join(Te.TempDir(), "half.ham")
	if err := New(path, sile.Write).WriteHamiltonian(H, true); err != nil {
		Te.Fatal(err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		Te.Fatal(err)
	}
	if strings.Contains(string(content), "matrix -1 0 0") || strings.Contains(string(content), "  1 0 0.5") {
		Te.Errorf("the lower half was written:\n%s", content)
	}
	H2, err := New(path, sile.Read).ReadHamiltonian(true)
	if err != nil {
		Te.Fatal(err)
	}
	if !H.Equal(H2, 1e-12) {
		Te.Errorf("hermitian round trip changed the model:\n%v\n%v", H.H, H2.H)
	}
}

func TestWriteNotHermitian(Te *testing.T) {
	H := hermitianChain(Te)
	if err := H.Set(1, 0, 0.7); err != nil {
		Te.Fatal(err)
	}
	var warn bytes.Buffer
	path := filepath.Join(Te.TempDir(), "full.ham")
	S := New(path, sile.Write, sile.WithLogger(log.New(&warn, "", 0)))
	if err := S.WriteHamiltonian(H, true); err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(warn.String(), "not hermitian") {
		Te.Errorf("no warning logged, got %q", warn.String())
	}
	H2, err := New(path, sile.Read).ReadHamiltonian(false)
	if err != nil {
		Te.Fatal(err)
	}
	if !H.Equal(H2, 1e-12) {
		Te.Error("the model was not written in full")
	}
}
