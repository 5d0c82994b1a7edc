/*
 * cli_test.go, part of sile.
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

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/sile"
	"github.com/rmera/sile/ham"
)

const output = `# SCF run
Iteration 1 energy -10.1
! comment-like but not for this file
Total Energy = -10.5
Fermi level = -3.2
`

const water = "3\nwater\nO 0 0 0\nH 0.757 0.586 0\nH -0.757 0.586 0\n"

func run(Te *testing.T, args ...string) (string, error) {
	Te.Helper()
	cmd := NewRootCmd(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(Te *testing.T, name, content string) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), name)
	require.NoError(Te, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStep(Te *testing.T) {
	path := writeFile(Te, "run.out", output)
	out, err := run(Te, "step", path, "Fermi", "Energy")
	require.NoError(Te, err)
	assert.Equal(Te, "Total Energy = -10.5\n", out)

	out, err = run(Te, "step", "--either", path, "Fermi", "Energy")
	require.NoError(Te, err)
	assert.Equal(Te, "1\tTotal Energy = -10.5\n", out)

	out, err = run(Te, "step", "--all", "--ignore-case", path, "energy")
	require.NoError(Te, err)
	assert.Equal(Te, "Iteration 1 energy -10.1\nTotal Energy = -10.5\n", out)
}

func TestStepComments(Te *testing.T) {
	path := writeFile(Te, "run.out", output)
	out, err := run(Te, "step", path, "SCF")
	assert.ErrorIs(Te, err, ErrNotFound)
	assert.Empty(Te, out)

	out, err = run(Te, "step", "--comment", "!", path, "SCF")
	require.NoError(Te, err)
	assert.Equal(Te, "# SCF run\n", out)
}

func TestStepEnv(Te *testing.T) {
	Te.Setenv("SDATA_IGNORE_CASE", "true")
	path := writeFile(Te, "run.out", output)
	out, err := run(Te, "step", path, "FERMI")
	require.NoError(Te, err)
	assert.Equal(Te, "Fermi level = -3.2\n", out)
}

func TestGeomSummary(Te *testing.T) {
	path := writeFile(Te, "water.xyz", water)
	out, err := run(Te, "geom", path)
	require.NoError(Te, err)
	assert.Contains(Te, out, "atoms: 3\n")
	assert.Contains(Te, out, "O: 1\nH: 2\n")
}

func TestGeomConvert(Te *testing.T) {
	in := writeFile(Te, "water.xyz", water)
	dir := Te.TempDir()
	hamPath := filepath.Join(dir, "water.ham.gz")
	_, err := run(Te, "geom", in, "--out", hamPath)
	require.NoError(Te, err)
	G, err := ham.New(hamPath, sile.Read).ReadGeometry()
	require.NoError(Te, err)
	assert.Equal(Te, 3, G.Len())
	assert.InDelta(Te, 0.586, G.Coord(2)[1], 1e-9)

	ncPath := filepath.Join(dir, "water.nc")
	_, err = run(Te, "--compression", "2", "geom", hamPath, "--out", ncPath)
	require.NoError(Te, err)
	out, err := run(Te, "cdf", ncPath)
	require.NoError(Te, err)
	assert.Contains(Te, out, "group /\n")
	assert.Contains(Te, out, "dim na_u = 3\n")
	assert.Contains(Te, out, "var double xa(na_u, xyz)\n")

	_, err = run(Te, "geom", in, "--out", filepath.Join(dir, "water.pdb"))
	assert.ErrorIs(Te, err, sile.ErrFormat)
}

func TestPlot(Te *testing.T) {
	in := writeFile(Te, "water.xyz", water)
	png := filepath.Join(Te.TempDir(), "water.png")
	_, err := run(Te, "plot", in, "--out", png, "--axes", "xy")
	require.NoError(Te, err)
	info, err := os.Stat(png)
	require.NoError(Te, err)
	assert.Greater(Te, info.Size(), int64(0))

	_, err = run(Te, "plot", in, "--axes", "xx")
	assert.Error(Te, err)
}

func TestParseAxes(Te *testing.T) {
	ax, err := parseAxes("zX")
	require.NoError(Te, err)
	assert.Equal(Te, [2]int{2, 0}, ax)
	for _, bad := range []string{"", "x", "xyz", "yy", "xw"} {
		_, err := parseAxes(bad)
		assert.Error(Te, err, bad)
	}
}

func TestBuildConfig(Te *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg, err := buildConfig(v)
	require.NoError(Te, err)
	assert.Equal(Te, []string{"#"}, cfg.Comment)
	assert.False(Te, cfg.IgnoreCase)

	v.Set("compression", 12)
	_, err = buildConfig(v)
	assert.Error(Te, err)
}
