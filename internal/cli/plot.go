/*
 * plot.go, part of sile.
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
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/rmera/sile/geom"
)

func (a *app) plotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot IN",
		Short: "Plot the atoms of a geometry projected on a plane",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			axes, _ := cmd.Flags().GetString("axes")
			ax, err := parseAxes(axes)
			if err != nil {
				return err
			}
			R := newRegistry(cfg, cfg.logger(cmd.ErrOrStderr()))
			r, err := geometryReader(R, args[0])
			if err != nil {
				return err
			}
			G, err := r.ReadGeometry()
			if err != nil {
				return err
			}
			return projection(G, ax, args[0], out)
		},
	}
	cmd.Flags().String("out", "geometry.png", "Image file (the format is taken from the extension)")
	cmd.Flags().String("axes", "xy", "Cartesian axes of the projection plane")
	return cmd
}

//parseAxes turns "xy", "xz", "zy"... into coordinate indexes.
func parseAxes(s string) ([2]int, error) {
	var ret [2]int
	if len(s) != 2 || s[0] == s[1] {
		return ret, fmt.Errorf("axes must be two different letters among x, y and z, got %q", s)
	}
	for i := range ret {
		switch s[i] {
		case 'x', 'X':
			ret[i] = 0
		case 'y', 'Y':
			ret[i] = 1
		case 'z', 'Z':
			ret[i] = 2
		default:
			return ret, fmt.Errorf("unknown axis %q", s[i])
		}
	}
	return ret, nil
}

//projection saves a scatter plot of the atoms of G on the plane given by ax,
//one color per element.
func projection(G *geom.Geometry, ax [2]int, title, filename string) error {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	names := "xyz"
	p.X.Label.Text = string(names[ax[0]])
	p.Y.Label.Text = string(names[ax[1]])
	p.Add(plotter.NewGrid())
	bySpecies := make(map[int]plotter.XYs)
	for i, at := range G.Atoms {
		c := G.Coord(i)
		bySpecies[at.Z] = append(bySpecies[at.Z], plotter.XY{X: c[ax[0]], Y: c[ax[1]]})
	}
	zs := make([]int, 0, len(bySpecies))
	for z := range bySpecies {
		zs = append(zs, z)
	}
	sort.Ints(zs)
	for i, z := range zs {
		s, err := plotter.NewScatter(bySpecies[z])
		if err != nil {
			return err
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		r, g, b := speciesColor(i, len(zs))
		s.GlyphStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
		p.Add(s)
		p.Legend.Add(geom.Symbol(z), s)
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, filename)
}

//speciesColor spreads n colors along the hue circle and returns the i-th.
func speciesColor(i, n int) (uint8, uint8, uint8) {
	h := 300 * float64(i) / float64(n)
	return hsv2rgb(h, 0.9, 0.8)
}

//takes hue (0-360), s and v (0-1), returns r,g,b (0-255)
func hsv2rgb(h, s, v float64) (uint8, uint8, uint8) {
	c := v * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g = c, x
	case hp < 2:
		r, g = x, c
	case hp < 3:
		g, b = c, x
	case hp < 4:
		g, b = x, c
	case hp < 5:
		r, b = x, c
	default:
		r, b = c, x
	}
	m := v - c
	return uint8(255 * (r + m)), uint8(255 * (g + m)), uint8(255 * (b + m))
}
