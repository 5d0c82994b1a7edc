/*
 * commands.go, part of sile.
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
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmera/sile"
	"github.com/rmera/sile/cdf"
	"github.com/rmera/sile/geom"
)

//ErrNotFound is returned by step when no line matches.
var ErrNotFound = errors.New("keyword not found")

func (a *app) stepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step FILE KEYWORD...",
		Short: "Print the first line containing any of the keywords",
		Long: `step prints the first non-comment line of FILE containing any of the
keywords. With --either, it also prints the index of the keyword that
matched. With --all, it keeps searching and prints every match.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			either, _ := cmd.Flags().GetBool("either")
			all, _ := cmd.Flags().GetBool("all")
			l := cfg.logger(cmd.ErrOrStderr())
			S := sile.New(args[0], sile.Read, sile.WithComment(cfg.Comment...), sile.WithLogger(l))
			return S.With(func(S *sile.Sile) error {
				return step(S, cmd.OutOrStdout(), args[1:], !cfg.IgnoreCase, either, all)
			})
		},
	}
	cmd.Flags().Bool("ignore-case", false, "Case-insensitive search")
	cmd.Flags().Bool("either", false, "Treat each keyword separately and report which one matched")
	cmd.Flags().Bool("all", false, "Print all the matching lines")
	a.v.BindPFlag("ignore_case", cmd.Flags().Lookup("ignore-case"))
	return cmd
}

func step(S *sile.Sile, out io.Writer, keys []string, caseSensitive, either, all bool) error {
	found := false
	for {
		var m sile.Match
		var err error
		if either {
			m, err = S.StepEither(sile.Keys(keys...), caseSensitive)
		} else {
			m.Found, m.Line, err = S.StepTo(sile.Key(keys...), caseSensitive)
		}
		if err != nil {
			return err
		}
		if !m.Found {
			break
		}
		found = true
		line := strings.TrimRight(m.Line, "\r\n")
		if either {
			fmt.Fprintf(out, "%d\t%s\n", m.Index, line)
		} else {
			fmt.Fprintln(out, line)
		}
		if !all {
			break
		}
	}
	if !found {
		return sile.NewError(fmt.Sprintf("%s not found", strings.Join(keys, ", ")), S, ErrNotFound)
	}
	return nil
}

func (a *app) geomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geom IN",
		Short: "Summarize a geometry or convert it to another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
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
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				summary(cmd.OutOrStdout(), G)
				return nil
			}
			w, err := geometryWriter(R, out)
			if err != nil {
				return err
			}
			return w.WriteGeometry(G)
		},
	}
	cmd.Flags().String("out", "", "Write the geometry to this file instead of summarizing it")
	return cmd
}

func summary(w io.Writer, G *geom.Geometry) {
	fmt.Fprintf(w, "atoms: %d\norbitals: %d\nsupercells: %d %d %d\nvolume: %.6f\nmass: %.4f\n",
		G.Len(), G.NO(), G.NSC[0], G.NSC[1], G.NSC[2], G.Volume(), G.Mass())
	counts := make(map[string]int)
	var order []string
	for _, at := range G.Atoms {
		s := at.Symbol()
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}
	for _, s := range order {
		fmt.Fprintf(w, "%s: %d\n", s, counts[s])
	}
}

func (a *app) cdfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cdf FILE",
		Short: "List the groups, dimensions and variables of a columnar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			S := cdf.New(args[0], sile.Read, cdf.WithLogger(cfg.logger(cmd.ErrOrStderr())))
			return S.With(func(S *cdf.Sile) error {
				root, err := S.Root()
				if err != nil {
					return err
				}
				listGroup(cmd.OutOrStdout(), root)
				return nil
			})
		},
	}
}

func listGroup(w io.Writer, g *cdf.Group) {
	fmt.Fprintf(w, "group %s\n", g.Path())
	for _, d := range g.Dimensions() {
		fmt.Fprintf(w, "  dim %s = %d\n", d.Name, d.Len)
	}
	for _, v := range g.Variables() {
		fmt.Fprintf(w, "  var %v %s(%s)\n", v.Type, v.Name, strings.Join(v.Dims, ", "))
	}
	for _, name := range g.Groups() {
		if sub, ok := g.Group(name); ok {
			listGroup(w, sub)
		}
	}
}
