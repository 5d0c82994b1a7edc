/*
 * root.go, part of sile.
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

//Package cli implements the sdata command.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//app is what the subcommands share.
type app struct {
	v *viper.Viper
}

//config reads the configuration file and builds the Config.
func (a *app) config() (*Config, error) {
	if err := readConfigFile(a.v); err != nil {
		return nil, err
	}
	return buildConfig(a.v)
}

//NewRootCmd returns the sdata command, configured from v.
func NewRootCmd(v *viper.Viper) *cobra.Command {
	initViper(v)
	a := &app{v: v}
	root := &cobra.Command{
		Use:   "sdata",
		Short: "Inspect and convert electronic-structure data files",
		Long: `sdata reads the files understood by sile (ham, xyz, nc, h5, optionally
compressed as .gz or .zst): it can search them for keywords, convert
geometries between formats, list the contents of columnar files and plot
atomic positions.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSlice("comment", []string{"#"}, "Comment prefixes of text files")
	root.PersistentFlags().Bool("verbose", false, "Show warnings")
	root.PersistentFlags().Int("compression", 0, "Compression level (0-9) for columnar files written")
	v.BindPFlag("comment", root.PersistentFlags().Lookup("comment"))
	v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	v.BindPFlag("compression", root.PersistentFlags().Lookup("compression"))

	root.AddCommand(a.stepCmd(), a.geomCmd(), a.cdfCmd(), a.plotCmd())
	return root
}

//Execute runs sdata with the process arguments.
func Execute() error {
	return NewRootCmd(viper.New()).Execute()
}
