/*
 * config.go, part of sile.
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
	"log"

	"github.com/spf13/viper"
)

//Config holds the settings of sdata, from defaults, sdata.yaml,
//SDATA_* environment variables and flags, in increasing priority.
type Config struct {
	Comment     []string
	IgnoreCase  bool
	Compression int
	Verbose     bool
}

//setDefaults sets the default values in v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("comment", []string{"#"})
	v.SetDefault("ignore_case", false)
	v.SetDefault("compression", 0)
	v.SetDefault("verbose", false)
}

//initViper prepares v to read sdata.yaml from the working directory or $HOME
//and SDATA_ variables from the environment.
func initViper(v *viper.Viper) {
	setDefaults(v)
	v.SetConfigName("sdata")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	v.SetEnvPrefix("SDATA")
	v.AutomaticEnv()
}

//readConfigFile reads the configuration file, if there is one.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	var nf viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &nf) {
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

//buildConfig builds the Config from v.
func buildConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Comment:     v.GetStringSlice("comment"),
		IgnoreCase:  v.GetBool("ignore_case"),
		Compression: v.GetInt("compression"),
		Verbose:     v.GetBool("verbose"),
	}
	if cfg.Compression < 0 || cfg.Compression > 9 {
		return nil, fmt.Errorf("compression level must be between 0 and 9, got %d", cfg.Compression)
	}
	return cfg, nil
}

//logger returns the logger for the siles. Warnings are only shown
//in verbose mode.
func (c *Config) logger(w io.Writer) *log.Logger {
	if !c.Verbose {
		w = io.Discard
	}
	return log.New(w, "sdata: ", 0)
}
