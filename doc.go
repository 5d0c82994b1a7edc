/*
 * doc.go, part of sile.
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

/*Package sile provides structured-file handles ("siles") for the text files written
and read by electronic-structure codes.

A Sile is a file name plus a declared mode (Read, Write or Append) and a comment
convention. The file is only open inside a With call:

	s := sile.New("RUN.out.gz", sile.Read)
	err := s.With(func(s *sile.Sile) error {
		found, line, err := s.StepTo(sile.Key("Total energy"), false)
		...
	})

and it is closed whatever way the function returns. Files ending in .gz or .zst are
decompressed (and compressed, when writing) transparently.

The keyword search (StepTo, StepEither) is the building block for the format parsers
in the subpackages:

	ham   the plain-text tight-binding Hamiltonian format
	xyz   XYZ coordinates
	cdf   NetCDF4/HDF5 columnar files
	geom  the geometry those formats read and write

Mode checks (RaiseRead, RaiseWrite) run before anything touches the file, and fail
with an error matching ErrModeViolation. The end of a file is never an error: ReadLine
returns an empty string and the searches report that nothing was found.
*/
package sile
