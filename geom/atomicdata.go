/*
 * atomicdata.go, part of sile.
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

package geom

import (
	"fmt"
	"strconv"
	"strings"
)

//Element symbols ordered by atomic number. symbols[0] is a placeholder
//for ghost/unknown atoms.
var symbols = [...]string{"X",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
}

var symbolZ map[string]int

func init() {
	symbolZ = make(map[string]int, len(symbols))
	for i, s := range symbols {
		symbolZ[strings.ToLower(s)] = i
	}
}

//A map for assigning mass to elements.
//Only the common elements are present, Mass returns 0 for the rest.
var symbolMass = map[string]float64{
	"H":  1.008,
	"B":  10.81,
	"C":  12.01,
	"N":  14.01,
	"O":  16.00,
	"F":  18.998,
	"Na": 22.99,
	"Mg": 24.30,
	"Al": 26.98,
	"Si": 28.08,
	"P":  30.97,
	"S":  32.06,
	"Cl": 35.45,
	"K":  39.1,
	"Ca": 40.08,
	"Ti": 47.87,
	"Cr": 51.996,
	"Mn": 54.94,
	"Fe": 55.84,
	"Co": 58.93,
	"Ni": 58.69,
	"Cu": 63.55,
	"Zn": 65.38,
	"Ga": 69.72,
	"Ge": 72.63,
	"As": 74.92,
	"Se": 78.96,
	"Br": 79.904,
	"Mo": 95.95,
	"Ag": 107.87,
	"I":  126.90,
	"W":  183.84,
	"Pt": 195.08,
	"Au": 196.97,
	"Be": 9.012,
}

//Symbol returns the element symbol for the atomic number z, or "X" if z is unknown.
//Negative numbers are ghost atoms and also give "X".
func Symbol(z int) string {
	if z <= 0 || z >= len(symbols) {
		return "X"
	}
	return symbols[z]
}

//Z returns the atomic number for an element symbol (case-insensitive).
//It also accepts the number itself, as a string.
func Z(symbol string) (int, error) {
	symbol = strings.TrimSpace(symbol)
	if z, err := strconv.Atoi(symbol); err == nil {
		return z, nil
	}
	if z, ok := symbolZ[strings.ToLower(symbol)]; ok && z > 0 {
		return z, nil
	}
	return 0, fmt.Errorf("unknown element %q", symbol)
}

//Mass returns the standard atomic mass of the element with number z, 0 if unknown.
func Mass(z int) float64 {
	return symbolMass[Symbol(z)]
}
