/*
 * keyword.go, part of sile.
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

import "strings"

//Keyword is a set of candidate substrings. A line matches the keyword
//if any of the candidates is a substring of it.
//A Keyword with no candidates behaves like the empty string,
//so it matches every line.
type Keyword []string

//Key builds a Keyword from one or more candidates.
func Key(candidates ...string) Keyword {
	return Keyword(candidates)
}

//Keys builds a list of single-candidate keywords, for StepEither.
func Keys(patterns ...string) []Keyword {
	ret := make([]Keyword, len(patterns))
	for i, v := range patterns {
		ret[i] = Key(v)
	}
	return ret
}

//lower returns a lower-cased copy of the keyword.
func (K Keyword) lower() Keyword {
	ret := make(Keyword, len(K))
	for i, v := range K {
		ret[i] = strings.ToLower(v)
	}
	return ret
}

//In reports whether the keyword is in line. Plain substring search.
func (K Keyword) In(line string, caseSensitive bool) bool {
	if len(K) == 0 {
		return true
	}
	if !caseSensitive {
		line = strings.ToLower(line)
		K = K.lower()
	}
	for _, k := range K {
		if strings.Contains(line, k) {
			return true
		}
	}
	return false
}

//Match is the result of a keyword search. Index is the position, in the list of
//patterns given, of the first pattern that matched, or -1. StepTo always
//reports 0 when something is found.
type Match struct {
	Found bool
	Index int
	Line  string
}

//firstMatch returns the smallest index i for which keywords[i] is in line, or -1.
func firstMatch(line string, keywords []Keyword, caseSensitive bool) int {
	for i, k := range keywords {
		if k.In(line, caseSensitive) {
			return i
		}
	}
	return -1
}
