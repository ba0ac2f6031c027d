// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package simplex

import (
	"math"

	"github.com/agroformula/feedmix/lp"
)

// signedCol is a standard-form column contributing `sign * x[col]` to a model variable.
type signedCol struct {
	col  int
	sign float64
}

// varMap recovers a model variable from standard-form columns:
// value = offset + sum(sign * x[col]).
type varMap struct {
	offset float64
	cols   []signedCol
}

// standardForm is the program
//
//	minimize   c · x
//	s.t.       A x = b
//	           x >= 0
//
// equivalent to a general lp.Model. Rows of A are kept as dense slices until the program is
// handed to gonum.
type standardForm struct {
	c    []float64
	rows [][]float64
	b    []float64
	vars []varMap
	// infeasible is set when a row reduces to `0 = b` with b != 0.
	infeasible bool
	// unbounded is set when a column appears in no row and improves the objective.
	unbounded bool
}

func (sf *standardForm) newColumn(cost float64) int {
	sf.c = append(sf.c, cost)
	for i := range sf.rows {
		sf.rows[i] = append(sf.rows[i], 0)
	}
	return len(sf.c) - 1
}

func (sf *standardForm) newRow(rhs float64) int {
	sf.rows = append(sf.rows, make([]float64, len(sf.c)))
	sf.b = append(sf.b, rhs)
	return len(sf.rows) - 1
}

// toStandardForm converts `m`. Finite lower bounds are shifted to zero, variables with only an
// upper bound are mirrored, free variables are split in two columns. Each finite upper bound
// becomes a row with its own slack column and each inequality gets a slack (<=) or surplus
// (>=) column.
func toStandardForm(m *lp.Model, zeroTol float64) *standardForm {
	sense := 1.0
	if m.Sense == lp.Maximize {
		sense = -1
	}
	sf := &standardForm{vars: make([]varMap, len(m.Variables))}

	type upperRow struct {
		col int
		ub  float64
	}
	var uppers []upperRow
	for j, v := range m.Variables {
		lb, ub := v.Bounds.Lower, v.Bounds.Upper
		cost := sense * m.Objective[j]
		switch {
		case !math.IsInf(lb, -1):
			col := sf.newColumn(cost)
			sf.vars[j] = varMap{offset: lb, cols: []signedCol{{col, 1}}}
			if !math.IsInf(ub, 1) {
				uppers = append(uppers, upperRow{col, ub - lb})
			}
		case !math.IsInf(ub, 1):
			col := sf.newColumn(-cost)
			sf.vars[j] = varMap{offset: ub, cols: []signedCol{{col, -1}}}
		default:
			pos := sf.newColumn(cost)
			neg := sf.newColumn(-cost)
			sf.vars[j] = varMap{cols: []signedCol{{pos, 1}, {neg, -1}}}
		}
	}

	for _, c := range m.Constraints {
		rhs := c.RHS
		for j, a := range c.Coefficients {
			rhs -= a * sf.vars[j].offset
		}
		row := sf.newRow(rhs)
		for j, a := range c.Coefficients {
			for _, sc := range sf.vars[j].cols {
				sf.rows[row][sc.col] += a * sc.sign
			}
		}
		switch c.Op {
		case lp.LessOrEqual:
			sf.rows[row][sf.newColumn(0)] = 1
		case lp.GreaterOrEqual:
			sf.rows[row][sf.newColumn(0)] = -1
		}
	}
	for _, u := range uppers {
		row := sf.newRow(u.ub)
		sf.rows[row][u.col] = 1
		sf.rows[row][sf.newColumn(0)] = 1
	}

	sf.normalize(zeroTol)
	return sf
}

// normalize drops rows that are identically zero, flips rows with a negative right-hand side
// and drops columns that appear in no row. gonum rejects zero rows and columns.
func (sf *standardForm) normalize(zeroTol float64) {
	var rows [][]float64
	var b []float64
	for i, row := range sf.rows {
		zero := true
		for _, a := range row {
			if a != 0 {
				zero = false
				break
			}
		}
		if zero {
			if math.Abs(sf.b[i]) > zeroTol {
				sf.infeasible = true
			}
			continue
		}
		if sf.b[i] < 0 {
			for j := range row {
				row[j] = -row[j]
			}
			sf.b[i] = -sf.b[i]
		}
		rows = append(rows, row)
		b = append(b, sf.b[i])
	}
	sf.rows, sf.b = rows, b

	keep := make([]int, len(sf.c))
	var c []float64
	for j := range sf.c {
		used := false
		for _, row := range sf.rows {
			if row[j] != 0 {
				used = true
				break
			}
		}
		if !used {
			// An unused column sits at zero unless it improves the objective forever.
			if sf.c[j] < 0 {
				sf.unbounded = true
			}
			keep[j] = -1
			continue
		}
		keep[j] = len(c)
		c = append(c, sf.c[j])
	}
	for i, row := range sf.rows {
		compact := make([]float64, 0, len(c))
		for j, a := range row {
			if keep[j] >= 0 {
				compact = append(compact, a)
			}
		}
		sf.rows[i] = compact
	}
	for j := range sf.vars {
		var cols []signedCol
		for _, sc := range sf.vars[j].cols {
			if keep[sc.col] >= 0 {
				cols = append(cols, signedCol{keep[sc.col], sc.sign})
			}
		}
		sf.vars[j].cols = cols
	}
	sf.c = c
}

// dims returns the number of rows and columns of A.
func (sf *standardForm) dims() (int, int) {
	return len(sf.rows), len(sf.c)
}

// flat returns A in row-major order.
func (sf *standardForm) flat() []float64 {
	_, n := sf.dims()
	data := make([]float64, 0, len(sf.rows)*n)
	for _, row := range sf.rows {
		data = append(data, row...)
	}
	return data
}

// recover maps a standard-form solution back to the model variables.
func (sf *standardForm) recover(x []float64) []float64 {
	values := make([]float64, len(sf.vars))
	for j, vm := range sf.vars {
		values[j] = vm.offset
		for _, sc := range vm.cols {
			values[j] += sc.sign * x[sc.col]
		}
	}
	return values
}
