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

// Package simplex is an lp.Solver backed by gonum's standard-form simplex.
package simplex

import (
	"errors"
	"fmt"

	log "github.com/golang/glog"
	"gonum.org/v1/gonum/mat"
	golp "gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/agroformula/feedmix/lp"
)

const (
	// DefaultTolerance is the reduced-cost tolerance at which the simplex stops.
	DefaultTolerance = 1e-10
	// feasibilityTol absorbs rounding noise in exactly determined programs and zero rows.
	feasibilityTol = 1e-9
)

// Option configures a Solver.
type Option func(*Solver)

// WithTolerance sets the reduced-cost tolerance of the simplex.
func WithTolerance(tol float64) Option {
	return func(s *Solver) {
		s.tol = tol
	}
}

// Solver solves continuous linear programs with gonum's simplex. A Solver is immutable and
// safe for concurrent use.
type Solver struct {
	tol float64
}

// New returns a Solver configured with `opts`.
func New(opts ...Option) *Solver {
	s := &Solver{tol: DefaultTolerance}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Solve solves `m`. An error is returned only when `m` is malformed.
func (s *Solver) Solve(m *lp.Model) (*lp.Response, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("simplex: %w", err)
	}
	sf := toStandardForm(m, feasibilityTol)
	rows, cols := sf.dims()
	log.V(2).Infof("simplex: model %q has %d variables, %d constraints; standard form is %dx%d",
		m.Name, m.NumVariables(), m.NumConstraints(), rows, cols)

	switch {
	case sf.infeasible:
		return &lp.Response{Status: lp.Infeasible}, nil
	case sf.unbounded:
		return &lp.Response{Status: lp.Unbounded}, nil
	}

	var x []float64
	var err error
	switch {
	case rows == 0:
		x = make([]float64, cols)
	case rows > cols:
		return &lp.Response{
			Status: lp.SolverFailure,
			Reason: fmt.Sprintf("standard form has more rows (%d) than columns (%d)", rows, cols),
		}, nil
	case rows == cols:
		x, err = solveSquare(sf)
	default:
		x, err = s.simplex(sf)
	}
	switch {
	case errors.Is(err, golp.ErrInfeasible):
		return &lp.Response{Status: lp.Infeasible}, nil
	case errors.Is(err, golp.ErrUnbounded):
		return &lp.Response{Status: lp.Unbounded}, nil
	case err != nil:
		return &lp.Response{Status: lp.SolverFailure, Reason: err.Error()}, nil
	}

	values := sf.recover(x)
	res := &lp.Response{
		Status:         lp.Optimal,
		ObjectiveValue: m.ObjectiveValue(values),
		Values:         make(map[string]float64, len(values)),
	}
	for j, v := range m.Variables {
		res.Values[v.Name] = values[j]
	}
	log.V(2).Infof("simplex: model %q solved, objective %v", m.Name, res.ObjectiveValue)
	return res, nil
}

// simplex runs gonum's two-phase simplex. gonum panics on shape errors; those are turned into
// errors so a malformed conversion surfaces as a solver failure.
func (s *Solver) simplex(sf *standardForm) (x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			x, err = nil, fmt.Errorf("gonum simplex panicked: %v", r)
		}
	}()
	rows, cols := sf.dims()
	a := mat.NewDense(rows, cols, sf.flat())
	_, x, err = golp.Simplex(sf.c, a, sf.b, s.tol, nil)
	if err != nil {
		return nil, err
	}
	return x, nil
}

// solveSquare handles an exactly determined standard form. gonum solves these with a plain
// linear solve and rejects any negative component, including rounding noise around zero.
func solveSquare(sf *standardForm) ([]float64, error) {
	n := len(sf.c)
	a := mat.NewDense(n, n, sf.flat())
	var x mat.VecDense
	if err := x.SolveVec(a, mat.NewVecDense(n, sf.b)); err != nil {
		return nil, golp.ErrSingular
	}
	out := make([]float64, n)
	for i := range out {
		v := x.AtVec(i)
		if v < -feasibilityTol {
			return nil, golp.ErrInfeasible
		}
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out, nil
}
