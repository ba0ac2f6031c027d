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

package lp

import (
	"errors"
	"fmt"
)

// ErrMissingValue holds the error when a response has no value for a variable of the model.
var ErrMissingValue = errors.New("response has no value for variable")

// Status is the outcome of a solve.
type Status int

const (
	// NotSolved is the zero Status; no solver produced the response.
	NotSolved Status = iota
	// Optimal means Values holds a globally optimal assignment.
	Optimal
	// Infeasible means no assignment satisfies all constraints and bounds.
	Infeasible
	// Unbounded means the objective can be improved without limit.
	Unbounded
	// SolverFailure means the backend gave up; Reason says why.
	SolverFailure
)

func (s Status) String() string {
	switch s {
	case NotSolved:
		return "NOT_SOLVED"
	case Optimal:
		return "OPTIMAL"
	case Infeasible:
		return "INFEASIBLE"
	case Unbounded:
		return "UNBOUNDED"
	case SolverFailure:
		return "SOLVER_FAILURE"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Response is what a Solver returns for a Model.
type Response struct {
	Status Status
	// ObjectiveValue is only meaningful when Status is Optimal.
	ObjectiveValue float64
	// Values maps variable names to their value. Only populated when Status is Optimal.
	Values map[string]float64
	// Reason is the backend-provided explanation of a SolverFailure.
	Reason string
}

// Value returns the value of the variable called `name`.
func (r *Response) Value(name string) (float64, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// Vector returns the values of the variables of `m`, in model order.
func (r *Response) Vector(m *Model) ([]float64, error) {
	x := make([]float64, len(m.Variables))
	for j, v := range m.Variables {
		val, ok := r.Value(v.Name)
		if !ok {
			return nil, fmt.Errorf("variable %q: %w", v.Name, ErrMissingValue)
		}
		x[j] = val
	}
	return x, nil
}

// Solver solves a Model. The returned error is non-nil only when the solve could not be
// carried out at all; infeasible and unbounded programs and backend failures are reported
// through Response.Status.
//
// Implementations must not modify the model and must be safe for concurrent use.
type Solver interface {
	Solve(m *Model) (*Response, error)
}

// SolverFunc adapts an ordinary function to the Solver interface.
type SolverFunc func(m *Model) (*Response, error)

// Solve calls f(m).
func (f SolverFunc) Solve(m *Model) (*Response, error) {
	return f(m)
}
