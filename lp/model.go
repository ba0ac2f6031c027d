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
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrViolated is returned by Verify when an assignment breaks a bound or a constraint.
var ErrViolated = errors.New("assignment violates the model")

// ErrMalformedModel holds the error when the coefficients of a model do not line up with its
// variables.
var ErrMalformedModel = errors.New("malformed model")

// Sense is the optimization direction of the objective.
type Sense int

const (
	// Minimize the objective.
	Minimize Sense = iota
	// Maximize the objective.
	Maximize
)

func (s Sense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Operator is the relation between the activity of a constraint and its right-hand side.
type Operator int

const (
	// Equal is `activity == rhs`.
	Equal Operator = iota
	// GreaterOrEqual is `activity >= rhs`.
	GreaterOrEqual
	// LessOrEqual is `activity <= rhs`.
	LessOrEqual
)

func (o Operator) String() string {
	switch o {
	case Equal:
		return "="
	case GreaterOrEqual:
		return ">="
	case LessOrEqual:
		return "<="
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// satisfied reports whether `activity op rhs` holds within `tol`.
func (o Operator) satisfied(activity, rhs, tol float64) bool {
	switch o {
	case Equal:
		return math.Abs(activity-rhs) <= tol
	case GreaterOrEqual:
		return activity >= rhs-tol
	case LessOrEqual:
		return activity <= rhs+tol
	}
	return false
}

// Variable is a continuous decision variable of a Model.
type Variable struct {
	Name   string
	Bounds Interval
}

// Constraint is a linear row of a Model. Coefficients are dense and positional: entry j is the
// coefficient of Model.Variables[j].
type Constraint struct {
	Name         string
	Coefficients []float64
	Op           Operator
	RHS          float64
}

// Model is the canonical description of a linear program:
//
//	min (or max)  Objective · x + ObjectiveOffset
//	s.t.          Constraints[k].Coefficients · x  Op  Constraints[k].RHS
//	              Variables[j].Bounds.Lower <= x[j] <= Variables[j].Bounds.Upper
//
// It holds numbers and names only; a Model is never mutated by a Solver.
type Model struct {
	Name            string
	Sense           Sense
	Variables       []Variable
	Objective       []float64
	ObjectiveOffset float64
	Constraints     []Constraint
}

// NumVariables returns the number of variables in the model.
func (m *Model) NumVariables() int {
	return len(m.Variables)
}

// NumConstraints returns the number of constraints in the model.
func (m *Model) NumConstraints() int {
	return len(m.Constraints)
}

// VariableIndex returns the position of the variable called `name`.
func (m *Model) VariableIndex(name string) (int, bool) {
	for j, v := range m.Variables {
		if v.Name == name {
			return j, true
		}
	}
	return 0, false
}

// Validate checks that the model is well formed: coefficient vectors match the number of
// variables, all numbers are finite (bounds may be infinite), bounds are non-empty and names
// are unique.
func (m *Model) Validate() error {
	n := len(m.Variables)
	if len(m.Objective) != n {
		return fmt.Errorf("objective has %d coefficients for %d variables: %w", len(m.Objective), n, ErrMalformedModel)
	}
	if !finite(m.ObjectiveOffset) {
		return fmt.Errorf("objective offset %v: %w", m.ObjectiveOffset, ErrNotFinite)
	}
	names := make(map[string]bool, n)
	for j, v := range m.Variables {
		if v.Name == "" {
			return fmt.Errorf("variable %d has no name: %w", j, ErrMalformedModel)
		}
		if names[v.Name] {
			return fmt.Errorf("variable %q: %w", v.Name, ErrDuplicateName)
		}
		names[v.Name] = true
		if v.Bounds.Empty() {
			return fmt.Errorf("variable %q has bounds %v: %w", v.Name, v.Bounds, ErrInvalidBounds)
		}
		if !finite(m.Objective[j]) {
			return fmt.Errorf("objective coefficient of %q is %v: %w", v.Name, m.Objective[j], ErrNotFinite)
		}
	}
	cnames := make(map[string]bool, len(m.Constraints))
	for k, c := range m.Constraints {
		if c.Name != "" {
			if cnames[c.Name] {
				return fmt.Errorf("constraint %q: %w", c.Name, ErrDuplicateName)
			}
			cnames[c.Name] = true
		}
		if len(c.Coefficients) != n {
			return fmt.Errorf("constraint %d has %d coefficients for %d variables: %w", k, len(c.Coefficients), n, ErrMalformedModel)
		}
		if c.Op < Equal || c.Op > LessOrEqual {
			return fmt.Errorf("constraint %d has operator %v: %w", k, c.Op, ErrMalformedModel)
		}
		if !finite(c.RHS) {
			return fmt.Errorf("constraint %d has right-hand side %v: %w", k, c.RHS, ErrNotFinite)
		}
		for j, a := range c.Coefficients {
			if !finite(a) {
				return fmt.Errorf("constraint %d coefficient %d is %v: %w", k, j, a, ErrNotFinite)
			}
		}
	}
	return nil
}

// Activities returns the activity `Coefficients · values` of every constraint.
func (m *Model) Activities(values []float64) []float64 {
	act := make([]float64, len(m.Constraints))
	for k, c := range m.Constraints {
		act[k] = floats.Dot(c.Coefficients, values)
	}
	return act
}

// ObjectiveValue returns the objective evaluated at `values`, offset included.
func (m *Model) ObjectiveValue(values []float64) float64 {
	return floats.Dot(m.Objective, values) + m.ObjectiveOffset
}

// Verify checks that `values` respects every variable bound and every constraint within the
// absolute tolerance `tol`. The first violation found is returned, wrapping ErrViolated.
func (m *Model) Verify(values []float64, tol float64) error {
	if len(values) != len(m.Variables) {
		return fmt.Errorf("got %d values for %d variables: %w", len(values), len(m.Variables), ErrMalformedModel)
	}
	for j, v := range m.Variables {
		if !v.Bounds.Contains(values[j], tol) {
			return fmt.Errorf("variable %q = %v outside %v: %w", v.Name, values[j], v.Bounds, ErrViolated)
		}
	}
	for k, act := range m.Activities(values) {
		c := m.Constraints[k]
		if !c.Op.satisfied(act, c.RHS, tol) {
			return fmt.Errorf("constraint %q: %v %v %v does not hold: %w", c.Name, act, c.Op, c.RHS, ErrViolated)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
