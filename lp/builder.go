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

// Package lp offers a solver-agnostic description of continuous linear programs.
//
// The `Builder` struct creates a `Model` and provides helper methods for adding variables,
// constraints and the objective to it.
// The `Var` struct is a reference to a variable of the model under construction.
// The `LinearExpr` struct provides helper methods for creating constraints and the objective
// from expressions with many variables and coefficients.
// A `Solver` turns a `Model` into a `Response`.
package lp

import (
	"errors"
	"fmt"

	log "github.com/golang/glog"
)

var (
	// ErrMixedModels holds the error when elements added to a model are different.
	ErrMixedModels = errors.New("elements are not part of the same model")
	// ErrInvalidBounds holds the error when a variable is given an empty domain.
	ErrInvalidBounds = errors.New("invalid bounds")
	// ErrDuplicateName holds the error when two variables or two constraints share a name.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrNotFinite holds the error when a coefficient or right-hand side is NaN or infinite.
	ErrNotFinite = errors.New("value is not finite")
)

type (
	// VarIndex is the index of a variable in the model.
	VarIndex int32
	// ConstrIndex is the index of a constraint in the model.
	ConstrIndex int32
)

// LinearArgument provides an interface for Var and LinearExpr.
type LinearArgument interface {
	addToLinearExpr(e *LinearExpr, c float64)
}

// LinearExpr is a container for a linear expression.
type LinearExpr struct {
	varCoeffs []varCoeff
	offset    float64
}

type varCoeff struct {
	v     Var
	coeff float64
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates and returns a LinearExpr containing the constant `c`.
func NewConstant(c float64) *LinearExpr {
	return &LinearExpr{offset: c}
}

// Add adds the linear argument term to the LinearExpr and returns itself.
func (l *LinearExpr) Add(la LinearArgument) *LinearExpr {
	return l.AddTerm(la, 1)
}

// AddConstant adds the constant to the LinearExpr and returns itself.
func (l *LinearExpr) AddConstant(c float64) *LinearExpr {
	l.offset += c
	return l
}

// AddTerm adds the linear argument term with the given coefficient to the LinearExpr and
// returns itself.
func (l *LinearExpr) AddTerm(la LinearArgument, coeff float64) *LinearExpr {
	la.addToLinearExpr(l, coeff)
	return l
}

// AddSum adds the sum of the linear arguments to the LinearExpr and returns itself.
func (l *LinearExpr) AddSum(las ...LinearArgument) *LinearExpr {
	for _, la := range las {
		l.Add(la)
	}
	return l
}

// AddWeightedSum adds the linear arguments with the corresponding coefficients to the
// LinearExpr and returns itself.
func (l *LinearExpr) AddWeightedSum(las []LinearArgument, coeffs []float64) *LinearExpr {
	if len(coeffs) != len(las) {
		log.Fatalf("las and coeffs must be the same length: %v != %v", len(las), len(coeffs))
	}
	for i, la := range las {
		l.AddTerm(la, coeffs[i])
	}
	return l
}

// Offset returns the constant part of the expression.
func (l *LinearExpr) Offset() float64 {
	return l.offset
}

func (l *LinearExpr) addToLinearExpr(e *LinearExpr, c float64) {
	for _, vc := range l.varCoeffs {
		e.varCoeffs = append(e.varCoeffs, varCoeff{v: vc.v, coeff: vc.coeff * c})
	}
	e.offset += l.offset * c
}

// Var is a reference to a continuous variable in the model.
type Var struct {
	ind VarIndex
	b   *Builder
}

// Name returns the name of the variable.
func (v Var) Name() string {
	return v.b.model.Variables[v.ind].Name
}

// Bounds returns the domain of the variable.
func (v Var) Bounds() Interval {
	return v.b.model.Variables[v.ind].Bounds
}

// Index returns the index of the variable.
func (v Var) Index() VarIndex {
	return v.ind
}

// WithName sets the name of the variable.
func (v Var) WithName(s string) Var {
	v.b.model.Variables[v.ind].Name = s
	return v
}

func (v Var) addToLinearExpr(e *LinearExpr, c float64) {
	e.varCoeffs = append(e.varCoeffs, varCoeff{v: v, coeff: c})
}

// Constr is a reference to a constraint in the model.
type Constr struct {
	ind ConstrIndex
	b   *Builder
}

// WithName sets the name of the constraint.
func (c Constr) WithName(s string) Constr {
	c.b.model.Constraints[c.ind].Name = s
	return c
}

// Name returns the name of the constraint.
func (c Constr) Name() string {
	return c.b.model.Constraints[c.ind].Name
}

// Index returns the index of the constraint.
func (c Constr) Index() ConstrIndex {
	return c.ind
}

// Builder creates a Model incrementally.
type Builder struct {
	model *Model
	// The first and only the first error is reported in Model.
	err error
}

// NewBuilder creates and returns a new Builder for a model called `name`.
func NewBuilder(name string) *Builder {
	return &Builder{model: &Model{Name: name}}
}

// setErrorf records an error wrapping `sentinel` if none was recorded before.
func (b *Builder) setErrorf(sentinel error, format string, a ...any) {
	args := make([]any, len(a)+1)
	copy(args, a)
	args[len(a)] = sentinel
	err := fmt.Errorf(format+": %w", args...)
	log.Errorf("%v; use `-log_backtrace_at` flag to get the error stack", err)
	if b.err == nil {
		b.err = err
	}
}

// checkSameModelAndSetErrorf returns true if `b` and `b2` point to the same Builder.
// If false, an error with the error message `format` is set on `b`.
func (b *Builder) checkSameModelAndSetErrorf(b2 *Builder, format string, a ...any) bool {
	if b == b2 {
		return true
	}
	b.setErrorf(ErrMixedModels, format, a...)
	return false
}

// NewVar creates a new continuous variable with domain `[lb, ub]`. Either bound may be
// infinite.
func (b *Builder) NewVar(lb, ub float64) Var {
	d := Interval{lb, ub}
	ind := VarIndex(len(b.model.Variables))
	if d.Empty() {
		b.setErrorf(ErrInvalidBounds, "variable %d has domain %v", ind, d)
	}
	b.model.Variables = append(b.model.Variables, Variable{Bounds: d})
	return Var{ind: ind, b: b}
}

// NewNonNegativeVar creates a new variable with domain `[0, +inf)`.
func (b *Builder) NewNonNegativeVar() Var {
	d := NonNegative()
	return b.NewVar(d.Lower, d.Upper)
}

// dense returns the coefficients of `le` indexed by variable. The slice is as long as the
// number of variables created so far; Model pads it if more variables are added later.
func (b *Builder) dense(le *LinearExpr, what string) []float64 {
	coeffs := make([]float64, len(b.model.Variables))
	for _, vc := range le.varCoeffs {
		if !b.checkSameModelAndSetErrorf(vc.v.b, "variable %v added to %s", vc.v.Index(), what) {
			continue
		}
		if !finite(vc.coeff) {
			b.setErrorf(ErrNotFinite, "coefficient %v of variable %v in %s", vc.coeff, vc.v.Index(), what)
			continue
		}
		coeffs[vc.v.ind] += vc.coeff
	}
	return coeffs
}

// addLinearConstraint adds the constraint `le op 0`. The constant offset of `le` is moved to
// the right-hand side.
func (b *Builder) addLinearConstraint(le *LinearExpr, op Operator) Constr {
	ind := ConstrIndex(len(b.model.Constraints))
	what := fmt.Sprintf("constraint %d", ind)
	coeffs := b.dense(le, what)
	rhs := -le.offset
	if !finite(rhs) {
		b.setErrorf(ErrNotFinite, "right-hand side %v of %s", rhs, what)
	}
	b.model.Constraints = append(b.model.Constraints, Constraint{
		Coefficients: coeffs,
		Op:           op,
		RHS:          rhs,
	})
	return Constr{ind: ind, b: b}
}

func difference(lhs, rhs LinearArgument) *LinearExpr {
	return NewLinearExpr().Add(lhs).AddTerm(rhs, -1)
}

// AddEquality adds the linear constraint `lhs == rhs`.
func (b *Builder) AddEquality(lhs, rhs LinearArgument) Constr {
	return b.addLinearConstraint(difference(lhs, rhs), Equal)
}

// AddGreaterOrEqual adds the linear constraint `lhs >= rhs`.
func (b *Builder) AddGreaterOrEqual(lhs, rhs LinearArgument) Constr {
	return b.addLinearConstraint(difference(lhs, rhs), GreaterOrEqual)
}

// AddLessOrEqual adds the linear constraint `lhs <= rhs`.
func (b *Builder) AddLessOrEqual(lhs, rhs LinearArgument) Constr {
	return b.addLinearConstraint(difference(lhs, rhs), LessOrEqual)
}

func (b *Builder) setObjective(obj LinearArgument, s Sense) {
	le := NewLinearExpr().Add(obj)
	b.model.Objective = b.dense(le, "the objective")
	b.model.ObjectiveOffset = le.offset
	b.model.Sense = s
}

// Minimize sets the objective of the model to minimize `obj`.
func (b *Builder) Minimize(obj LinearArgument) {
	b.setObjective(obj, Minimize)
}

// Maximize sets the objective of the model to maximize `obj`.
func (b *Builder) Maximize(obj LinearArgument) {
	b.setObjective(obj, Maximize)
}

// Model returns the built model. Variables without a name are called `x<index>` and
// constraints without a name `c<index>`. The model returned is owned by the Builder; later
// calls to the Builder modify it.
//
// Model returns an error when invalid parameters have been used during model building (e.g.
// passing variables from other builders) or when the resulting model does not validate.
func (b *Builder) Model() (*Model, error) {
	if b.err != nil {
		return nil, b.err
	}
	m := b.model
	n := len(m.Variables)
	for j := range m.Variables {
		if m.Variables[j].Name == "" {
			m.Variables[j].Name = fmt.Sprintf("x%d", j)
		}
	}
	for k := range m.Constraints {
		if m.Constraints[k].Name == "" {
			m.Constraints[k].Name = fmt.Sprintf("c%d", k)
		}
		m.Constraints[k].Coefficients = pad(m.Constraints[k].Coefficients, n)
	}
	m.Objective = pad(m.Objective, n)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func pad(s []float64, n int) []float64 {
	if len(s) >= n {
		return s
	}
	return append(s, make([]float64, n-len(s))...)
}
