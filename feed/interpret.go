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

package feed

import (
	"fmt"
	"math"

	log "github.com/golang/glog"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"github.com/agroformula/feedmix/lp"
)

const (
	// DefaultDisplayPrecision is the number of decimal places of rounded shares.
	DefaultDisplayPrecision = 2
	// DefaultCostPrecision is the number of decimal places of the rounded unit cost.
	DefaultCostPrecision = 3
	// DefaultTolerance is the relative tolerance of the consistency checks.
	DefaultTolerance = 1e-6
)

// Share is the proportion of one ingredient in the blend.
type Share struct {
	Ingredient string
	// Percent is the exact share returned by the solver.
	Percent float64
	// Rounded is Percent rounded to the display precision.
	Rounded decimal.Decimal
}

// NutrientLevel is the concentration of a nutrient in the blend.
type NutrientLevel struct {
	Nutrient Nutrient
	Achieved float64
	// Required is the minimum; only meaningful when HasRequirement is set.
	Required       float64
	HasRequirement bool
}

// Result is the interpreted blend.
type Result struct {
	Name string
	// Shares follow the ingredient order of the formulation.
	Shares []Share
	// Levels lists every nutrient of the formulation, see Formulation.Nutrients.
	Levels []NutrientLevel
	// UnitCost is the cost of one unit of mass of the blend, from the exact shares.
	UnitCost        float64
	RoundedUnitCost decimal.Decimal
	// Objective is the objective value reported by the solver (cost of 100 units of mass).
	Objective float64
}

// Share returns the share of the ingredient called `name`.
func (r *Result) Share(name string) (Share, bool) {
	for _, s := range r.Shares {
		if s.Ingredient == name {
			return s, true
		}
	}
	return Share{}, false
}

// Level returns the level of nutrient `n`.
func (r *Result) Level(n Nutrient) (NutrientLevel, bool) {
	for _, l := range r.Levels {
		if l.Nutrient == n {
			return l, true
		}
	}
	return NutrientLevel{}, false
}

type options struct {
	precision     int32
	costPrecision int32
	tolerance     float64
}

func defaultOptions() options {
	return options{
		precision:     DefaultDisplayPrecision,
		costPrecision: DefaultCostPrecision,
		tolerance:     DefaultTolerance,
	}
}

// Option configures an Interpreter or Formulate.
type Option func(*options)

// WithDisplayPrecision sets the number of decimal places of Share.Rounded.
func WithDisplayPrecision(places int32) Option {
	return func(o *options) {
		o.precision = places
	}
}

// WithCostPrecision sets the number of decimal places of Result.RoundedUnitCost.
func WithCostPrecision(places int32) Option {
	return func(o *options) {
		o.costPrecision = places
	}
}

// WithTolerance sets the relative tolerance used to check the solver's answer.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// Interpreter turns solver responses into Results.
type Interpreter struct {
	opts options
}

// NewInterpreter returns an Interpreter configured with `opts`.
func NewInterpreter(opts ...Option) *Interpreter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Interpreter{opts: o}
}

// slack returns the tolerance allowed around `target`.
func (in *Interpreter) slack(target float64) float64 {
	return in.opts.tolerance * math.Max(1, math.Abs(target))
}

// Interpret reads the shares of `m` out of `res` and recomputes the blend from the formulation
// tables. A response that is not optimal is turned into the matching error. The recomputed
// blend must complete to 100 %, keep every share within its bounds, meet every requirement and
// cost what the solver reported, otherwise ErrSolverConsistency is returned.
func (in *Interpreter) Interpret(m *Model, res *lp.Response) (*Result, error) {
	f := m.Formulation
	if err := statusError(f.Name, res); err != nil {
		return nil, err
	}

	shares := make([]float64, len(f.Ingredients))
	for i, ing := range f.Ingredients {
		v, ok := res.Value(m.ShareVariable(i))
		if !ok {
			return nil, fmt.Errorf("ingredient %q (variable %s): %w", ing.Name, m.ShareVariable(i), ErrMissingVariableValue)
		}
		shares[i] = v
	}

	if total := floats.Sum(shares); math.Abs(total-TotalShare) > in.slack(TotalShare) {
		return nil, in.inconsistent(f, "shares sum to %v, want %v", total, TotalShare)
	}
	for i, s := range shares {
		if s < -in.slack(0) || s > TotalShare+in.slack(TotalShare) {
			return nil, in.inconsistent(f, "share of %q is %v, outside [0, %v]", f.Ingredients[i].Name, s, TotalShare)
		}
	}

	result := &Result{Name: f.Name, Objective: res.ObjectiveValue}
	for _, n := range f.Nutrients() {
		values := make([]float64, len(f.Ingredients))
		for i, ing := range f.Ingredients {
			values[i], _ = ing.Value(n)
		}
		level := NutrientLevel{Nutrient: n, Achieved: floats.Dot(values, shares) / TotalShare}
		if r, ok := f.requirement(n); ok {
			level.Required, level.HasRequirement = r.Min, true
			if level.Achieved < r.Min-in.slack(r.Min) {
				return nil, in.inconsistent(f, "%v is %v, below the required %v", n, level.Achieved, r.Min)
			}
		}
		result.Levels = append(result.Levels, level)
	}

	costs := make([]float64, len(f.Ingredients))
	for i, ing := range f.Ingredients {
		costs[i] = ing.Cost
	}
	result.UnitCost = floats.Dot(costs, shares) / TotalShare
	if cost := result.UnitCost * TotalShare; math.Abs(cost-res.ObjectiveValue) > in.slack(cost) {
		return nil, in.inconsistent(f, "blend costs %v, solver reported %v", cost, res.ObjectiveValue)
	}
	result.RoundedUnitCost = decimal.NewFromFloat(result.UnitCost).Round(in.opts.costPrecision)

	result.Shares = make([]Share, len(f.Ingredients))
	for i, ing := range f.Ingredients {
		result.Shares[i] = Share{
			Ingredient: ing.Name,
			Percent:    shares[i],
			Rounded:    decimal.NewFromFloat(shares[i]).Round(in.opts.precision),
		}
	}
	log.V(1).Infof("feed: interpreted %q, unit cost %v", f.Name, result.UnitCost)
	return result, nil
}

func (in *Interpreter) inconsistent(f Formulation, format string, a ...any) error {
	err := fmt.Errorf("formulation %q: "+format+": %w", append(append([]any{f.Name}, a...), ErrSolverConsistency)...)
	log.Errorf("%v", err)
	return err
}

// statusError maps a non-optimal response to its error.
func statusError(name string, res *lp.Response) error {
	switch res.Status {
	case lp.Optimal:
		return nil
	case lp.Infeasible:
		return fmt.Errorf("formulation %q: %w", name, ErrInfeasible)
	case lp.Unbounded:
		return fmt.Errorf("formulation %q: %w", name, ErrUnbounded)
	case lp.SolverFailure:
		return fmt.Errorf("formulation %q: %w: %s", name, ErrSolverFailure, res.Reason)
	}
	return fmt.Errorf("formulation %q: unexpected status %v: %w", name, res.Status, ErrSolverFailure)
}
