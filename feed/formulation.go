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

// Package feed computes least-cost feed blends.
//
// A `Formulation` lists ingredients (nutrient content and unit cost) and minimum nutrient
// requirements. `BuildModel` turns it into an `lp.Model` whose variables are the percentage
// shares of the ingredients, any `lp.Solver` solves it, and an `Interpreter` turns the solver's
// response back into blend percentages, achieved nutrient levels and the unit cost of the
// blend, checking that the response actually meets every requirement. `Formulate` runs the
// whole pipeline.
package feed

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMissingNutrientData holds the error when the ingredient list is empty or an ingredient
	// has no value for a required nutrient.
	ErrMissingNutrientData = errors.New("missing nutrient data")
	// ErrInvalidFormulation holds the error when a formulation is structurally invalid
	// (unnamed or duplicate ingredients, duplicate requirements, non-finite numbers).
	ErrInvalidFormulation = errors.New("invalid formulation")
	// ErrInfeasible holds the error when no blend meets every requirement.
	ErrInfeasible = errors.New("no blend satisfies the requirements")
	// ErrUnbounded holds the error when the solver reports an unbounded program.
	ErrUnbounded = errors.New("formulation model is unbounded")
	// ErrSolverFailure holds the error when the solver backend failed.
	ErrSolverFailure = errors.New("solver failure")
	// ErrSolverConsistency holds the error when the solver reported an optimal blend that does
	// not satisfy the model.
	ErrSolverConsistency = errors.New("solver returned an inconsistent solution")
	// ErrMissingVariableValue holds the error when the solver's response omits the share of an
	// ingredient.
	ErrMissingVariableValue = errors.New("solver response has no value for ingredient share")
)

// Nutrient identifies a tracked nutrient.
type Nutrient string

// Nutrients of the classic grower diet.
const (
	// CrudeProtein in percent of mass.
	CrudeProtein Nutrient = "CP"
	// DigestibleEnergy in MJ/kg.
	DigestibleEnergy Nutrient = "DE"
	// Calcium in percent of mass.
	Calcium Nutrient = "Ca"
	// Phosphorus in percent of mass.
	Phosphorus Nutrient = "P"
)

// Ingredient is a raw material with its nutrient profile and its unit cost (currency per unit
// mass). A nutrient absent from Nutrients has no defined value; list it with 0 when the
// ingredient does not contain it.
type Ingredient struct {
	Name      string `validate:"required"`
	Cost      float64
	Nutrients map[Nutrient]float64 `validate:"dive,keys,required,endkeys"`
}

// Value returns the amount of `n` in the ingredient and whether it is defined.
func (i Ingredient) Value(n Nutrient) (float64, bool) {
	v, ok := i.Nutrients[n]
	return v, ok
}

// Requirement is a minimum concentration of a nutrient in the finished blend, in the same unit
// as the ingredient table.
type Requirement struct {
	Nutrient Nutrient `validate:"required"`
	Min      float64
}

// Formulation is the input of one solve. It is treated as read-only.
type Formulation struct {
	Name         string
	Ingredients  []Ingredient  `validate:"unique=Name,dive"`
	Requirements []Requirement `validate:"unique=Nutrient,dive"`
}

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// Validate checks the formulation before a model is built from it.
func (f Formulation) Validate() error {
	if len(f.Ingredients) == 0 {
		return fmt.Errorf("formulation %q has no ingredients: %w", f.Name, ErrMissingNutrientData)
	}
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("formulation %q: %v: %w", f.Name, err, ErrInvalidFormulation)
	}
	for _, ing := range f.Ingredients {
		if !finite(ing.Cost) {
			return fmt.Errorf("ingredient %q has cost %v: %w", ing.Name, ing.Cost, ErrInvalidFormulation)
		}
		for n, v := range ing.Nutrients {
			if !finite(v) {
				return fmt.Errorf("ingredient %q has %v = %v: %w", ing.Name, n, v, ErrInvalidFormulation)
			}
		}
	}
	for _, r := range f.Requirements {
		if !finite(r.Min) {
			return fmt.Errorf("requirement on %v is %v: %w", r.Nutrient, r.Min, ErrInvalidFormulation)
		}
		for _, ing := range f.Ingredients {
			if _, ok := ing.Value(r.Nutrient); !ok {
				return fmt.Errorf("ingredient %q has no value for required nutrient %v: %w", ing.Name, r.Nutrient, ErrMissingNutrientData)
			}
		}
	}
	return nil
}

// Nutrients returns every nutrient of the formulation: the required ones in requirement order,
// then the others declared by any ingredient in lexical order.
func (f Formulation) Nutrients() []Nutrient {
	seen := make(map[Nutrient]bool)
	var out []Nutrient
	for _, r := range f.Requirements {
		if !seen[r.Nutrient] {
			seen[r.Nutrient] = true
			out = append(out, r.Nutrient)
		}
	}
	var rest []Nutrient
	for _, ing := range f.Ingredients {
		for n := range ing.Nutrients {
			if !seen[n] {
				seen[n] = true
				rest = append(rest, n)
			}
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

// requirement returns the requirement on `n`, if any.
func (f Formulation) requirement(n Nutrient) (Requirement, bool) {
	for _, r := range f.Requirements {
		if r.Nutrient == n {
			return r, true
		}
	}
	return Requirement{}, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
