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

	log "github.com/golang/glog"

	"github.com/agroformula/feedmix/lp"
)

// TotalShare is the sum of all ingredient shares. Shares are percentages, so every nutrient
// target is scaled by the same factor on the right-hand side.
const TotalShare = 100.0

// Name of the blend completion constraint.
const blendConstraint = "blend"

// Model is the linear program of a Formulation together with the mapping between ingredients
// and LP variables.
type Model struct {
	// Formulation is the input the model was built from.
	Formulation Formulation
	// LP is the canonical description handed to the solver.
	LP *lp.Model
	// shares[i] is the name of the variable holding the share of Formulation.Ingredients[i].
	shares []string
}

// ShareVariable returns the name of the LP variable holding the share of ingredient `i`.
func (m *Model) ShareVariable(i int) string {
	return m.shares[i]
}

func shareName(i int) string {
	return fmt.Sprintf("share_%d", i)
}

func requirementName(k int) string {
	return fmt.Sprintf("min_%d", k)
}

// BuildModel builds the least-cost linear program of `f`:
//
//	minimize  sum_i cost[i] * share[i]
//	s.t.      sum_i share[i] = 100
//	          sum_i value[i][n] * share[i] >= 100 * min[n]   for each requirement n
//	          0 <= share[i] <= 100
//
// Variables follow the ingredient order and constraints the requirement order, the blend
// constraint first. A requirement with a zero minimum still gets its constraint.
func BuildModel(f Formulation) (*Model, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	b := lp.NewBuilder(f.Name)
	shares := make([]lp.LinearArgument, len(f.Ingredients))
	names := make([]string, len(f.Ingredients))
	costs := make([]float64, len(f.Ingredients))
	for i, ing := range f.Ingredients {
		names[i] = shareName(i)
		shares[i] = b.NewVar(0, TotalShare).WithName(names[i])
		costs[i] = ing.Cost
	}

	b.AddEquality(lp.NewLinearExpr().AddSum(shares...), lp.NewConstant(TotalShare)).WithName(blendConstraint)
	for k, r := range f.Requirements {
		values := make([]float64, len(f.Ingredients))
		for i, ing := range f.Ingredients {
			// Presence was checked by Validate.
			values[i], _ = ing.Value(r.Nutrient)
		}
		b.AddGreaterOrEqual(
			lp.NewLinearExpr().AddWeightedSum(shares, values),
			lp.NewConstant(r.Min*TotalShare),
		).WithName(requirementName(k))
	}
	b.Minimize(lp.NewLinearExpr().AddWeightedSum(shares, costs))

	m, err := b.Model()
	if err != nil {
		return nil, fmt.Errorf("building model for %q: %w", f.Name, err)
	}
	log.V(1).Infof("feed: built model %q with %d shares and %d constraints", f.Name, m.NumVariables(), m.NumConstraints())
	return &Model{Formulation: f, LP: m, shares: names}, nil
}
