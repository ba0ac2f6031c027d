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
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"

	"github.com/agroformula/feedmix/lp"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

// optimal returns an optimal response assigning `shares` to the share variables of `m`, with the
// objective value the shares actually cost.
func optimal(m *Model, shares ...float64) *lp.Response {
	res := &lp.Response{Status: lp.Optimal, Values: make(map[string]float64)}
	for i, s := range shares {
		res.Values[m.ShareVariable(i)] = s
		res.ObjectiveValue += m.Formulation.Ingredients[i].Cost * s
	}
	return res
}

func mustBuild(t *testing.T, f Formulation) *Model {
	t.Helper()
	m, err := BuildModel(f)
	if err != nil {
		t.Fatalf("BuildModel() returned with unexpected error %v", err)
	}
	return m
}

func TestInterpreter_Interpret(t *testing.T) {
	m := mustBuild(t, twoProteins(20))
	res := optimal(m, 100.0/3, 200.0/3)

	got, err := NewInterpreter().Interpret(m, res)
	if err != nil {
		t.Fatalf("Interpret() returned with unexpected error %v", err)
	}
	want := &Result{
		Name: "two proteins",
		Shares: []Share{
			{Ingredient: "rich", Percent: 100.0 / 3, Rounded: decimal.RequireFromString("33.33")},
			{Ingredient: "cheap", Percent: 200.0 / 3, Rounded: decimal.RequireFromString("66.67")},
		},
		Levels: []NutrientLevel{
			{Nutrient: CrudeProtein, Achieved: 20, Required: 20, HasRequirement: true},
		},
		UnitCost:        3,
		RoundedUnitCost: decimal.RequireFromString("3"),
		Objective:       300,
	}
	if diff := cmp.Diff(want, got, approx, cmp.Comparer(decimal.Decimal.Equal)); diff != "" {
		t.Errorf("Interpret() returned unexpected result (-want+got): %v", diff)
	}
	if s, ok := got.Share("cheap"); !ok || s.Rounded.StringFixed(2) != "66.67" {
		t.Errorf("Share(%q) = %v, %v, want 66.67", "cheap", s, ok)
	}
	if l, ok := got.Level(CrudeProtein); !ok || !cmp.Equal(l.Achieved, 20.0, approx) {
		t.Errorf("Level(%v) = %v, %v, want 20", CrudeProtein, l, ok)
	}
	if _, ok := got.Share("missing"); ok {
		t.Errorf("Share(%q) found an ingredient that is not in the blend", "missing")
	}
}

func TestInterpreter_UnrequiredNutrientsAreReported(t *testing.T) {
	f := twoProteins(20)
	f.Ingredients[0].Nutrients[Calcium] = 1
	f.Ingredients[1].Nutrients[Calcium] = 4
	m := mustBuild(t, f)

	got, err := NewInterpreter().Interpret(m, optimal(m, 50, 50))
	if err != nil {
		t.Fatalf("Interpret() returned with unexpected error %v", err)
	}
	want := []NutrientLevel{
		{Nutrient: CrudeProtein, Achieved: 25, Required: 20, HasRequirement: true},
		{Nutrient: Calcium, Achieved: 2.5},
	}
	if diff := cmp.Diff(want, got.Levels, approx); diff != "" {
		t.Errorf("Interpret() returned unexpected levels (-want+got): %v", diff)
	}
}

func TestInterpreter_Precision(t *testing.T) {
	m := mustBuild(t, twoProteins(20))
	res := optimal(m, 100.0/3, 200.0/3)

	got, err := NewInterpreter(WithDisplayPrecision(0), WithCostPrecision(1)).Interpret(m, res)
	if err != nil {
		t.Fatalf("Interpret() returned with unexpected error %v", err)
	}
	if s := got.Shares[0].Rounded.String(); s != "33" {
		t.Errorf("Shares[0].Rounded = %v, want 33", s)
	}
	if s := got.Shares[1].Rounded.String(); s != "67" {
		t.Errorf("Shares[1].Rounded = %v, want 67", s)
	}
	if !cmp.Equal(got.Shares[0].Percent, 100.0/3) {
		t.Errorf("Shares[0].Percent = %v, want the exact share %v", got.Shares[0].Percent, 100.0/3)
	}
	if s := got.RoundedUnitCost.StringFixed(1); s != "3.0" {
		t.Errorf("RoundedUnitCost = %v, want 3.0", s)
	}
}

func TestInterpreter_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		response func(m *Model) *lp.Response
		opts     []Option
		want     error
	}{
		{
			name: "MissingShare",
			response: func(m *Model) *lp.Response {
				res := optimal(m, 100.0/3, 200.0/3)
				delete(res.Values, m.ShareVariable(1))
				return res
			},
			want: ErrMissingVariableValue,
		},
		{
			name:     "RequirementViolated",
			response: func(m *Model) *lp.Response { return optimal(m, 10, 90) },
			want:     ErrSolverConsistency,
		},
		{
			name:     "SharesDoNotSumTo100",
			response: func(m *Model) *lp.Response { return optimal(m, 50, 60) },
			want:     ErrSolverConsistency,
		},
		{
			name:     "NegativeShare",
			response: func(m *Model) *lp.Response { return optimal(m, 110, -10) },
			want:     ErrSolverConsistency,
		},
		{
			name: "ObjectiveMismatch",
			response: func(m *Model) *lp.Response {
				res := optimal(m, 100.0/3, 200.0/3)
				res.ObjectiveValue = 250
				return res
			},
			want: ErrSolverConsistency,
		},
		{
			name: "ViolationBeyondLooseTolerance",
			response: func(m *Model) *lp.Response {
				return optimal(m, 33, 67)
			},
			opts: []Option{WithTolerance(1e-3)},
			want: ErrSolverConsistency,
		},
		{
			name:     "Infeasible",
			response: func(*Model) *lp.Response { return &lp.Response{Status: lp.Infeasible} },
			want:     ErrInfeasible,
		},
		{
			name:     "Unbounded",
			response: func(*Model) *lp.Response { return &lp.Response{Status: lp.Unbounded} },
			want:     ErrUnbounded,
		},
		{
			name:     "SolverFailure",
			response: func(*Model) *lp.Response { return &lp.Response{Status: lp.SolverFailure, Reason: "iteration limit"} },
			want:     ErrSolverFailure,
		},
		{
			name:     "NotSolved",
			response: func(*Model) *lp.Response { return &lp.Response{} },
			want:     ErrSolverFailure,
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			m := mustBuild(t, twoProteins(20))
			got, err := NewInterpreter(test.opts...).Interpret(m, test.response(m))
			if !errors.Is(err, test.want) {
				t.Errorf("Interpret() returned err %v, want %v", err, test.want)
			}
			if got != nil {
				t.Errorf("Interpret() returned result %v alongside err %v", got, err)
			}
		})
	}
}

func TestInterpreter_FailureReasonIsKept(t *testing.T) {
	m := mustBuild(t, twoProteins(20))
	_, err := NewInterpreter().Interpret(m, &lp.Response{Status: lp.SolverFailure, Reason: "iteration limit"})
	if err == nil || !strings.Contains(err.Error(), "iteration limit") {
		t.Errorf("Interpret() returned err %v, want it to mention the solver's reason", err)
	}
}

func TestInterpreter_ToleratesRoundingNoise(t *testing.T) {
	m := mustBuild(t, twoProteins(20))
	res := optimal(m, 100.0/3-1e-9, 200.0/3+1e-9)

	if _, err := NewInterpreter().Interpret(m, res); err != nil {
		t.Errorf("Interpret() returned with unexpected error %v", err)
	}
}
