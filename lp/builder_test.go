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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuilder_Model(t *testing.T) {
	b := NewBuilder("diet")

	x := b.NewVar(0, 100).WithName("x")
	y := b.NewVar(0, 100).WithName("y")

	b.AddEquality(NewLinearExpr().AddSum(x, y), NewConstant(100)).WithName("total")
	b.AddGreaterOrEqual(NewLinearExpr().AddTerm(x, 40).AddTerm(y, 10), NewConstant(2000))
	b.AddLessOrEqual(x, NewConstant(80).AddConstant(-10))
	b.Minimize(NewLinearExpr().AddWeightedSum([]LinearArgument{x, y}, []float64{5, 2}))

	got, err := b.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	want := &Model{
		Name:  "diet",
		Sense: Minimize,
		Variables: []Variable{
			{Name: "x", Bounds: Interval{0, 100}},
			{Name: "y", Bounds: Interval{0, 100}},
		},
		Objective: []float64{5, 2},
		Constraints: []Constraint{
			{Name: "total", Coefficients: []float64{1, 1}, Op: Equal, RHS: 100},
			{Name: "c1", Coefficients: []float64{40, 10}, Op: GreaterOrEqual, RHS: 2000},
			{Name: "c2", Coefficients: []float64{1, 0}, Op: LessOrEqual, RHS: 70},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Model() returned unexpected diff (-want+got): %v", diff)
	}
}

func TestBuilder_LateVariablesArePadded(t *testing.T) {
	b := NewBuilder("")

	x := b.NewNonNegativeVar()
	b.AddGreaterOrEqual(x, NewConstant(1))
	y := b.NewVar(math.Inf(-1), 3)
	b.Maximize(NewLinearExpr().AddTerm(y, 2).AddConstant(7))

	m, err := b.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	if got, want := m.Constraints[0].Coefficients, []float64{1, 0}; !cmp.Equal(got, want) {
		t.Errorf("Coefficients = %v, want %v", got, want)
	}
	if got, want := m.Objective, []float64{0, 2}; !cmp.Equal(got, want) {
		t.Errorf("Objective = %v, want %v", got, want)
	}
	if m.ObjectiveOffset != 7 {
		t.Errorf("ObjectiveOffset = %v, want 7", m.ObjectiveOffset)
	}
	if m.Sense != Maximize {
		t.Errorf("Sense = %v, want %v", m.Sense, Maximize)
	}
	if got, want := []string{x.Name(), y.Name()}, []string{"x0", "x1"}; !cmp.Equal(got, want) {
		t.Errorf("default names = %v, want %v", got, want)
	}
}

func TestBuilder_RepeatedTermsAreMerged(t *testing.T) {
	b := NewBuilder("")
	x := b.NewNonNegativeVar()
	e := NewLinearExpr().AddTerm(x, 2).AddTerm(x, 3)
	b.AddLessOrEqual(e, NewLinearExpr().Add(x).AddConstant(4))

	m, err := b.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	if got := m.Constraints[0].Coefficients[0]; got != 4 {
		t.Errorf("coefficient = %v, want 4", got)
	}
	if got := m.Constraints[0].RHS; got != 4 {
		t.Errorf("RHS = %v, want 4", got)
	}
}

func TestBuilder_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		build func() *Builder
		want  error
	}{
		{
			name: "MixedModels",
			build: func() *Builder {
				b1, b2 := NewBuilder("1"), NewBuilder("2")
				x := b1.NewNonNegativeVar()
				b2.NewNonNegativeVar()
				b2.AddEquality(x, NewConstant(1))
				return b2
			},
			want: ErrMixedModels,
		},
		{
			name: "EmptyBounds",
			build: func() *Builder {
				b := NewBuilder("")
				b.NewVar(2, 1)
				return b
			},
			want: ErrInvalidBounds,
		},
		{
			name: "NaNBounds",
			build: func() *Builder {
				b := NewBuilder("")
				b.NewVar(math.NaN(), 1)
				return b
			},
			want: ErrInvalidBounds,
		},
		{
			name: "DuplicateVariableName",
			build: func() *Builder {
				b := NewBuilder("")
				b.NewNonNegativeVar().WithName("x")
				b.NewNonNegativeVar().WithName("x")
				return b
			},
			want: ErrDuplicateName,
		},
		{
			name: "DuplicateConstraintName",
			build: func() *Builder {
				b := NewBuilder("")
				x := b.NewNonNegativeVar()
				b.AddLessOrEqual(x, NewConstant(1)).WithName("c")
				b.AddLessOrEqual(x, NewConstant(2)).WithName("c")
				return b
			},
			want: ErrDuplicateName,
		},
		{
			name: "InfiniteCoefficient",
			build: func() *Builder {
				b := NewBuilder("")
				x := b.NewNonNegativeVar()
				b.Minimize(NewLinearExpr().AddTerm(x, math.Inf(1)))
				return b
			},
			want: ErrNotFinite,
		},
		{
			name: "InfiniteRHS",
			build: func() *Builder {
				b := NewBuilder("")
				x := b.NewNonNegativeVar()
				b.AddGreaterOrEqual(x, NewConstant(math.Inf(1)))
				return b
			},
			want: ErrNotFinite,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.build().Model()
			if !errors.Is(err, test.want) {
				t.Errorf("Model() returned err %v, want %v", err, test.want)
			}
		})
	}
}

func TestBuilder_FirstErrorIsReported(t *testing.T) {
	b := NewBuilder("")
	b.NewVar(1, 0)
	other := NewBuilder("").NewNonNegativeVar()
	b.Minimize(other)

	_, err := b.Model()
	if !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("Model() returned err %v, want %v", err, ErrInvalidBounds)
	}
	if errors.Is(err, ErrMixedModels) {
		t.Errorf("Model() returned err %v, want only the first error", err)
	}
}

func TestInterval(t *testing.T) {
	testCases := []struct {
		iv       Interval
		empty    bool
		contains float64
		want     bool
		str      string
	}{
		{Interval{0, 100}, false, 100, true, "[0, 100]"},
		{Interval{0, 100}, false, 100.5, false, "[0, 100]"},
		{NonNegative(), false, 1e300, true, "[0, inf]"},
		{Free(), false, -5, true, "[-inf, inf]"},
		{Interval{1, 0}, true, 0.5, false, "[1, 0]"},
		{Interval{math.Inf(1), math.Inf(1)}, true, 0, false, "[inf, inf]"},
	}
	for _, test := range testCases {
		if got := test.iv.Empty(); got != test.empty {
			t.Errorf("%v.Empty() = %v, want %v", test.iv, got, test.empty)
		}
		if got := test.iv.Contains(test.contains, 0); got != test.want {
			t.Errorf("%v.Contains(%v) = %v, want %v", test.iv, test.contains, got, test.want)
		}
		if got := test.iv.String(); got != test.str {
			t.Errorf("String() = %q, want %q", got, test.str)
		}
	}
	if got, want := (Interval{0, 100}).Offset(-5), (Interval{-5, 95}); got != want {
		t.Errorf("Offset(-5) = %v, want %v", got, want)
	}
	if !(Interval{0, 1}).Contains(1+1e-9, 1e-6) {
		t.Error("Contains() with tolerance = false, want true")
	}
}
