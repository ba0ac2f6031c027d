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
	"github.com/sourcegraph/conc/iter"

	"github.com/agroformula/feedmix/lp"
)

// Formulate builds the model of `f`, solves it with `solver` and interprets the response.
//
// Every outcome other than a verified blend is an error: ErrMissingNutrientData or
// ErrInvalidFormulation before solving, ErrInfeasible, ErrUnbounded or ErrSolverFailure from
// the solver, ErrMissingVariableValue or ErrSolverConsistency from the interpretation. Nothing
// is retried.
func Formulate(solver lp.Solver, f Formulation, opts ...Option) (*Result, error) {
	m, err := BuildModel(f)
	if err != nil {
		return nil, err
	}
	res, err := solver.Solve(m.LP)
	if err != nil {
		return nil, fmt.Errorf("formulation %q: %w: %v", f.Name, ErrSolverFailure, err)
	}
	log.V(1).Infof("feed: solver returned %v for %q", res.Status, f.Name)
	if err := statusError(f.Name, res); err != nil {
		return nil, err
	}
	return NewInterpreter(opts...).Interpret(m, res)
}

// Outcome is the result of one formulation in a batch.
type Outcome struct {
	Result *Result
	Err    error
}

// FormulateAll formulates every element of `forms` concurrently and returns the outcomes in
// input order. `solver` must be safe for concurrent use.
func FormulateAll(solver lp.Solver, forms []Formulation, opts ...Option) []Outcome {
	return iter.Map(forms, func(f *Formulation) Outcome {
		r, err := Formulate(solver, *f, opts...)
		return Outcome{Result: r, Err: err}
	})
}
