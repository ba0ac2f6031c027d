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
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names of the wire form. Infinite bounds are encoded as the strings "inf" and "-inf"
// since JSON has no representation for them.
const (
	fieldName        = "name"
	fieldMaximize    = "maximize"
	fieldOffset      = "objective_offset"
	fieldVariables   = "variables"
	fieldLowerBound  = "lower_bound"
	fieldUpperBound  = "upper_bound"
	fieldObjective   = "objective_coefficient"
	fieldConstraints = "constraints"
	fieldCoeffs      = "coefficients"
	fieldOperator    = "operator"
	fieldRHS         = "rhs"
)

func boundValue(f float64) *structpb.Value {
	if math.IsInf(f, 0) {
		return structpb.NewStringValue(formatFloat(f))
	}
	return structpb.NewNumberValue(f)
}

// Proto returns the model as a protobuf Struct, the form in which it is handed to solvers
// running in another process.
func (m *Model) Proto() *structpb.Struct {
	vars := make([]*structpb.Value, len(m.Variables))
	for j, v := range m.Variables {
		var obj float64
		if j < len(m.Objective) {
			obj = m.Objective[j]
		}
		vars[j] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldName:       structpb.NewStringValue(v.Name),
			fieldLowerBound: boundValue(v.Bounds.Lower),
			fieldUpperBound: boundValue(v.Bounds.Upper),
			fieldObjective:  structpb.NewNumberValue(obj),
		}})
	}
	cts := make([]*structpb.Value, len(m.Constraints))
	for k, c := range m.Constraints {
		coeffs := make([]*structpb.Value, len(c.Coefficients))
		for j, a := range c.Coefficients {
			coeffs[j] = structpb.NewNumberValue(a)
		}
		cts[k] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldName:     structpb.NewStringValue(c.Name),
			fieldCoeffs:   structpb.NewListValue(&structpb.ListValue{Values: coeffs}),
			fieldOperator: structpb.NewStringValue(c.Op.String()),
			fieldRHS:      structpb.NewNumberValue(c.RHS),
		}})
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldName:        structpb.NewStringValue(m.Name),
		fieldMaximize:    structpb.NewBoolValue(m.Sense == Maximize),
		fieldOffset:      structpb.NewNumberValue(m.ObjectiveOffset),
		fieldVariables:   structpb.NewListValue(&structpb.ListValue{Values: vars}),
		fieldConstraints: structpb.NewListValue(&structpb.ListValue{Values: cts}),
	}}
}

// ModelFromProto decodes a model produced by Proto and validates it.
func ModelFromProto(s *structpb.Struct) (*Model, error) {
	f := s.GetFields()
	m := &Model{
		Name:            f[fieldName].GetStringValue(),
		ObjectiveOffset: f[fieldOffset].GetNumberValue(),
	}
	if f[fieldMaximize].GetBoolValue() {
		m.Sense = Maximize
	}
	for j, v := range f[fieldVariables].GetListValue().GetValues() {
		vf := v.GetStructValue().GetFields()
		lb, err := decodeBound(vf[fieldLowerBound])
		if err != nil {
			return nil, fmt.Errorf("variable %d lower bound: %w", j, err)
		}
		ub, err := decodeBound(vf[fieldUpperBound])
		if err != nil {
			return nil, fmt.Errorf("variable %d upper bound: %w", j, err)
		}
		m.Variables = append(m.Variables, Variable{
			Name:   vf[fieldName].GetStringValue(),
			Bounds: Interval{lb, ub},
		})
		m.Objective = append(m.Objective, vf[fieldObjective].GetNumberValue())
	}
	for k, v := range f[fieldConstraints].GetListValue().GetValues() {
		cf := v.GetStructValue().GetFields()
		op, err := parseOperator(cf[fieldOperator].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", k, err)
		}
		var coeffs []float64
		for _, a := range cf[fieldCoeffs].GetListValue().GetValues() {
			coeffs = append(coeffs, a.GetNumberValue())
		}
		m.Constraints = append(m.Constraints, Constraint{
			Name:         cf[fieldName].GetStringValue(),
			Coefficients: coeffs,
			Op:           op,
			RHS:          cf[fieldRHS].GetNumberValue(),
		})
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeBound(v *structpb.Value) (float64, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return k.NumberValue, nil
	case *structpb.Value_StringValue:
		switch k.StringValue {
		case "inf":
			return math.Inf(1), nil
		case "-inf":
			return math.Inf(-1), nil
		}
		return 0, fmt.Errorf("bound %q: %w", k.StringValue, ErrMalformedModel)
	}
	return 0, fmt.Errorf("missing bound: %w", ErrMalformedModel)
}

func parseOperator(s string) (Operator, error) {
	for _, op := range []Operator{Equal, GreaterOrEqual, LessOrEqual} {
		if op.String() == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("operator %q: %w", s, ErrMalformedModel)
}

// MarshalJSON encodes the wire form of the model as JSON.
func (m *Model) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(m.Proto())
}

// UnmarshalModelJSON decodes a model encoded by MarshalJSON.
func UnmarshalModelJSON(b []byte) (*Model, error) {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("unmarshaling model failed: %w", err)
	}
	return ModelFromProto(s)
}
