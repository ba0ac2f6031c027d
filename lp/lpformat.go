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
	"strings"
)

// ErrInvalidName holds the error when a name cannot be written in LP format.
var ErrInvalidName = errors.New("name is not valid in LP format")

// validLPName reports whether `s` can be used as a variable or row name in CPLEX LP format.
func validLPName(s string) bool {
	if s == "" || len(s) > 255 {
		return false
	}
	if c := s[0]; (c >= '0' && c <= '9') || c == '.' {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("!\"#$%&()/,.;?@_`'{}|~", r):
		default:
			return false
		}
	}
	return true
}

// writeExpr writes the non-zero terms of `coeffs` as `+ a x - b y`.
func writeExpr(sb *strings.Builder, m *Model, coeffs []float64) {
	wrote := false
	for j, a := range coeffs {
		if a == 0 {
			continue
		}
		switch {
		case a < 0:
			sb.WriteString(" - ")
		case wrote:
			sb.WriteString(" + ")
		default:
			sb.WriteString(" ")
		}
		if abs := math.Abs(a); abs != 1 {
			sb.WriteString(formatFloat(abs))
			sb.WriteString(" ")
		}
		sb.WriteString(m.Variables[j].Name)
		wrote = true
	}
	if !wrote {
		sb.WriteString(" 0 ")
		sb.WriteString(m.Variables[0].Name)
	}
}

// ExportLPFormat returns the model as a string in CPLEX LP format. Names must be valid LP
// identifiers.
//
// Usage:
//
//	text, err := model.ExportLPFormat()
func (m *Model) ExportLPFormat() (string, error) {
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("cannot export an invalid model as LP format: %w", err)
	}
	if len(m.Variables) == 0 {
		return "", fmt.Errorf("cannot export a model without variables as LP format: %w", ErrMalformedModel)
	}
	for _, v := range m.Variables {
		if !validLPName(v.Name) {
			return "", fmt.Errorf("variable %q: %w", v.Name, ErrInvalidName)
		}
	}
	for _, c := range m.Constraints {
		if !validLPName(c.Name) {
			return "", fmt.Errorf("constraint %q: %w", c.Name, ErrInvalidName)
		}
	}

	var sb strings.Builder
	if m.Name != "" {
		fmt.Fprintf(&sb, "\\ Model: %s\n", m.Name)
	}
	if m.Sense == Maximize {
		sb.WriteString("Maximize\n")
	} else {
		sb.WriteString("Minimize\n")
	}
	sb.WriteString(" obj:")
	writeExpr(&sb, m, m.Objective)
	switch {
	case m.ObjectiveOffset > 0:
		fmt.Fprintf(&sb, " + %s", formatFloat(m.ObjectiveOffset))
	case m.ObjectiveOffset < 0:
		fmt.Fprintf(&sb, " - %s", formatFloat(-m.ObjectiveOffset))
	}
	sb.WriteString("\nSubject To\n")
	for _, c := range m.Constraints {
		fmt.Fprintf(&sb, " %s:", c.Name)
		writeExpr(&sb, m, c.Coefficients)
		fmt.Fprintf(&sb, " %v %s\n", c.Op, formatFloat(c.RHS))
	}
	sb.WriteString("Bounds\n")
	for _, v := range m.Variables {
		lb, ub := v.Bounds.Lower, v.Bounds.Upper
		switch {
		case math.IsInf(lb, -1) && math.IsInf(ub, 1):
			fmt.Fprintf(&sb, " %s free\n", v.Name)
		case lb == ub:
			fmt.Fprintf(&sb, " %s = %s\n", v.Name, formatFloat(lb))
		default:
			fmt.Fprintf(&sb, " %s <= %s <= %s\n", formatFloat(lb), v.Name, formatFloat(ub))
		}
	}
	sb.WriteString("End\n")
	return sb.String(), nil
}
