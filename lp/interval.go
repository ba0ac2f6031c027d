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
	"strconv"
)

// Interval stores the closed interval `[Lower,Upper]`. Either end may be infinite. If `Lower`
// is greater than `Upper`, or either end is NaN, the interval is considered empty.
type Interval struct {
	Lower float64
	Upper float64
}

// NonNegative returns the interval `[0,+inf)`.
func NonNegative() Interval {
	return Interval{0, math.Inf(1)}
}

// Free returns the interval `(-inf,+inf)`.
func Free() Interval {
	return Interval{math.Inf(-1), math.Inf(1)}
}

// Empty returns true if no value lies in the interval.
func (i Interval) Empty() bool {
	if math.IsNaN(i.Lower) || math.IsNaN(i.Upper) {
		return true
	}
	return i.Lower > i.Upper || math.IsInf(i.Lower, 1) || math.IsInf(i.Upper, -1)
}

// Contains returns true if `x` lies in the interval widened by `tol` on both finite ends.
func (i Interval) Contains(x, tol float64) bool {
	return x >= i.Lower-tol && x <= i.Upper+tol
}

// Offset adds `delta` to both ends of the interval. Infinite ends are unchanged.
func (i Interval) Offset(delta float64) Interval {
	return Interval{i.Lower + delta, i.Upper + delta}
}

// String returns the interval as `[lb, ub]`.
func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s]", formatFloat(i.Lower), formatFloat(i.Upper))
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
