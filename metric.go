// Copyright 2018 Fabian Wenzelmann
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pyzantine

import (
	"math"
	"sort"
	"strings"
)

// ColorMetric is a function that compares two average colors. The smaller the
// metric value is the more equal the colors are considered. Metric values are
// ≥ 0.
//
// All metrics operate on the raw r, g, b components, no weighting or gamma
// correction is applied.
type ColorMetric func(a, b AverageColor) float64

// SquaredDistance returns the squared euclidean distance of two colors, that
// is (r1 - r2)² + (g1 - g2)² + (b1 - b2)².
//
// This is the default metric. It yields the same order as EuclideanDistance
// but doesn't require a square root.
func SquaredDistance(a, b AverageColor) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return dr*dr + dg*dg + db*db
}

// EuclideanDistance returns the euclidean distance of two colors, that is
// sqrt( (r1 - r2)² + (g1 - g2)² + (b1 - b2)² ).
func EuclideanDistance(a, b AverageColor) float64 {
	return math.Sqrt(SquaredDistance(a, b))
}

// DefaultMetricName is the name of the metric used if no metric is given.
const DefaultMetricName = "squared"

var (
	colorMetrics map[string]ColorMetric
)

// RegisterColorMetric is used to register a named color metric. It will only
// add the metric if the name does not exist yet. The result is true if the
// metric was successfully registered and false otherwise.
// All names are lowercase strings, the register and get methods will always
// transform a string to lowercase.
//
// All metrics should be registered by an init method.
func RegisterColorMetric(name string, metric ColorMetric) bool {
	name = strings.ToLower(name)
	if _, has := colorMetrics[name]; has {
		return false
	}
	colorMetrics[name] = metric
	return true
}

// GetColorMetricNames returns a sorted list of all registered named color
// metrics.
func GetColorMetricNames() []string {
	res := make([]string, 0, len(colorMetrics))
	for key := range colorMetrics {
		res = append(res, key)
	}
	sort.Strings(res)
	return res
}

// GetColorMetric returns a registered color metric.
// Returns the metric and true on success and nil and false otherwise.
func GetColorMetric(name string) (ColorMetric, bool) {
	name = strings.ToLower(name)
	if metric, has := colorMetrics[name]; has {
		return metric, true
	}
	return nil, false
}

func init() {
	colorMetrics = make(map[string]ColorMetric)
	RegisterColorMetric("squared", SquaredDistance)
	RegisterColorMetric("euclid", EuclideanDistance)
}
