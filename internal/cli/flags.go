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

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
	"github.com/rogfrich/pyzantine"
	"github.com/spf13/pflag"
)

// interpValue is a flag value for an interpolation function. It accepts
// either a quality between 0 and 5 (see pyzantine.GetInterP) or the name of
// the function.
type interpValue struct {
	interP *resize.InterpolationFunction
}

var _ pflag.Value = interpValue{}

func newInterpValue(def resize.InterpolationFunction, p *resize.InterpolationFunction) interpValue {
	*p = def
	return interpValue{interP: p}
}

func (v interpValue) String() string {
	if v.interP == nil {
		return ""
	}
	return pyzantine.InterPString(*v.interP)
}

func (v interpValue) Set(s string) error {
	if quality, err := strconv.ParseUint(s, 10, 32); err == nil {
		if quality > 5 {
			return fmt.Errorf("interpolation quality must be between 0 and 5, got %d", quality)
		}
		*v.interP = pyzantine.GetInterP(uint(quality))
		return nil
	}
	interP, err := pyzantine.InterPFromString(s)
	if err != nil {
		return err
	}
	*v.interP = interP
	return nil
}

func (v interpValue) Type() string {
	return "interpolation"
}

// metricValue is a flag value for a registered color metric name.
type metricValue struct {
	name *string
}

var _ pflag.Value = metricValue{}

func newMetricValue(def string, p *string) metricValue {
	*p = def
	return metricValue{name: p}
}

func (v metricValue) String() string {
	if v.name == nil {
		return ""
	}
	return *v.name
}

func (v metricValue) Set(s string) error {
	s = strings.ToLower(s)
	if _, ok := pyzantine.GetColorMetric(s); !ok {
		return fmt.Errorf("unknown metric %q, available: %s", s, strings.Join(pyzantine.GetColorMetricNames(), ", "))
	}
	*v.name = s
	return nil
}

func (v metricValue) Type() string {
	return "metric"
}

// filterFor returns the image filter for the --formats flag.
func filterFor(formats string) (pyzantine.SupportedImageFunc, error) {
	switch strings.ToLower(formats) {
	case "jpg", "jpeg":
		return pyzantine.JPGOnly, nil
	case "jpg+png":
		return pyzantine.JPGAndPNG, nil
	case "all":
		return pyzantine.SupportedImage, nil
	default:
		return nil, fmt.Errorf("unknown image formats %q, expected jpg, jpg+png or all", formats)
	}
}
