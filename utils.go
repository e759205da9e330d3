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
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

const (
	// Version is the version of the index file format and the program. It is
	// stored in the metadata of each index file.
	Version = "0.1.0"
)

// ProgressFunc is a function that is used to inform a caller about the progress
// of a called function.
// For example if we process thousands of cells we might wish to know
// how far the call is and give feedback to the user.
// The called method calls the progress function after each iteration with the
// number of items processed so far.
type ProgressFunc func(num int)

// ProgressFactory creates a ProgressFunc once the total number of items is
// known.
type ProgressFactory func(total int) ProgressFunc

// ProgressIgnore is a ProgressFunc that does nothing.
func ProgressIgnore(num int) {}

// progressPercent returns the percent value and true if a message should be
// printed for num.
func progressPercent(num, max, step int) (float64, bool) {
	if step == 0 || max == 0 {
		return 0, false
	}
	if !(step < 0 || num%step == 0 || num == max) {
		return 0, false
	}
	percent := (float64(num) / float64(max)) * 100.0
	if percent > 100.0 {
		percent = 100.0
	}
	return percent, true
}

// LoggerProgressFunc is a parameterized ProgressFunc that logs to log.
// The output describes the progress (how many of how many objects processed).
// Log messages may have an addition prefix. max is the total number of elements
// to process and step describes how often to print to the log (for example
// step = 100 every 100 items). The last item is always reported.
func LoggerProgressFunc(prefix string, max, step int) ProgressFunc {
	return func(num int) {
		percent, ok := progressPercent(num, max, step)
		if !ok {
			return
		}
		if prefix == "" {
			prefix = "Progress"
		}
		log.WithFields(log.Fields{
			"done":    num,
			"total":   max,
			"percent": fmt.Sprintf("%.1f", percent),
		}).Info(prefix)
	}
}

// StdProgressFunc is a parameterized ProgressFunc that writes to the
// specified writer.
// The output describes the progress (how many of how many objects processed).
// Messages may have an addition prefix. max is the total number of elements
// to process and step describes how often to print (for example
// step = 100 every 100 items). The last item is always reported.
func StdProgressFunc(w io.Writer, prefix string, max, step int) ProgressFunc {
	return func(num int) {
		percent, ok := progressPercent(num, max, step)
		if !ok {
			return
		}
		if prefix == "" {
			fmt.Fprintf(w, "Progress: %d of %d (%.1f%%)\n", num, max, percent)
		} else {
			fmt.Fprintf(w, "%s: %d of %d (%.1f%%)\n", prefix, num, max, percent)
		}
	}
}

// ProgressStep returns a sane step value for a progress function given the
// total number of items: roughly every ten percent, at most every 100 items.
func ProgressStep(total int) int {
	return IntMax(1, IntMin(100, total/10))
}
