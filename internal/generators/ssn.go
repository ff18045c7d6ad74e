// Copyright 2025 Datamask
//
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

package generators

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// maxAttempts bounds the uniqueness retry loop: the first draw plus nine
// redraws before the generator gives up.
const maxAttempts = 10

// ErrExhausted is returned when no unique invalid SSN could be found within
// the retry bound.
var ErrExhausted = errors.New("could not find a unique invalid SSN within the allowed retry attempts")

// itinGroupNumbers are the group numbers reserved for U.S. Individual
// Taxpayer Identification Numbers. A generated value with area >= 900 must
// avoid these so it cannot collide with a valid ITIN.
//
// Reference: https://www.ssa.gov/kc/SSAFactSheet--IssuingSSNs.pdf
var itinGroupNumbers = map[int]struct{}{
	70: {}, 71: {}, 72: {}, 73: {}, 74: {}, 75: {}, 76: {}, 77: {}, 78: {}, 79: {},
	80: {}, 81: {}, 82: {}, 83: {}, 84: {}, 85: {}, 86: {}, 87: {}, 88: {},
	90: {}, 91: {}, 92: {}, 94: {}, 95: {}, 96: {}, 97: {}, 98: {}, 99: {},
}

var nonITINGroups = buildNonITINGroups()

func buildNonITINGroups() []int {
	groups := make([]int, 0, 100-len(itinGroupNumbers))
	for g := 0; g < 100; g++ {
		if _, reserved := itinGroupNumbers[g]; !reserved {
			groups = append(groups, g)
		}
	}
	return groups
}

// InvalidSSN synthesizes structurally invalid Social Security Numbers that
// also never fall into a valid ITIN range. Values are unique for the
// lifetime of one generator, which matches the per-rule-invocation
// uniqueness contract. Not safe for concurrent use.
type InvalidSSN struct {
	separator string
	rnd       *rand.Rand
	used      map[string]struct{}
	draw      func() string
}

func NewInvalidSSN(separator string) *InvalidSSN {
	g := &InvalidSSN{
		separator: separator,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		used:      make(map[string]struct{}),
	}
	g.draw = g.synthesize
	return g
}

// Generate returns the next unique invalid SSN, or ErrExhausted when the
// retry bound is exceeded.
func (g *InvalidSSN) Generate() (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		ssn := g.draw()
		if _, taken := g.used[ssn]; taken {
			continue
		}
		g.used[ssn] = struct{}{}
		return ssn, nil
	}
	return "", ErrExhausted
}

// synthesize draws one invalid SSN. An invalid SSN has at least one of:
// area >= 900, area 000, area 666, group 00, or serial 0000.
func (g *InvalidSSN) synthesize() string {
	area := g.rnd.Intn(1000)
	group := g.rnd.Intn(100)
	serial := g.rnd.Intn(10000)

	switch {
	case area >= 900:
		// "starts with 9" already makes it invalid; redraw the group from
		// the ITIN complement so it is not a valid ITIN either.
		group = nonITINGroups[g.rnd.Intn(len(nonITINGroups))]
	case area != 0 && area != 666:
		// Zero out exactly one of group or serial.
		if g.rnd.Intn(2) == 0 {
			group = 0
		} else {
			serial = 0
		}
	default:
		// Area 000 or 666 is invalid on its own.
	}

	return fmt.Sprintf("%03d%s%02d%s%04d", area, g.separator, group, g.separator, serial)
}
