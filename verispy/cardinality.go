/*
 * Copyright 2020 grant@lastweekend.com.au
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package verispy

import (
	"fmt"
	"strconv"
)

// Unbounded is the maximum of a Cardinality without an upper limit
const Unbounded = -1

// A Cardinality is an inclusive [minimum, maximum] constraint on the number of matching calls.
//
// An "always" cardinality additionally requires every possible call to match, which can
// only be resolved against the total number of calls at verification time.
type Cardinality struct {
	min    int
	max    int
	always bool
}

// NewCardinality returns a cardinality between min and max inclusive. Use Unbounded for no maximum.
func NewCardinality(min int, max int) (Cardinality, error) {
	if min < 0 || (max != Unbounded && (max < 0 || max < min)) {
		return Cardinality{}, &InvalidCardinalityError{Minimum: min, Maximum: max}
	}
	return Cardinality{min: min, max: max}, nil
}

func mustCardinality(min int, max int) Cardinality {
	c, err := NewCardinality(min, max)
	if err != nil {
		panic(err)
	}
	return c
}

// Minimum number of matches
func (c Cardinality) Minimum() int { return c.min }

// Maximum number of matches, or Unbounded
func (c Cardinality) Maximum() int { return c.max }

// IsAlways reports whether every possible call must match
func (c Cardinality) IsAlways() bool { return c.always }

/*
Matches reports whether count satisfies c.

maximumPossible is the number of candidates that could have matched (eg the total number of calls),
and is only significant for an "always" cardinality.
*/
func (c Cardinality) Matches(count int, maximumPossible int) bool {
	if count < c.min {
		return false
	}
	if c.max != Unbounded && count > c.max {
		return false
	}
	if c.always && count < maximumPossible {
		return false
	}
	return true
}

// AssertSingular returns an error unless c only accepts counts of 0 or 1.
func (c Cardinality) AssertSingular() error {
	if c.min > 1 || (c.max != Unbounded && c.max > 1) || c.always {
		return &InvalidCardinalityError{Minimum: c.min, Maximum: c.max, Always: c.always, Singular: true}
	}
	return nil
}

func (c Cardinality) maximumString() string {
	if c.max == Unbounded {
		return "unbounded"
	}
	return strconv.Itoa(c.max)
}

func (c Cardinality) String() string {
	switch {
	case c.always:
		return "always"
	case c.max == 0:
		return "never"
	case c.max == Unbounded:
		return fmt.Sprintf("at least %d", c.min)
	case c.min == c.max:
		return fmt.Sprintf("exactly %d", c.min)
	case c.min == 0:
		return fmt.Sprintf("at most %d", c.max)
	default:
		return fmt.Sprintf("between %d and %d", c.min, c.max)
	}
}

// Never returns a cardinality that matches no calls
func Never() Cardinality {
	return Cardinality{min: 0, max: 0}
}

// Once is shorthand for Times(1)
func Once() Cardinality {
	return Times(1)
}

// Twice is shorthand for Times(2)
func Twice() Cardinality {
	return Times(2)
}

// Times returns a cardinality of exactly n
func Times(n int) Cardinality {
	return mustCardinality(n, n)
}

// AtLeast returns a cardinality of n or more
func AtLeast(n int) Cardinality {
	return mustCardinality(n, Unbounded)
}

// AtMost returns a cardinality of between 0 and n
func AtMost(n int) Cardinality {
	return mustCardinality(0, n)
}

// Between returns a cardinality of at least min and at most max
func Between(min int, max int) Cardinality {
	return mustCardinality(min, max)
}

// Always returns a cardinality requiring at least one call, and that all calls match
func Always() Cardinality {
	return Cardinality{min: 1, max: Unbounded, always: true}
}
