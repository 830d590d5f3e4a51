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

import "fmt"

// MatchFailure explains why one part of a MatcherSpec did not match
type MatchFailure struct {
	// Argument identifies the parameter name, position or "leftover" arguments involved
	Argument string
	Reason   string
}

func (f MatchFailure) String() string {
	return fmt.Sprintf("%s: %s", f.Argument, f.Reason)
}

// MatchResult is the outcome of matching a MatcherSpec against Arguments.
type MatchResult struct {
	Matched bool
	// Satisfied counts the individual matcher checks that passed, a measure of closeness for diagnostics
	Satisfied int
	Failures  []MatchFailure
}

func (r *MatchResult) pass() {
	r.Satisfied++
}

func (r *MatchResult) fail(argument string, format string, args ...interface{}) {
	r.Failures = append(r.Failures, MatchFailure{Argument: argument, Reason: fmt.Sprintf(format, args...)})
}

// boundValue is an argument bound to a declared parameter
type boundValue struct {
	value      interface{}
	set        bool
	namedIndex int // index into the named arguments, or -1 when bound by position
}

/*
Match reports whether args satisfy s.

Positional arguments bind to the declared parameters first. A named argument binds to a declared parameter
only if no positional argument filled that parameter, otherwise it remains unclaimed. Unclaimed arguments,
positional followed by named, are consumed by the wildcard, and without a wildcard cause a mismatch.

All checks are evaluated so the result can explain every failure; matching never returns an error.
*/
func (s *MatcherSpec) Match(args Arguments) MatchResult {
	result := MatchResult{}
	bindable := s.signature.bindable()
	positional := args.positional
	named := args.named

	bound := make([]boundValue, len(bindable))
	for i := 0; i < len(bindable) && i < len(positional); i++ {
		bound[i] = boundValue{value: positional[i], set: true, namedIndex: -1}
	}
	for ni, na := range named {
		if idx := s.signature.indexOf(na.Name); idx >= 0 && !bound[idx].set {
			bound[idx] = boundValue{value: na.Value, set: true, namedIndex: ni}
		}
	}

	claimedPositional := make([]bool, len(positional))
	claimedNamed := make([]bool, len(named))

	for _, d := range s.declared {
		b := bound[d.index]
		var value interface{}
		switch {
		case b.set:
			value = b.value
			if b.namedIndex < 0 {
				claimedPositional[d.index] = true
			} else {
				claimedNamed[b.namedIndex] = true
			}
		case d.param.HasDefault:
			value = d.param.Default
		default:
			result.fail(d.param.Name, "missing argument, expected %s", s.describe(d.matcher))
			continue
		}
		if d.matcher.Matches(value) {
			result.pass()
		} else {
			result.fail(d.param.Name, "%s does not match %s", s.renderer.RenderValue(value), s.describe(d.matcher))
		}
	}

	extraStart := len(bindable)
	for i, m := range s.positional {
		pos := extraStart + i
		if pos >= len(positional) {
			result.fail(fmt.Sprintf("#%d", pos), "missing argument, expected %s", s.describe(m))
			continue
		}
		claimedPositional[pos] = true
		if m.Matches(positional[pos]) {
			result.pass()
		} else {
			result.fail(fmt.Sprintf("#%d", pos), "%s does not match %s", s.renderer.RenderValue(positional[pos]), s.describe(m))
		}
	}

	for _, nm := range s.named {
		ni := -1
		for j, na := range named {
			if na.Name == nm.Name && !claimedNamed[j] {
				ni = j
				break
			}
		}
		if ni < 0 {
			result.fail(nm.Name, "missing named argument, expected %s", s.describe(nm.Matcher))
			continue
		}
		claimedNamed[ni] = true
		if nm.Matcher.Matches(named[ni].Value) {
			result.pass()
		} else {
			result.fail(nm.Name, "%s does not match %s", s.renderer.RenderValue(named[ni].Value), s.describe(nm.Matcher))
		}
	}

	var leftover []interface{}
	for i, claimed := range claimedPositional {
		if !claimed {
			leftover = append(leftover, positional[i])
		}
	}
	for j, claimed := range claimedNamed {
		if !claimed {
			leftover = append(leftover, named[j].Value)
		}
	}

	if s.wildcard == nil {
		if len(leftover) > 0 {
			result.fail("leftover", "%d unexpected argument(s)", len(leftover))
		}
	} else {
		if s.wildcard.MatchesCount(len(leftover)) {
			result.pass()
		} else {
			result.fail("leftover", "%d argument(s) outside wildcard arity %s", len(leftover), s.describe(s.wildcard))
		}
		for _, v := range leftover {
			if !s.wildcard.Matches(v) {
				result.fail("leftover", "%s does not match %s", s.renderer.RenderValue(v), s.describe(s.wildcard.ValueMatcher()))
			}
		}
	}

	result.Matched = len(result.Failures) == 0
	return result
}

// Matches is shorthand for Match(args).Matched
func (s *MatcherSpec) Matches(args Arguments) bool {
	return s.Match(args).Matched
}
