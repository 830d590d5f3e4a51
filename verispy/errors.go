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
	"strings"
)

// Error is a constant error kind. Structured errors in this package unwrap to one of these.
type Error string

func (err Error) Error() string { return string(err) }

const (
	ErrInvalidCardinality         Error = "invalid cardinality"
	ErrInvalidSingularCardinality Error = "invalid singular cardinality"
	ErrUndefinedIndex             Error = "undefined index"
	ErrMultipleWildcards          Error = "multiple wildcard matchers"
	ErrPositionalAfterWildcard    Error = "positional matcher after wildcard"
	ErrDuplicateMatcher           Error = "duplicate matcher for parameter"
	ErrInvalidWildcard            Error = "invalid wildcard arity"
	ErrAssertionFailed            Error = "assertion failed"
	ErrUnusedStubCriteria         Error = "unused stub criteria"
	ErrInvalidConfig              Error = "invalid config"
)

// InvalidCardinalityError reports a cardinality with contradictory bounds, or one used where only a
// singular (at most once) cardinality makes sense.
type InvalidCardinalityError struct {
	Minimum  int
	Maximum  int
	Always   bool
	Singular bool
}

func (e *InvalidCardinalityError) Error() string {
	c := Cardinality{min: e.Minimum, max: e.Maximum, always: e.Always}
	if e.Singular {
		return fmt.Sprintf("%s: %v cannot be used for a single call", ErrInvalidSingularCardinality, c)
	}
	return fmt.Sprintf("%s: minimum %d, maximum %s", ErrInvalidCardinality, e.Minimum, c.maximumString())
}

func (e *InvalidCardinalityError) Unwrap() error {
	if e.Singular {
		return ErrInvalidSingularCardinality
	}
	return ErrInvalidCardinality
}

// UndefinedIndexError reports a request for a call, event or argument that does not exist.
type UndefinedIndexError struct {
	// Kind is what was requested, "call", "event" or "argument"
	Kind  string
	Index int
	Cause error
}

func (e *UndefinedIndexError) Error() string {
	msg := fmt.Sprintf("%s: no %s defined for index %d", ErrUndefinedIndex, e.Kind, e.Index)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *UndefinedIndexError) Unwrap() error {
	return ErrUndefinedIndex
}

// MatcherSpecError reports a malformed list of matchers. Position is the offending argument
// index in the list supplied to MatcherFactory.Spec.
type MatcherSpecError struct {
	Reason   Error
	Position int
	Detail   string
}

func (e *MatcherSpecError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at argument %d: %s", e.Reason, e.Position, e.Detail)
	}
	return fmt.Sprintf("%s at argument %d", e.Reason, e.Position)
}

func (e *MatcherSpecError) Unwrap() error {
	return e.Reason
}

// AssertionError is a verification that was not satisfied by the recorded calls.
type AssertionError struct {
	// Subject is the label of the spy or call that was verified
	Subject string
	// Expected describes the criteria, eg "called with \"a\", <any>*"
	Expected string
	// Cardinality is nil for ordering failures
	Cardinality *Cardinality
	// Count of matching calls found
	Count int
	// Calls rendered in the description
	Calls []*Call
	// Actual is the rendered call history
	Actual []string
	// Diff against the closest call, when there is one
	Diff string
	// Pair identifies the adjacent results that violated an in order verification
	Pair [2]int
}

func (e *AssertionError) Error() string {
	sb := strings.Builder{}
	if e.Cardinality != nil {
		fmt.Fprintf(&sb, "expected %v %s %s, found %d", e.Subject, e.Expected, e.Cardinality, e.Count)
	} else {
		fmt.Fprintf(&sb, "expected %s", e.Expected)
	}
	if e.Diff != "" {
		sb.WriteString("\nclosest call:\n    ")
		sb.WriteString(e.Diff)
	}
	if len(e.Actual) == 0 {
		if e.Cardinality != nil {
			sb.WriteString("\nno calls recorded")
		}
	} else {
		sb.WriteString("\nactual:")
		for _, line := range e.Actual {
			sb.WriteString("\n    - ")
			sb.WriteString(line)
		}
	}
	return sb.String()
}

func (e *AssertionError) Unwrap() error {
	return ErrAssertionFailed
}

// UnusedStubCriteriaError reports a stub whose matching criteria were never evaluated against a call
type UnusedStubCriteriaError struct {
	Stub string
}

func (e *UnusedStubCriteriaError) Error() string {
	return fmt.Sprintf("%s: %s was never evaluated", ErrUnusedStubCriteria, e.Stub)
}

func (e *UnusedStubCriteriaError) Unwrap() error {
	return ErrUnusedStubCriteria
}
