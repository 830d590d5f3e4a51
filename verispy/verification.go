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
	"errors"
	"fmt"

	"github.com/lwoggardner/verispy/difference"
	"github.com/stretchr/testify/assert"
)

// subject is what a verification counts over: every call of a spy, or one call
type subject interface {
	label() string
	calls() []*Call
	signature() Signature
	// singular subjects only accept cardinalities of at most once
	singular() bool
}

type callSubject struct {
	call *Call
}

func (s callSubject) label() string        { return fmt.Sprintf("%v call #%d", s.call.spy, s.call.index) }
func (s callSubject) calls() []*Call       { return []*Call{s.call} }
func (s callSubject) signature() Signature { return s.call.spy.signature }
func (s callSubject) singular() bool       { return true }

/*
A Checker verifies calls against a Cardinality, returning the EventCollection of matching events,
or an error.

Errors are an *AssertionError when the recorded calls do not satisfy the verification, or a programming
error (*InvalidCardinalityError, *MatcherSpecError) when the verification itself is malformed.
*/
type Checker struct {
	facade      *Facade
	subject     subject
	cardinality Cardinality
	err         error
}

func newChecker(f *Facade, s subject, cardinality []Cardinality) *Checker {
	c := &Checker{facade: f, subject: s, cardinality: AtLeast(1)}
	if len(cardinality) > 0 {
		c.cardinality = cardinality[0]
	}
	if s.singular() {
		c.err = c.cardinality.AssertSingular()
	}
	return c
}

func (c *Checker) Cardinality() Cardinality {
	return c.cardinality
}

// verify counts the calls for which match returns events and judges the count against the cardinality
func (c *Checker) verify(expected string, match func(call *Call) []Event, closest func(calls []*Call) string) (*EventCollection, error) {
	if c.err != nil {
		return nil, c.err
	}
	calls := c.subject.calls()
	var events []Event
	count := 0
	for _, call := range calls {
		if matched := match(call); len(matched) > 0 {
			count++
			events = append(events, matched...)
		}
	}

	if c.cardinality.Matches(count, len(calls)) {
		return newEventCollection(events), nil
	}

	cardinality := c.cardinality
	failure := &AssertionError{
		Subject:     c.subject.label(),
		Expected:    expected,
		Cardinality: &cardinality,
		Count:       count,
		Calls:       calls,
		Actual:      c.renderCalls(calls),
	}
	if closest != nil && c.facade.config.Diff && len(calls) > 0 {
		failure.Diff = closest(calls)
	}
	return nil, failure
}

func (c *Checker) renderCalls(calls []*Call) []string {
	limit := c.facade.config.MaxRenderedCalls
	var lines []string
	for i, call := range calls {
		if limit > 0 && i >= limit {
			lines = append(lines, fmt.Sprintf("... and %d more", len(calls)-limit))
			break
		}
		lines = append(lines, c.facade.renderer.RenderCall(call))
	}
	return lines
}

func callEvent(call *Call) []Event {
	return []Event{call}
}

// Called verifies the number of calls
func (c *Checker) Called() (*EventCollection, error) {
	return c.verify("called", callEvent, nil)
}

/*
CalledWith verifies the number of calls whose arguments match args.

See MatcherFactory.Spec for how args are interpreted. On failure the diagnostic includes a diff between
the expected matchers and the closest call, the one satisfying the most matchers (earliest on ties).
*/
func (c *Checker) CalledWith(args ...interface{}) (*EventCollection, error) {
	if c.err != nil {
		return nil, c.err
	}
	spec, err := c.facade.matchers.Spec(c.subject.signature(), args...)
	if err != nil {
		return nil, err
	}
	match := func(call *Call) []Event {
		if spec.Matches(call.args) {
			return callEvent(call)
		}
		return nil
	}
	closest := func(calls []*Call) string {
		best, bestSatisfied := calls[0], -1
		for _, call := range calls {
			if r := spec.Match(call.args); r.Satisfied > bestSatisfied {
				best, bestSatisfied = call, r.Satisfied
			}
		}
		return difference.Annotate(c.facade.renderer.RenderArguments(best.args), spec.expectedTokens(best.args), ", ")
	}
	return c.verify("called with "+spec.String(), match, closest)
}

/*
CalledOn verifies the number of calls made on receiver.

receiver may be a Matcher or a value with a registered adapter. Otherwise pointers and channels are compared
by identity and anything else by equal content.
*/
func (c *Checker) CalledOn(receiver interface{}) (*EventCollection, error) {
	m := c.receiverMatcher(receiver)
	return c.verify("called on "+c.describe(m), func(call *Call) []Event {
		if m.Matches(call.receiver) {
			return callEvent(call)
		}
		return nil
	}, nil)
}

func (c *Checker) describe(m Matcher) string {
	return describeWith(c.facade.renderer, m)
}

func (c *Checker) receiverMatcher(receiver interface{}) Matcher {
	if m, isAdapted := c.facade.matchers.adapters.adaptRegistered(receiver); isAdapted {
		return m
	}
	return Wrapped(func(v interface{}) bool {
		return sameValue(receiver, v)
	}, c.facade.renderer.RenderValue(receiver))
}

/*
Returned verifies the number of calls that returned.

With no values any return matches, otherwise each returned value must match the corresponding value.
*/
func (c *Checker) Returned(values ...interface{}) (*EventCollection, error) {
	matchers := adaptAll(c.facade.matchers.Adapters(), values)
	expected := "returned"
	if len(values) > 0 {
		expected = "returned " + matchers.toString(c.facade.renderer, "", '(', ')')
	}
	return c.verify(expected, func(call *Call) []Event {
		response := call.Response()
		if response == nil || response.kind != Returned {
			return nil
		}
		if len(values) > 0 {
			if len(response.values) != len(matchers) {
				return nil
			}
			for i, m := range matchers {
				if !m.Matches(response.values[i]) {
					return nil
				}
			}
		}
		return []Event{response}
	}, nil)
}

/*
Threw verifies the number of calls that panicked.

With no matcher any panic matches. An error value matches a panic value via errors.Is,
anything else is adapted to a Matcher.
*/
func (c *Checker) Threw(matcher ...interface{}) (*EventCollection, error) {
	m := c.thrownMatcher(matcher)
	return c.verify("panicked with "+c.describe(m), func(call *Call) []Event {
		response := call.Response()
		if response != nil && response.kind == Threw && m.Matches(response.thrown) {
			return []Event{response}
		}
		return nil
	}, nil)
}

func (c *Checker) thrownMatcher(matcher []interface{}) Matcher {
	if len(matcher) == 0 {
		return AnyValue()
	}
	if m, isAdapted := c.facade.matchers.adapters.adaptRegistered(matcher[0]); isAdapted {
		return m
	}
	if expected, isErr := matcher[0].(error); isErr {
		return c.errorMatcher(expected)
	}
	return c.facade.matchers.Adapt(matcher[0])
}

func (c *Checker) errorMatcher(expected error) Matcher {
	return Wrapped(func(v interface{}) bool {
		actual, isErr := v.(error)
		return isErr && (errors.Is(actual, expected) || assert.ObjectsAreEqual(expected, actual))
	}, c.facade.renderer.RenderValue(expected))
}

func (c *Checker) iterable(expected string, kind IterableEventKind, match func(e *IterableEvent) bool) (*EventCollection, error) {
	return c.verify(expected, func(call *Call) []Event {
		var events []Event
		for _, e := range call.IterableEvents() {
			if e.kind == kind && match(e) {
				events = append(events, e)
			}
		}
		return events
	}, nil)
}

/*
Produced verifies the number of calls whose iterable produced a matching pair.

With no arguments any produced pair matches, one argument matches the value, two arguments match key and value.
*/
func (c *Checker) Produced(keyOrValue ...interface{}) (*EventCollection, error) {
	key, value := AnyValue(), AnyValue()
	expected := "produced"
	switch len(keyOrValue) {
	case 0:
	case 1:
		value = c.facade.matchers.Adapt(keyOrValue[0])
		expected = "produced " + c.describe(value)
	default:
		key = c.facade.matchers.Adapt(keyOrValue[0])
		value = c.facade.matchers.Adapt(keyOrValue[1])
		expected = fmt.Sprintf("produced %s: %s", c.describe(key), c.describe(value))
	}
	return c.iterable(expected, Produced, func(e *IterableEvent) bool {
		return key.Matches(e.key) && value.Matches(e.value)
	})
}

// Received verifies the number of calls whose iterable received a matching value (any value if omitted)
func (c *Checker) Received(value ...interface{}) (*EventCollection, error) {
	m := AnyValue()
	if len(value) > 0 {
		m = c.facade.matchers.Adapt(value[0])
	}
	return c.iterable("received "+c.describe(m), Received, func(e *IterableEvent) bool {
		return m.Matches(e.value)
	})
}

// ReceivedError verifies the number of calls whose iterable received a matching error (any error if omitted)
func (c *Checker) ReceivedError(matcher ...interface{}) (*EventCollection, error) {
	m := c.thrownMatcher(matcher)
	return c.iterable("received error "+c.describe(m), ReceivedError, func(e *IterableEvent) bool {
		return m.Matches(e.err)
	})
}

// Completed verifies the number of calls whose iterable was consumed to the end
func (c *Checker) Completed() (*EventCollection, error) {
	return c.iterable("completed iteration", Consumed, func(*IterableEvent) bool { return true })
}

// A Verifier is a Checker that fails the test on error.
//
// Assertion failures are reported with T.Errorf, malformed verifications with T.Fatalf.
// Failed verifications return an empty EventCollection.
type Verifier struct {
	checker *Checker
}

func newVerifier(f *Facade, s subject, cardinality []Cardinality) *Verifier {
	return &Verifier{checker: newChecker(f, s, cardinality)}
}

func (v *Verifier) report(result *EventCollection, err error) *EventCollection {
	t := v.checker.facade.t
	t.Helper()
	if err == nil {
		return result
	}
	var failure *AssertionError
	if errors.As(err, &failure) {
		t.Errorf("%v", err)
	} else {
		t.Fatalf("%v", err)
	}
	return newEventCollection(nil)
}

func (v *Verifier) Called() *EventCollection {
	v.checker.facade.t.Helper()
	return v.report(v.checker.Called())
}

func (v *Verifier) CalledWith(args ...interface{}) *EventCollection {
	v.checker.facade.t.Helper()
	return v.report(v.checker.CalledWith(args...))
}

func (v *Verifier) CalledOn(receiver interface{}) *EventCollection {
	v.checker.facade.t.Helper()
	return v.report(v.checker.CalledOn(receiver))
}

func (v *Verifier) Returned(values ...interface{}) *EventCollection {
	v.checker.facade.t.Helper()
	return v.report(v.checker.Returned(values...))
}

func (v *Verifier) Threw(matcher ...interface{}) *EventCollection {
	v.checker.facade.t.Helper()
	return v.report(v.checker.Threw(matcher...))
}

func (v *Verifier) Produced(keyOrValue ...interface{}) *EventCollection {
	v.checker.facade.t.Helper()
	return v.report(v.checker.Produced(keyOrValue...))
}

func (v *Verifier) Received(value ...interface{}) *EventCollection {
	v.checker.facade.t.Helper()
	return v.report(v.checker.Received(value...))
}

func (v *Verifier) ReceivedError(matcher ...interface{}) *EventCollection {
	v.checker.facade.t.Helper()
	return v.report(v.checker.ReceivedError(matcher...))
}

func (v *Verifier) Completed() *EventCollection {
	v.checker.facade.t.Helper()
	return v.report(v.checker.Completed())
}
