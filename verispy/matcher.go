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
	"reflect"
	"strings"

	"github.com/stretchr/testify/assert"
)

// Matcher is a predicate over a single value
type Matcher interface {
	// Matches returns true if value matches this matcher. It must not have side effects.
	Matches(value interface{}) bool

	// Describe is used in failure diagnostics
	Describe() string
}

// renderedMatcher is a Matcher whose description includes rendered values
type renderedMatcher interface {
	describeWith(r Renderer) string
}

// describeWith describes m, rendering any values it holds with r
func describeWith(r Renderer, m Matcher) string {
	if rm, isRendered := m.(renderedMatcher); isRendered {
		return rm.describeWith(r)
	}
	return m.Describe()
}

type equalToMatcher struct {
	value interface{}
}

func (m equalToMatcher) Matches(value interface{}) bool {
	return assert.ObjectsAreEqual(m.value, value)
}

func (m equalToMatcher) Describe() string {
	return m.describeWith(defaultRenderer)
}

func (m equalToMatcher) describeWith(r Renderer) string {
	return r.RenderValue(m.value)
}

// EqualTo matches a value via reflect.DeepEqual (bytes.Equal for []byte)
func EqualTo(value interface{}) Matcher {
	return equalToMatcher{value}
}

// sameValue compares pointers and channels by identity, anything else as EqualTo does
func sameValue(expected, actual interface{}) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}
	et := reflect.TypeOf(expected)
	if et != reflect.TypeOf(actual) {
		return false
	}
	switch et.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.UnsafePointer:
		return expected == actual
	default:
		return assert.ObjectsAreEqual(expected, actual)
	}
}

type instanceOfMatcher struct {
	rt reflect.Type
}

func (m instanceOfMatcher) Matches(value interface{}) bool {
	if value == nil {
		return false
	}
	vt := reflect.TypeOf(value)
	if m.rt.Kind() == reflect.Interface {
		return vt.Implements(m.rt)
	}
	return vt.AssignableTo(m.rt)
}

func (m instanceOfMatcher) Describe() string {
	return fmt.Sprintf("<%v>", m.rt)
}

/*
InstanceOf matches a value assignable to, or implementing, t.

If t is not already a reflect.Type it is converted with reflect.TypeOf. To name an interface type
use a nil pointer to it:
	InstanceOf((*io.Reader)(nil))

Panics if t is nil, which has no type.
*/
func InstanceOf(t interface{}) Matcher {
	rt, isType := t.(reflect.Type)
	if !isType {
		rt = reflect.TypeOf(t)
		if rt == nil {
			panic("InstanceOf() expects a value, a reflect.Type or a nil pointer to an interface, got nil")
		}
		if rt.Kind() == reflect.Ptr && rt.Elem().Kind() == reflect.Interface {
			rt = rt.Elem()
		}
	}
	return instanceOfMatcher{rt}
}

type anyValueMatcher struct{}

func (anyValueMatcher) Matches(interface{}) bool { return true }
func (anyValueMatcher) Describe() string         { return "<any>" }

// AnyValue matches any single value
func AnyValue() Matcher {
	return anyValueMatcher{}
}

// WildcardMatcher matches a run of between MinimumArguments and MaximumArguments leftover arguments,
// each of which must match ValueMatcher.
type WildcardMatcher struct {
	value Matcher
	min   int
	max   int
}

// Wildcard returns a WildcardMatcher. Use Unbounded for no maximum.
//
// valueMatcher is adapted with the default adapters (nil means AnyValue).
func Wildcard(valueMatcher interface{}, min int, max int) *WildcardMatcher {
	var m Matcher
	if valueMatcher == nil {
		m = AnyValue()
	} else {
		m = defaultAdapters.Adapt(valueMatcher)
	}
	return &WildcardMatcher{value: m, min: min, max: max}
}

// AnyArgs matches any number of leftover arguments
func AnyArgs() *WildcardMatcher {
	return Wildcard(nil, 0, Unbounded)
}

func (w *WildcardMatcher) MinimumArguments() int { return w.min }
func (w *WildcardMatcher) MaximumArguments() int { return w.max }
func (w *WildcardMatcher) ValueMatcher() Matcher { return w.value }

// Matches applies the value matcher to a single value
func (w *WildcardMatcher) Matches(value interface{}) bool {
	return w.value.Matches(value)
}

// MatchesCount reports whether k leftover arguments is within the wildcard's arity
func (w *WildcardMatcher) MatchesCount(k int) bool {
	return k >= w.min && (w.max == Unbounded || k <= w.max)
}

func (w *WildcardMatcher) validate() error {
	if w.min < 0 || (w.max != Unbounded && w.max < w.min) {
		return fmt.Errorf("%w: minimum %d, maximum %d", ErrInvalidWildcard, w.min, w.max)
	}
	return nil
}

func (w *WildcardMatcher) Describe() string {
	return w.describeWith(defaultRenderer)
}

func (w *WildcardMatcher) describeWith(r Renderer) string {
	desc := describeWith(r, w.value)
	switch {
	case w.min == 0 && w.max == Unbounded:
		return desc + "*"
	case w.min == 1 && w.max == Unbounded:
		return desc + "+"
	case w.max == Unbounded:
		return fmt.Sprintf("%s{%d,}", desc, w.min)
	case w.min == w.max:
		return fmt.Sprintf("%s{%d}", desc, w.min)
	default:
		return fmt.Sprintf("%s{%d,%d}", desc, w.min, w.max)
	}
}

type funcMatcher struct {
	reflect.Value
	explanation string
}

func (f funcMatcher) Describe() string {
	return f.explanation
}

func (f funcMatcher) Matches(value interface{}) bool {
	ft := f.Type()
	var in reflect.Value
	if value == nil {
		switch ft.In(0).Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
			in = reflect.Zero(ft.In(0))
		default:
			return false
		}
	} else {
		in = reflect.ValueOf(value)
		if !in.Type().AssignableTo(ft.In(0)) {
			return false
		}
	}
	return f.Call([]reflect.Value{in})[0].Bool()
}

/*
Func returns a matcher from the arbitrary function f. Custom matchers will generally be a wrapper around Func.

f must be a func(x X) bool. Values not assignable to X do not match.
Optionally include an explanation that will be formatted to string to describe what is being matched.

Func panics if f is not a suitable function.
*/
func Func(f interface{}, explanation ...interface{}) Matcher {
	fv := reflect.ValueOf(f)
	if !fv.IsValid() || !isPredicate(fv.Type()) {
		panic(fmt.Sprintf("Func() expects a func(x X) bool, got %T", f))
	}

	var explainString string
	if len(explanation) == 0 {
		explainString = fmt.Sprintf("%T", f)
	} else {
		explainString = fmt.Sprint(explanation...)
	}

	return funcMatcher{fv, explainString}
}

type matcherList []Matcher

func (l matcherList) toString(r Renderer, prefix string, lRune rune, rRune rune) string {
	s := strings.Builder{}
	s.WriteString(prefix)
	s.WriteRune(lRune)
	for i, m := range l {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(describeWith(r, m))
	}
	s.WriteRune(rRune)
	return s.String()
}

type sliceMatcher struct {
	matcherList
}

/*
Slice matches a slice or array whose leading elements match each of matchers in turn.

Elements beyond the number of matchers are not checked.
*/
func Slice(matchers ...interface{}) Matcher {
	return &sliceMatcher{adaptAll(defaultAdapters, matchers)}
}

func (sm *sliceMatcher) Describe() string {
	return sm.describeWith(defaultRenderer)
}

func (sm *sliceMatcher) describeWith(r Renderer) string {
	return sm.toString(r, "Slice", '[', ']')
}

func (sm *sliceMatcher) Matches(value interface{}) bool {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Array, reflect.Slice:
		if v.Len() < len(sm.matcherList) {
			return false
		}
		for i, m := range sm.matcherList {
			if !m.Matches(v.Index(i).Interface()) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

type nilMatcher struct{}

func (nilMatcher) Describe() string {
	return "nil"
}

func (nilMatcher) Matches(value interface{}) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Nil matches nil, or a nil value of any nil-able type
func Nil() Matcher {
	return nilMatcher{}
}

type lenMatcher struct {
	Matcher
}

func (l lenMatcher) Describe() string {
	return l.describeWith(defaultRenderer)
}

func (l lenMatcher) describeWith(r Renderer) string {
	return fmt.Sprintf("Len(%s)", describeWith(r, l.Matcher))
}

func (l lenMatcher) Matches(value interface{}) bool {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Array, reflect.Chan, reflect.Map, reflect.Slice, reflect.String:
		return l.Matcher.Matches(v.Len())
	default:
		return false
	}
}

/*
Len matches an Array, Chan, Map, Slice or String whose length matches l

l may be anything that can match an int
eg
	Len(0)
	Len(Func(func(l int) bool { return l <= 10 }))
*/
func Len(l interface{}) Matcher {
	return lenMatcher{defaultAdapters.Adapt(l)}
}

type allOfMatcher struct {
	matcherList
}

func (a allOfMatcher) Describe() string                { return a.describeWith(defaultRenderer) }
func (a allOfMatcher) describeWith(r Renderer) string { return a.toString(r, "AllOf", '{', '}') }

func (a allOfMatcher) Matches(value interface{}) bool {
	for _, m := range a.matcherList {
		if !m.Matches(value) {
			return false
		}
	}
	return true
}

// AllOf matches if all the matchers match (true for no matchers)
func AllOf(matchers ...interface{}) Matcher {
	return allOfMatcher{adaptAll(defaultAdapters, matchers)}
}

type anyOfMatcher struct {
	matcherList
}

func (a anyOfMatcher) Describe() string                { return a.describeWith(defaultRenderer) }
func (a anyOfMatcher) describeWith(r Renderer) string { return a.toString(r, "AnyOf", '{', '}') }

func (a anyOfMatcher) Matches(value interface{}) bool {
	for _, m := range a.matcherList {
		if m.Matches(value) {
			return true
		}
	}
	return false
}

// AnyOf matches if any one of matchers match (false for no matchers)
func AnyOf(matchers ...interface{}) Matcher {
	return anyOfMatcher{adaptAll(defaultAdapters, matchers)}
}

type notMatcher struct {
	Matcher
}

func (nm notMatcher) Describe() string {
	return nm.describeWith(defaultRenderer)
}

func (nm notMatcher) describeWith(r Renderer) string {
	return fmt.Sprintf("Not(%s)", describeWith(r, nm.Matcher))
}

func (nm notMatcher) Matches(value interface{}) bool {
	return !nm.Matcher.Matches(value)
}

// Not negates matcher
func Not(matcher interface{}) Matcher {
	return notMatcher{defaultAdapters.Adapt(matcher)}
}

func adaptAll(r *AdapterRegistry, values []interface{}) matcherList {
	l := make(matcherList, len(values))
	for i, v := range values {
		l[i] = r.Adapt(v)
	}
	return l
}
