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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api interface {
	Lookup(key string) (int, error)
	Count() int
	Notify(msg string)
	Join(sep string, parts ...string) string
}

type apiDouble struct {
	*TestDouble
}

func newAPIDouble(t T) *apiDouble {
	d := &apiDouble{TestDouble: NewFacade(t).Double((*api)(nil))}
	d.SetReceiver(d)
	return d
}

func (a *apiDouble) Lookup(key string) (r int, e error) {
	returns := a.Invoke("Lookup", key)
	r, _ = returns[0].(int)
	e, _ = returns[1].(error)
	return
}

func (a *apiDouble) Count() int {
	return a.Invoke("Count")[0].(int)
}

func (a *apiDouble) Notify(msg string) {
	a.Invoke("Notify", msg)
}

func (a *apiDouble) Join(sep string, parts ...string) string {
	return a.Invoke("Join", sep, parts)[0].(string)
}

var _ api = (*apiDouble)(nil)

func TestDouble_FailsFatallyIfNotAnInterface(t *testing.T) {
	td := NewTDouble(t)
	assert.True(t, td.Fatally(func() { NewFacade(td).Double("string not interface") }))
	require.Len(t, td.Fatals(), 1)
	assert.Contains(t, td.Fatals()[0], "pointer to nil interface")
}

func TestDouble_ZeroValuesByDefault(t *testing.T) {
	d := newAPIDouble(t)

	assert.Equal(t, 0, d.Count())
	v, err := d.Lookup("k")
	assert.Equal(t, 0, v)
	assert.NoError(t, err)
	d.Notify("hello")

	assert.Equal(t, `spy "api.Lookup"`, d.Spy("Lookup").String())
	d.Spy("Lookup").Verify(Once()).Returned(0, nil)
	d.Spy("Notify").Verify(Once()).CalledWith("hello")
	assert.Contains(t, d.String(), "DoubleFor(")
	assert.NotNil(t, d.Facade())
}

func TestDouble_Stub(t *testing.T) {
	d := newAPIDouble(t)

	s1 := d.Stub("Lookup").Matching("second").Returning(1, nil)
	assert.Regexp(t, `Lookup matching "second"`, s1.String())
	s2 := d.Stub("Lookup").Returning(99, nil)
	assert.NotContains(t, s2.String(), "matching")

	v, _ := d.Lookup("first")
	assert.Equal(t, 99, v)
	v, _ = d.Lookup("second")
	assert.Equal(t, 1, v, "the first matching stub responds")

	d.Spy("Lookup").Verify(Twice()).Called()
	d.Spy("Lookup").Verify(Once()).Returned(1, nil)
	d.Verify()
}

func TestDouble_StubReturningSequence(t *testing.T) {
	d := newAPIDouble(t)
	d.Stub("Count").Returning(Sequence(Values(1), Values(2)))
	d.Stub("Lookup").Matching("missing").Returning(0, errBoom)

	assert.Equal(t, 1, d.Count())
	assert.Equal(t, 2, d.Count())

	_, err := d.Lookup("missing")
	assert.Equal(t, errBoom, err)
}

func TestDouble_StubPanicking(t *testing.T) {
	d := newAPIDouble(t)
	d.Stub("Notify").Matching("boom").Panicking(errBoom)

	d.Notify("quiet")
	assert.PanicsWithValue(t, errBoom, func() { d.Notify("boom") })

	notify := d.Spy("Notify")
	notify.Verify(Twice()).Called()
	notify.Verify(Once()).Threw(errBoom)
	notify.Verify(Once()).Returned()
}

func TestDouble_Fake(t *testing.T) {
	d := newAPIDouble(t)
	join := d.Fake("Join", func(sep string, parts ...string) string { return strings.Join(parts, sep) })

	assert.Equal(t, "a-b", d.Join("-", "a", "b"))
	assert.Equal(t, "", d.Join("-"))

	join.Verify(Twice()).Called()
	join.Verify(Once()).CalledWith("-", "a", "b")
	join.Verify(Once()).CalledWith("-")
	join.Verify(Twice()).CalledWith("-", AnyArgs())
	join.Verify(Once()).Returned("a-b")

	d.Stub("Join").Matching(AnyValue(), "override", AnyArgs()).Returning("stubbed")
	assert.Equal(t, "stubbed", d.Join(",", "override", "x"))
	assert.Equal(t, "x,y", d.Join(",", "x", "y"), "calls matching no stub use the fake")
}

func TestDouble_ExpectAndVerify(t *testing.T) {
	td := NewTDouble(t)
	d := newAPIDouble(td)

	e := d.Expect("Notify", Once(), "hello")
	assert.Contains(t, e.String(), "Notify expected exactly 1")
	d.Expect("Count", Never())

	d.Notify("hello")
	d.Verify()
	assert.Empty(t, td.Errors())

	result, err := e.Check()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Len())

	d.Count()
	Verify(d)
	require.Len(t, td.Errors(), 1)
	assert.Contains(t, td.Errors()[0], `spy "api.Count"`)
}

func TestDouble_VerifyReportsUnusedStubCriteria(t *testing.T) {
	td := NewTDouble(t)
	d := newAPIDouble(td)

	d.Stub("Lookup").Matching("used").Returning(1, nil)
	d.Stub("Notify").Returning()
	shadowed := d.Stub("Notify").Matching("never")

	d.Lookup("other")
	d.Notify("anything")
	d.Verify()

	require.Len(t, td.Errors(), 1)
	assert.Contains(t, td.Errors()[0], string(ErrUnusedStubCriteria))
	assert.Contains(t, td.Errors()[0], shadowed.String())
}

func TestDouble_FailsFatallyForBadInputs(t *testing.T) {
	tests := []struct {
		name        string
		bad         func(d *apiDouble)
		expectedMsg string
	}{
		{"StubInvalidMethod", func(d *apiDouble) { d.Stub("notamethod") }, "non existent method notamethod"},
		{"SpyInvalidMethod", func(d *apiDouble) { d.Spy("notamethod") }, "notamethod"},
		{"InvokeInvalidMethod", func(d *apiDouble) { d.Invoke("notamethod") }, "unknown method"},
		{"ReturningWrongType", func(d *apiDouble) { d.Stub("Count").Returning("notanint") }, "assignable to int"},
		{"ReturningWrongCount", func(d *apiDouble) { d.Stub("Lookup").Returning(1) }, "2 return values, found 1"},
		{"ReturningNilInt", func(d *apiDouble) { d.Stub("Count").Returning(nil) }, "got nil"},
		{"MatchingMalformed", func(d *apiDouble) { d.Stub("Lookup").Matching(AnyArgs(), AnyArgs()) }, string(ErrMultipleWildcards)},
		{"ExpectMalformed", func(d *apiDouble) { d.Expect("Lookup", Once(), AnyArgs(), "x") }, string(ErrPositionalAfterWildcard)},
		{"FakeWrongSignature", func(d *apiDouble) { d.Fake("Count", func() string { return "" }) }, "return value 0"},
		{"FakeNotVariadic", func(d *apiDouble) { d.Fake("Join", func(sep string, parts []string) string { return "" }) }, "variadic"},
		{"FakeNil", func(d *apiDouble) { d.Fake("Count", nil) }, "nil fake"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			td := NewTDouble(t)
			d := newAPIDouble(td)
			assert.True(t, td.Fatally(func() { test.bad(d) }), "expected a fatal failure")
			require.Len(t, td.Fatals(), 1)
			assert.Contains(t, td.Fatals()[0], test.expectedMsg)
		})
	}
}

func TestDouble_StubReturningValuesAreCheckedWhenInvoked(t *testing.T) {
	td := NewTDouble(t)
	d := newAPIDouble(td)
	d.Stub("Count").Returning(Sequence(Values("notanint")))

	assert.True(t, td.Fatally(func() { d.Count() }))
	assert.Contains(t, td.Fatals()[0], "assignable to int")
}

func TestDouble_CalledOn(t *testing.T) {
	d1 := newAPIDouble(t)
	d2 := newAPIDouble(t)

	d1.Notify("one")
	d2.Notify("two")

	d1.Spy("Notify").Verify(Once()).CalledOn(d1)
	d1.Spy("Notify").Verify(Never()).CalledOn(d2)

	call, err := d2.Spy("Notify").LastCall()
	require.NoError(t, err)
	assert.Same(t, d2, call.Receiver())
}

func TestDouble_InOrderAcrossMethods(t *testing.T) {
	d := newAPIDouble(t)
	d.Stub("Lookup").Returning(7, nil)

	d.Lookup("k")
	d.Notify("found")

	d.Facade().InOrder(
		d.Spy("Lookup").Verify().Returned(7, nil),
		d.Spy("Notify").Verify().CalledWith("found"),
	)
}
