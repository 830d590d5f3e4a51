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
	"sync"
)

/*
A TestDouble is an object that can substitute for a concrete implementation of an interface
in a 4 phase testing framework (Setup, Exercise, Verify, Teardown).

Every method of the interface is backed by a Spy, so all invocations are recorded.

Setup phase

Stub - Returns known values in response to calls whose arguments match

Expect - Registers a verification on the number of matching calls, checked by Verify()

Spy - Configures the response for calls that match no stub, and later verifies recorded calls

Fake - A substitute implementation for the method

Exercise phase

Any methods invoked on the double are sent to the first matching stub. If no stub matches,
the fake is invoked if one is installed, otherwise the method's spy responds (zero values by default).

Verify phase

Verify() asserts expectations are met, and that every stub's matching criteria were evaluated at least once.
*/
type TestDouble struct {
	facade       *Facade
	forInterface reflect.Type
	receiver     interface{}
	methods      map[string]*method
	ordered      []*method
}

/*
Double constructs a TestDouble for forInterface, the nil implementation of an interface - (*Iface)(nil)

Each method gets a spy labelled Iface.Method whose signature has positional parameters arg0, arg1...
*/
func (f *Facade) Double(forInterface interface{}) *TestDouble {
	f.t.Helper()
	doubleFor := reflect.TypeOf(forInterface)

	if doubleFor == nil || doubleFor.Kind() != reflect.Ptr || doubleFor.Elem().Kind() != reflect.Interface {
		f.t.Fatalf("Expecting '%v' to be a pointer to nil interface", forInterface)
		return nil
	}
	doubleFor = doubleFor.Elem()

	double := &TestDouble{
		facade:       f,
		forInterface: doubleFor,
		methods:      make(map[string]*method, doubleFor.NumMethod()),
	}
	double.receiver = double

	for i := 0; i < doubleFor.NumMethod(); i++ {
		m := newMethod(double, doubleFor.Method(i))
		double.methods[m.m.Name] = m
		double.ordered = append(double.ordered, m)
	}
	return double
}

func (d *TestDouble) String() string {
	return fmt.Sprintf("DoubleFor(%v)", d.forInterface)
}

func (d *TestDouble) Facade() *Facade {
	return d.facade
}

// SetReceiver sets the receiver recorded on each call, by default the TestDouble itself.
//
// Implementations that wrap a double usually set themselves so calls can be verified with CalledOn.
func (d *TestDouble) SetReceiver(receiver interface{}) {
	d.receiver = receiver
}

func (d *TestDouble) method(methodName string, action string) *method {
	d.facade.t.Helper()
	m, found := d.methods[methodName]
	if !found {
		d.facade.t.Fatalf("Cannot %s non existent method %s for %v", action, methodName, d)
	}
	return m
}

/*
Stub adds and returns a StubbedCall for methodName.

By default a StubbedCall matches any arguments and returns zero values for all outputs.
The first stub matching the invocation arguments provides the response.
*/
func (d *TestDouble) Stub(methodName string) *StubbedCall {
	d.facade.t.Helper()
	m := d.method(methodName, "Stub")
	if m == nil {
		return nil
	}
	stub := &StubbedCall{method: m}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.stubs = append(m.stubs, stub)
	return stub
}

// Spy returns the spy recording all calls to methodName
func (d *TestDouble) Spy(methodName string) *Spy {
	d.facade.t.Helper()
	if m := d.method(methodName, "Spy on"); m != nil {
		return m.spy
	}
	return nil
}

/*
Fake installs impl, which must have the same signature as the method, as the response for calls
that match no stub. Only one fake is installed for a method.

impl is invoked via reflection. The call is recorded on the method's spy, which is returned.
*/
func (d *TestDouble) Fake(methodName string, impl interface{}) *Spy {
	t := d.facade.t
	t.Helper()
	m := d.method(methodName, "Fake")
	if m == nil {
		return nil
	}
	implF := reflect.ValueOf(impl)
	if !implF.IsValid() {
		t.Fatalf("nil fake for %s", m)
		return nil
	}
	AssertMethodSignature(t, m.m, implF.Type())

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.fake = implF
	return m.spy
}

/*
Expect registers a verification that methodName is called cardinality times with arguments matching args
(any arguments if none are given). Expectations are checked by Verify().
*/
func (d *TestDouble) Expect(methodName string, cardinality Cardinality, args ...interface{}) *Expectation {
	t := d.facade.t
	t.Helper()
	m := d.method(methodName, "Expect")
	if m == nil {
		return nil
	}
	if len(args) > 0 {
		if _, err := d.facade.matchers.Spec(m.spy.signature, args...); err != nil {
			t.Fatalf("%v", err)
			return nil
		}
	}
	e := &Expectation{method: m, cardinality: cardinality, args: args}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.expectations = append(m.expectations, e)
	return e
}

// Verify asserts all expectations are met and all stub matching criteria have been evaluated.
func (d *TestDouble) Verify() {
	t := d.facade.t
	t.Helper()
	for _, m := range d.ordered {
		m.mutex.Lock()
		expectations := append([]*Expectation(nil), m.expectations...)
		stubs := append([]*StubbedCall(nil), m.stubs...)
		m.mutex.Unlock()

		for _, e := range expectations {
			e.verify()
		}
		for _, s := range stubs {
			if err := s.unused(); err != nil {
				t.Errorf("%v", err)
			}
		}
	}
}

/*
Invoke is called by implementations of the interface to record the invocation of a method and produce its results.

For a variadic method the last element of args is the variadic slice. Its elements are recorded as individual arguments.
The results are asserted against the method's signature.
*/
func (d *TestDouble) Invoke(methodName string, args ...interface{}) []interface{} {
	t := d.facade.t
	t.Helper()

	m, found := d.methods[methodName]
	if !found {
		t.Fatalf("Unexpected call to unknown method %v.%s", d, methodName)
		return nil
	}
	return m.invoke(args)
}

//Verifiable is anything that can verify its expectations, eg *TestDouble
type Verifiable interface {
	Verify()
}

//Verify is shorthand to Verify a set of TestDoubles
func Verify(testDoubles ...Verifiable) {
	for _, td := range testDoubles {
		td.Verify()
	}
}

type method struct {
	double *TestDouble
	m      reflect.Method
	spy    *Spy

	mutex        sync.Mutex
	stubs        []*StubbedCall
	expectations []*Expectation
	fake         reflect.Value
}

func newMethod(d *TestDouble, rm reflect.Method) *method {
	numIn := rm.Type.NumIn()
	names := make([]string, numIn)
	for i := range names {
		names[i] = fmt.Sprintf("arg%d", i)
	}
	sig := Params(names...)
	sig.Variadic = rm.Type.IsVariadic()

	m := &method{double: d, m: rm}
	m.spy = newSpy(d.facade, fmt.Sprintf("%s.%s", d.forInterface.Name(), rm.Name), sig)
	m.spy.behaviour = func(*Call) ([]interface{}, error) { return zeroValues(rm.Type), nil }
	return m
}

func (m *method) String() string {
	return fmt.Sprintf("%v.%s", m.double, m.m.Name)
}

// arguments expands a trailing variadic slice into individual positional arguments
func (m *method) arguments(args []interface{}) Arguments {
	if !m.m.Type.IsVariadic() || len(args) != m.m.Type.NumIn() {
		return NewArguments(args...)
	}
	last := len(args) - 1
	expanded := append([]interface{}(nil), args[:last]...)
	if args[last] != nil {
		variadic := reflect.ValueOf(args[last])
		if variadic.Kind() != reflect.Slice {
			return NewArguments(args...)
		}
		for i := 0; i < variadic.Len(); i++ {
			expanded = append(expanded, variadic.Index(i).Interface())
		}
	}
	return NewArguments(expanded...)
}

// respond selects the response for a call: the first matching stub, then the fake, then the spy's behaviour (nil)
func (m *method) respond(args []interface{}, callArgs Arguments) behaviour {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, stub := range m.stubs {
		if stub.matches(callArgs) {
			return stub.respond
		}
	}
	if m.fake.IsValid() {
		fake := m.fake
		return func(*Call) ([]interface{}, error) {
			return m.callFake(fake, args), nil
		}
	}
	return nil
}

func (m *method) invoke(args []interface{}) []interface{} {
	t := m.double.facade.t
	t.Helper()
	callArgs := m.arguments(args)
	returns := m.spy.invoke(m.double.receiver, callArgs, m.respond(args, callArgs))
	AssertMethodReturnValues(t, m.m, returns)
	return returns
}

func (m *method) callFake(fake reflect.Value, args []interface{}) []interface{} {
	fakeType := fake.Type()
	inArgs := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil && i < fakeType.NumIn() {
			inArgs[i] = reflect.Zero(fakeType.In(i))
		} else {
			inArgs[i] = reflect.ValueOf(arg)
		}
	}
	var returnVals []reflect.Value
	if fakeType.IsVariadic() {
		returnVals = fake.CallSlice(inArgs)
	} else {
		returnVals = fake.Call(inArgs)
	}

	if len(returnVals) == 0 {
		return nil
	}
	returns := make([]interface{}, len(returnVals))
	for j, v := range returnVals {
		returns[j] = v.Interface()
	}
	return returns
}

func zeroValues(methodType reflect.Type) []interface{} {
	if methodType.NumOut() == 0 {
		return nil
	}
	values := make([]interface{}, methodType.NumOut())
	for i := range values {
		values[i] = reflect.Zero(methodType.Out(i)).Interface()
	}
	return values
}

// StubbedCall matches a given set of arguments and returns pre-defined values.
type StubbedCall struct {
	method *method

	// guarded by method.mutex
	spec      *MatcherSpec
	evaluated bool
	response  behaviour
}

/*
Matching sets the criteria for arguments this stub responds to.

args are interpreted as for Checker.CalledWith. A malformed set of matchers fatally fails the test.
*/
func (s *StubbedCall) Matching(args ...interface{}) *StubbedCall {
	t := s.method.double.facade.t
	t.Helper()
	spec, err := s.method.double.facade.matchers.Spec(s.method.spy.signature, args...)
	if err != nil {
		t.Fatalf("%v", err)
		return s
	}
	s.method.mutex.Lock()
	defer s.method.mutex.Unlock()
	s.spec = spec
	return s
}

/*
Returning sets the values returned by this stub.

A single ReturnValues is used as is, otherwise the values are returned on every call and must be
compatible with the method's outputs.
*/
func (s *StubbedCall) Returning(values ...interface{}) *StubbedCall {
	t := s.method.double.facade.t
	t.Helper()
	rv := toReturnValues(values)
	if fixed, isFixed := rv.(fixedReturnValues); isFixed {
		AssertMethodReturnValues(t, s.method.m, fixed)
	}
	s.method.mutex.Lock()
	defer s.method.mutex.Unlock()
	s.response = func(*Call) ([]interface{}, error) { return rv.Receive() }
	return s
}

// Panicking makes calls matching this stub panic with v
func (s *StubbedCall) Panicking(v interface{}) *StubbedCall {
	s.method.mutex.Lock()
	defer s.method.mutex.Unlock()
	s.response = func(*Call) ([]interface{}, error) { panic(v) }
	return s
}

func (s *StubbedCall) String() string {
	if s.spec != nil {
		return fmt.Sprintf("%v matching %v", s.method, s.spec)
	}
	return s.method.String()
}

func (s *StubbedCall) matches(args Arguments) bool {
	if s.spec == nil {
		return true
	}
	s.evaluated = true
	return s.spec.Matches(args)
}

func (s *StubbedCall) respond(call *Call) ([]interface{}, error) {
	s.method.mutex.Lock()
	response := s.response
	s.method.mutex.Unlock()
	if response == nil {
		return zeroValues(s.method.m.Type), nil
	}
	return response(call)
}

func (s *StubbedCall) unused() error {
	s.method.mutex.Lock()
	defer s.method.mutex.Unlock()
	if s.spec != nil && !s.evaluated {
		return &UnusedStubCriteriaError{Stub: s.String()}
	}
	return nil
}

// An Expectation is a verification registered with TestDouble.Expect
type Expectation struct {
	method      *method
	cardinality Cardinality
	args        []interface{}
}

// Check evaluates the expectation now, without reporting
func (e *Expectation) Check() (*EventCollection, error) {
	checker := e.method.spy.Check(e.cardinality)
	if len(e.args) == 0 {
		return checker.Called()
	}
	return checker.CalledWith(e.args...)
}

func (e *Expectation) verify() {
	v := e.method.spy.Verify(e.cardinality)
	v.checker.facade.t.Helper()
	v.report(e.Check())
}

func (e *Expectation) String() string {
	return fmt.Sprintf("%v expected %v", e.method, e.cardinality)
}
