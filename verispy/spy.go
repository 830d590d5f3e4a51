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
	"iter"
	"sync"

	"github.com/google/uuid"
)

// behaviour produces the response to a recorded call
type behaviour func(call *Call) ([]interface{}, error)

/*
A Spy records every invocation as a Call, responds with stubbed behaviour, and verifies the recorded calls.

Setup phase

Configure the response via Returning, Panicking, Faking, ReturningSeq or ReturningGenerator.
By default a spy returns no values.

Exercise phase

Invoke (or InvokeOn) records the call and produces the response. A panic is recorded then re-raised.

Verify phase

Verify or Check the calls, with an optional Cardinality (default AtLeast(1)).
*/
type Spy struct {
	facade    *Facade
	id        uuid.UUID
	label     string
	signature Signature

	mutex     sync.Mutex
	recorded  []*Call
	behaviour behaviour
}

func newSpy(f *Facade, label string, sig Signature) *Spy {
	return &Spy{
		facade:    f,
		id:        uuid.New(),
		label:     label,
		signature: sig,
		behaviour: func(*Call) ([]interface{}, error) { return nil, nil },
	}
}

func (s *Spy) ID() uuid.UUID        { return s.id }
func (s *Spy) Label() string        { return s.label }
func (s *Spy) Signature() Signature { return s.signature }
func (s *Spy) Facade() *Facade      { return s.facade }
func (s *Spy) String() string       { return fmt.Sprintf("spy %q", s.label) }

func (s *Spy) setBehaviour(b behaviour) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.behaviour = b
}

// Returning stubs return values. A single ReturnValues is used as is, otherwise values are returned on every call.
func (s *Spy) Returning(values ...interface{}) *Spy {
	rv := toReturnValues(values)
	s.setBehaviour(func(*Call) ([]interface{}, error) { return rv.Receive() })
	return s
}

// Panicking makes every call panic with v
func (s *Spy) Panicking(v interface{}) *Spy {
	s.setBehaviour(func(*Call) ([]interface{}, error) { panic(v) })
	return s
}

// Faking responds with the result of impl
func (s *Spy) Faking(impl func(args Arguments) []interface{}) *Spy {
	s.setBehaviour(func(call *Call) ([]interface{}, error) { return impl(call.args), nil })
	return s
}

// ReturningSeq returns a sequence wrapping seq that records its use on the call that returned it
func (s *Spy) ReturningSeq(seq iter.Seq2[interface{}, interface{}]) *Spy {
	s.setBehaviour(func(call *Call) ([]interface{}, error) {
		return []interface{}{recordingSeq(call, seq)}, nil
	})
	return s
}

// ReturningGenerator returns a *Generator over seq that records its use on the call that returned it
func (s *Spy) ReturningGenerator(seq iter.Seq2[interface{}, interface{}]) *Spy {
	s.setBehaviour(func(call *Call) ([]interface{}, error) {
		return []interface{}{newGenerator(call, seq)}, nil
	})
	return s
}

// Invoke records a call with args (NamedArgument values are recorded as named arguments) and returns the stubbed values
func (s *Spy) Invoke(args ...interface{}) []interface{} {
	s.facade.t.Helper()
	return s.invoke(nil, NewArguments(args...), nil)
}

// InvokeOn is Invoke for a method call on receiver
func (s *Spy) InvokeOn(receiver interface{}, args ...interface{}) []interface{} {
	s.facade.t.Helper()
	return s.invoke(receiver, NewArguments(args...), nil)
}

func (s *Spy) record(receiver interface{}, args Arguments) *Call {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	call := &Call{
		eventStamp: s.facade.stamp(),
		spy:        s,
		index:      len(s.recorded),
		receiver:   receiver,
		args:       args,
	}
	s.recorded = append(s.recorded, call)
	return call
}

// invoke records the call and responds with respond, or the spy's behaviour when nil
func (s *Spy) invoke(receiver interface{}, args Arguments, respond behaviour) []interface{} {
	t := s.facade.t
	t.Helper()
	call := s.record(receiver, args)
	if respond == nil {
		s.mutex.Lock()
		respond = s.behaviour
		s.mutex.Unlock()
	}

	responded := false
	defer func() {
		if responded {
			return
		}
		// nil means the goroutine is exiting (eg T.Fatalf), not panicking
		if e := recover(); e != nil {
			call.recordResponse(Threw, nil, e)
			if s.facade.config.Trace {
				t.Logf("Called %v => panic! %v", call, e)
			}
			panic(e)
		}
	}()

	values, err := respond(call)
	responded = true
	if err != nil {
		t.Fatalf("No return values available for %v: %s", call, err.Error())
		return nil
	}
	call.recordResponse(Returned, values, nil)
	if s.facade.config.Trace {
		t.Logf("Called %v", call)
	}
	return values
}

// Calls returns a snapshot of the recorded calls
func (s *Spy) Calls() []*Call {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]*Call(nil), s.recorded...)
}

func (s *Spy) CallCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.recorded)
}

// CallAt returns call i. Negative indices count back from the last call.
func (s *Spy) CallAt(i int) (*Call, error) {
	calls := s.Calls()
	idx := i
	if idx < 0 {
		idx += len(calls)
	}
	if idx < 0 || idx >= len(calls) {
		return nil, &UndefinedIndexError{Kind: "call", Index: i}
	}
	return calls[idx], nil
}

func (s *Spy) FirstCall() (*Call, error) {
	return s.CallAt(0)
}

func (s *Spy) LastCall() (*Call, error) {
	return s.CallAt(-1)
}

// Verify verifies all calls to the spy, reporting failures to the facade's T
func (s *Spy) Verify(cardinality ...Cardinality) *Verifier {
	return newVerifier(s.facade, spySubject{s}, cardinality)
}

// Check is Verify without reporting; failures are returned as errors
func (s *Spy) Check(cardinality ...Cardinality) *Checker {
	return newChecker(s.facade, spySubject{s}, cardinality)
}

type spySubject struct {
	spy *Spy
}

func (s spySubject) label() string        { return s.spy.String() }
func (s spySubject) calls() []*Call       { return s.spy.Calls() }
func (s spySubject) signature() Signature { return s.spy.signature }
func (s spySubject) singular() bool       { return false }
