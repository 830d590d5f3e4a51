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
	"sync"
)

// A Call is the record of one invocation of a Spy.
//
// Arguments and receiver are fixed when the call starts. Only the spy that recorded the call
// appends its iterable events and final response, in the order they occur.
type Call struct {
	eventStamp
	spy      *Spy
	index    int
	receiver interface{}
	args     Arguments

	mutex    sync.Mutex
	response *ResponseEvent
	events   []*IterableEvent
}

func (c *Call) Call() *Call { return c }

// Spy that recorded this call
func (c *Call) Spy() *Spy { return c.spy }

// Index of this call within its spy's calls
func (c *Call) Index() int { return c.index }

func (c *Call) Receiver() interface{} { return c.receiver }

func (c *Call) Arguments() Arguments { return c.args }

// Response returns nil if the call has not yet returned or panicked
func (c *Call) Response() *ResponseEvent {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.response
}

func (c *Call) IterableEvents() []*IterableEvent {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]*IterableEvent(nil), c.events...)
}

func (c *Call) String() string {
	return c.spy.facade.renderer.RenderCall(c)
}

func (c *Call) recordResponse(kind ResponseKind, values []interface{}, thrown interface{}) *ResponseEvent {
	stamp := c.spy.facade.stamp()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.response != nil {
		return c.response
	}
	c.response = &ResponseEvent{eventStamp: stamp, call: c, kind: kind, values: values, thrown: thrown}
	return c.response
}

func (c *Call) recordIterable(kind IterableEventKind, key interface{}, value interface{}, err error) *IterableEvent {
	stamp := c.spy.facade.stamp()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e := &IterableEvent{eventStamp: stamp, call: c, kind: kind, key: key, value: value, err: err}
	c.events = append(c.events, e)
	return e
}

// Verify verifies this single call, reporting failures to the facade's T.
//
// Only singular cardinalities (at most once) make sense for one call; the default is AtLeast(1).
func (c *Call) Verify(cardinality ...Cardinality) *Verifier {
	return newVerifier(c.spy.facade, callSubject{c}, cardinality)
}

// Check is Verify without reporting; failures are returned as errors.
func (c *Call) Check(cardinality ...Cardinality) *Checker {
	return newChecker(c.spy.facade, callSubject{c}, cardinality)
}
