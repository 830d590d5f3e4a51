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
	"sort"
	"time"
)

// An Event is something that happened to a spy: a Call, its response, or an iterable sub-event.
//
// Sequence numbers are allocated from the Facade's sequencer and give a total order of events across all spies.
type Event interface {
	Sequence() uint64
	Time() time.Time
	// Call is the call this event belongs to (a Call returns itself)
	Call() *Call
}

type eventStamp struct {
	sequence uint64
	time     time.Time
}

func (e eventStamp) Sequence() uint64 { return e.sequence }
func (e eventStamp) Time() time.Time  { return e.time }

// ResponseKind is how a call completed
type ResponseKind int

const (
	NoResponse ResponseKind = iota
	Returned
	Threw
)

func (k ResponseKind) String() string {
	switch k {
	case Returned:
		return "returned"
	case Threw:
		return "threw"
	default:
		return "no response"
	}
}

// ResponseEvent records a call returning values or panicking
type ResponseEvent struct {
	eventStamp
	call   *Call
	kind   ResponseKind
	values []interface{}
	thrown interface{}
}

func (r *ResponseEvent) Call() *Call         { return r.call }
func (r *ResponseEvent) Kind() ResponseKind  { return r.kind }
func (r *ResponseEvent) Thrown() interface{} { return r.thrown }

// Values are the returned values
func (r *ResponseEvent) Values() []interface{} {
	return append([]interface{}(nil), r.values...)
}

// IterableEventKind distinguishes the interactions with an iterable returned from a call
type IterableEventKind int

const (
	// Used is the first interaction with the iterable
	Used IterableEventKind = iota
	Produced
	Received
	ReceivedError
	// Consumed is recorded when the iterable is exhausted
	Consumed
)

func (k IterableEventKind) String() string {
	switch k {
	case Used:
		return "used"
	case Produced:
		return "produced"
	case Received:
		return "received"
	case ReceivedError:
		return "received error"
	case Consumed:
		return "consumed"
	default:
		return fmt.Sprintf("IterableEventKind(%d)", int(k))
	}
}

// IterableEvent is a sub-event of a call that returned an iterable
type IterableEvent struct {
	eventStamp
	call  *Call
	kind  IterableEventKind
	key   interface{}
	value interface{}
	err   error
}

func (e *IterableEvent) Call() *Call             { return e.call }
func (e *IterableEvent) Kind() IterableEventKind { return e.kind }
func (e *IterableEvent) Key() interface{}        { return e.key }
func (e *IterableEvent) Value() interface{}      { return e.value }
func (e *IterableEvent) Err() error              { return e.err }

func (e *IterableEvent) String() string {
	r := e.call.spy.facade.renderer
	switch e.kind {
	case Produced:
		return fmt.Sprintf("produced %v: %v", r.RenderValue(e.key), r.RenderValue(e.value))
	case Received:
		return fmt.Sprintf("received %v", r.RenderValue(e.value))
	case ReceivedError:
		return fmt.Sprintf("received error %v", e.err)
	default:
		return e.kind.String()
	}
}

// EventCollection is the ordered set of events that satisfied a verification.
type EventCollection struct {
	events []Event
}

func newEventCollection(events []Event) *EventCollection {
	return &EventCollection{events: events}
}

func (c *EventCollection) HasEvents() bool {
	return c != nil && len(c.events) > 0
}

func (c *EventCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.events)
}

// Events returns a copy of the events
func (c *EventCollection) Events() []Event {
	if c == nil {
		return nil
	}
	return append([]Event(nil), c.events...)
}

// Calls returns the distinct calls the events belong to, in order of first appearance
func (c *EventCollection) Calls() []*Call {
	var calls []*Call
	seen := map[*Call]bool{}
	for _, e := range c.Events() {
		if call := e.Call(); !seen[call] {
			seen[call] = true
			calls = append(calls, call)
		}
	}
	return calls
}

// EventAt returns event i. Negative indices count back from the last event.
func (c *EventCollection) EventAt(i int) (Event, error) {
	n := c.Len()
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil, &UndefinedIndexError{Kind: "event", Index: i}
	}
	return c.events[idx], nil
}

func (c *EventCollection) FirstEvent() (Event, error) {
	return c.EventAt(0)
}

func (c *EventCollection) LastEvent() (Event, error) {
	return c.EventAt(-1)
}

// mergeEvents returns the distinct events of all collections sorted by sequence
func mergeEvents(collections []*EventCollection) *EventCollection {
	var merged []Event
	seen := map[Event]bool{}
	for _, c := range collections {
		for _, e := range c.Events() {
			if !seen[e] {
				seen[e] = true
				merged = append(merged, e)
			}
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Sequence() < merged[j].Sequence() })
	return newEventCollection(merged)
}
