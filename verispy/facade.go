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
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

//T is compatible with builtin testing.T
type T interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
}

// Sequencer allocates the sequence numbers that order events across all spies of a Facade
type Sequencer struct {
	last uint64
}

// Next returns a new sequence number, greater than any previously returned. Safe for concurrent use.
func (s *Sequencer) Next() uint64 {
	return atomic.AddUint64(&s.last, 1)
}

/*
A Facade holds the services shared by the spies of one test: the sequencer ordering all events, the clock,
the matcher factory, the renderer and configuration.

Create one per test (or per isolated fixture), and create spies and doubles from it.
*/
type Facade struct {
	t         T
	id        uuid.UUID
	sequencer *Sequencer
	clock     func() time.Time
	matchers  *MatcherFactory
	renderer  Renderer
	config    Config
}

/*
NewFacade constructs a Facade reporting to t.

configurators are applied in order, eg WithConfig, WithClock, WithRenderer, WithAdapters
*/
func NewFacade(t T, configurators ...func(*Facade)) *Facade {
	f := &Facade{
		t:         t,
		id:        uuid.New(),
		sequencer: &Sequencer{},
		clock:     time.Now,
		config:    DefaultConfig(),
	}
	for _, c := range configurators {
		c(f)
	}
	if err := f.config.Validate(); err != nil {
		t.Fatalf("%v", err)
	}
	if f.matchers == nil {
		f.matchers = NewMatcherFactory(DefaultAdapters())
	}
	if f.renderer == nil {
		f.renderer = NewRenderer(f.config.MaxRenderLength)
	}
	f.matchers.renderer = f.renderer
	return f
}

// WithConfig replaces the default configuration
func WithConfig(config Config) func(*Facade) {
	return func(f *Facade) {
		f.config = config
	}
}

// WithClock replaces time.Now as the source of event timestamps
func WithClock(clock func() time.Time) func(*Facade) {
	return func(f *Facade) {
		f.clock = clock
	}
}

func WithRenderer(r Renderer) func(*Facade) {
	return func(f *Facade) {
		f.renderer = r
	}
}

// WithAdapters replaces the default AdapterRegistry
func WithAdapters(adapters *AdapterRegistry) func(*Facade) {
	return func(f *Facade) {
		f.matchers = NewMatcherFactory(adapters)
	}
}

// WithSequencer shares a sequencer between facades, so their events can be verified in order
func WithSequencer(s *Sequencer) func(*Facade) {
	return func(f *Facade) {
		f.sequencer = s
	}
}

// Enable tracing of all recorded calls (via T.Logf)
func (f *Facade) EnableTrace() {
	f.config.Trace = true
}

func (f *Facade) T() T                      { return f.t }
func (f *Facade) ID() uuid.UUID             { return f.id }
func (f *Facade) Config() Config            { return f.config }
func (f *Facade) Renderer() Renderer        { return f.renderer }
func (f *Facade) Matchers() *MatcherFactory { return f.matchers }
func (f *Facade) Sequencer() *Sequencer     { return f.sequencer }

func (f *Facade) String() string {
	return fmt.Sprintf("Facade(%s)", f.id)
}

func (f *Facade) stamp() eventStamp {
	return eventStamp{sequence: f.sequencer.Next(), time: f.clock()}
}

// Spy returns a new Spy labelled label. The optional signature declares parameter names for named matching.
func (f *Facade) Spy(label string, signature ...Signature) *Spy {
	var sig Signature
	if len(signature) > 0 {
		sig = signature[0]
	}
	return newSpy(f, label, sig)
}

// CheckInOrder verifies results occurred in order, returning the failure as an error
func (f *Facade) CheckInOrder(results ...*EventCollection) (*EventCollection, error) {
	return checkInOrder(f.renderer, results)
}

/*
InOrder verifies results occurred in order (see CheckInOrder).

On failure the test is failed via T.Errorf and an empty collection returned.
*/
func (f *Facade) InOrder(results ...*EventCollection) *EventCollection {
	f.t.Helper()
	merged, err := f.CheckInOrder(results...)
	if err != nil {
		f.t.Errorf("%v", err)
		return newEventCollection(nil)
	}
	return merged
}
