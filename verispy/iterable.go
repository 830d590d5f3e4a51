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
	"iter"
	"sync"
)

// recordingSeq wraps seq so each range over it records used, produced and (when exhausted) consumed events on call
func recordingSeq(call *Call, seq iter.Seq2[interface{}, interface{}]) iter.Seq2[interface{}, interface{}] {
	return func(yield func(interface{}, interface{}) bool) {
		call.recordIterable(Used, nil, nil, nil)
		for k, v := range seq {
			call.recordIterable(Produced, k, v, nil)
			if !yield(k, v) {
				return
			}
		}
		call.recordIterable(Consumed, nil, nil, nil)
	}
}

/*
A Generator is a pull style iterator returned by a spy stubbed with ReturningGenerator.

Values and errors sent to the generator are recorded as received events before the next pair is pulled,
so a test can verify what the system under test fed back into the iteration.
*/
type Generator struct {
	call *Call
	seq  iter.Seq2[interface{}, interface{}]

	mutex sync.Mutex
	next  func() (interface{}, interface{}, bool)
	stop  func()
	done  bool
}

func newGenerator(call *Call, seq iter.Seq2[interface{}, interface{}]) *Generator {
	return &Generator{call: call, seq: seq}
}

// Call that returned this generator
func (g *Generator) Call() *Call {
	return g.call
}

// Next returns the next key and value, ok is false once the generator is exhausted or stopped
func (g *Generator) Next() (key interface{}, value interface{}, ok bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.pull()
}

// Send records value as received then returns the next pair
func (g *Generator) Send(value interface{}) (key interface{}, next interface{}, ok bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.start()
	if g.done {
		return nil, nil, false
	}
	g.call.recordIterable(Received, nil, value, nil)
	return g.pull()
}

// Throw records err as received then returns the next pair
func (g *Generator) Throw(err error) (key interface{}, value interface{}, ok bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.start()
	if g.done {
		return nil, nil, false
	}
	g.call.recordIterable(ReceivedError, nil, nil, err)
	return g.pull()
}

// Stop releases the underlying sequence. Further calls to Next return ok false.
func (g *Generator) Stop() {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.stop != nil {
		g.stop()
	}
	g.done = true
}

func (g *Generator) start() {
	if g.next == nil && !g.done {
		g.next, g.stop = iter.Pull2(g.seq)
		g.call.recordIterable(Used, nil, nil, nil)
	}
}

func (g *Generator) pull() (interface{}, interface{}, bool) {
	g.start()
	if g.done {
		return nil, nil, false
	}
	k, v, ok := g.next()
	if !ok {
		g.done = true
		g.stop()
		g.call.recordIterable(Consumed, nil, nil, nil)
		return nil, nil, false
	}
	g.call.recordIterable(Produced, k, v, nil)
	return k, v, true
}
