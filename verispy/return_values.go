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
	"math/rand"
	"sync"
	"time"
)

var errNoValues = errors.New("no available values")

// ReturnValues implementations generate values in response to spy invocations
type ReturnValues interface {

	//Receive is called when a spy is invoked
	//
	// non nil error response will fatally terminate the test
	Receive() ([]interface{}, error)
}

// multiValues can be received from more than once
type multiValues interface {
	ReturnValues
	multiValued() bool
}

// A Timewarp can be used to simulate a sleep, eg when testing using a fake clock.
// The canonical sleeper is
//   time.After
type Timewarp func(d time.Duration) <-chan time.Time

// toReturnValues treats a single ReturnValues argument as is, anything else as fixed Values
func toReturnValues(values []interface{}) ReturnValues {
	if len(values) == 1 {
		if rv, isRv := values[0].(ReturnValues); isRv {
			return rv
		}
	}
	return Values(values...)
}

type fixedReturnValues []interface{}

func (v fixedReturnValues) Receive() ([]interface{}, error) {
	return v, nil
}

// Values stores a fixed set of values returned for every invocation
func Values(values ...interface{}) ReturnValues {
	return fixedReturnValues(values)
}

// ReturnChannel provides channel semantics for returning values from spy invocations
type ReturnChannel interface {

	//Send a list of return values
	Send(...interface{})

	//Close the channel, subsequent invocations that need values will cause the test to fail fatally
	Close()

	//Set a timeout. If the timeout expires before a Value is available on the channel
	//  ( via Send() ) the test will fail fatally.
	SetTimeout(timeout time.Duration, sleeper ...Timewarp)

	ReturnValues
}

// NewReturnChannel generates return values for successive invocations.
// It will return errors if the channel is closed
//
// Use the optional bufferSize parameter with a non-zero Value to create a buffered channel.
//
// Use SetTimeout() to override the default timeout of 200 ms.
func NewReturnChannel(bufferSize ...int) ReturnChannel {
	bufSize := 0
	for _, size := range bufferSize {
		bufSize += size
	}
	return &returnChannel{
		values:  make(chan []interface{}, bufSize),
		timeout: 200 * time.Millisecond,
		sleeper: time.After,
	}
}

type returnChannel struct {
	values  chan []interface{}
	timeout time.Duration
	sleeper Timewarp
}

func (rc *returnChannel) multiValued() bool { return true }

func (rc *returnChannel) Receive() (returns []interface{}, err error) {
	select {
	case generatedReturns, ok := <-rc.values:
		if ok {
			returns = generatedReturns
		} else {
			err = errors.New("requested values from closed return channel")
		}
	case <-rc.sleeper(rc.timeout):
		err = errors.New("timed out waiting for return channel to provide values")
	}
	return
}

func (rc *returnChannel) Send(returnValues ...interface{}) {
	rc.values <- returnValues
}

func (rc *returnChannel) Close() {
	close(rc.values)
}

//Max time to wait for a Value from the channel before failing the test
func (rc *returnChannel) SetTimeout(timeout time.Duration, sleeper ...Timewarp) {
	if len(sleeper) > 0 {
		rc.sleeper = sleeper[0]
	}
	rc.timeout = timeout
}

type delayedReturnValues struct {
	ReturnValues
	delayer func() time.Duration
	sleeper Timewarp
}

func (d *delayedReturnValues) Receive() ([]interface{}, error) {
	//Simulate IO delay / long poll etc
	<-d.sleeper(d.delayer())
	return d.ReturnValues.Receive()
}

func (d *delayedReturnValues) multiValued() bool {
	mv, isMulti := d.ReturnValues.(multiValues)
	return isMulti && mv.multiValued()
}

func newDelayedReturnValues(rv ReturnValues, f func() time.Duration, sleeper ...Timewarp) ReturnValues {
	sf := time.After
	if len(sleeper) > 0 {
		sf = sleeper[0]
	}
	return &delayedReturnValues{ReturnValues: rv, delayer: f, sleeper: sf}
}

// Delayed wraps the ReturnValues rv with a fixed delay of 'by' duration
//
// Useful to simulate an asynchronous IO request, allowing other goroutines to run
// while waiting for the response.
//
// An optional sleeper function, defaulting to time.After, can be provided. eg for use with fake clock
func Delayed(rv ReturnValues, by time.Duration, sleep ...Timewarp) ReturnValues {
	return newDelayedReturnValues(rv, func() time.Duration { return by }, sleep...)
}

// RandDelayed wraps the ReturnValues rv with a delay of up to 'max' duration
func RandDelayed(rv ReturnValues, max time.Duration, sleep ...Timewarp) ReturnValues {
	return newDelayedReturnValues(rv, func() time.Duration { return time.Duration(rand.Int63n(int64(max))) }, sleep...)
}

type sequentialReturnValues struct {
	mutex  sync.Mutex
	values []ReturnValues
}

func (s *sequentialReturnValues) multiValued() bool { return true }

// Receive takes from the first remaining ReturnValues, moving on once it is exhausted.
// Single valued ReturnValues are used once.
func (s *sequentialReturnValues) Receive() ([]interface{}, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for len(s.values) > 0 {
		rv := s.values[0]
		if mv, isMultiValue := rv.(multiValues); isMultiValue && mv.multiValued() {
			if result, err := mv.Receive(); err == nil {
				return result, nil
			}
			s.values = s.values[1:]
			continue
		}
		s.values = s.values[1:]
		if result, err := rv.Receive(); err == nil {
			return result, nil
		}
	}
	return nil, errNoValues
}

//Sequence returns values from each of 'values' until there are no further values available
func Sequence(values ...ReturnValues) ReturnValues {
	return &sequentialReturnValues{values: values}
}
