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
	"regexp"
	"testing"
)

// TDouble is a test double for T, itself built from a TestDouble.
//
// Fatalf panics, so the code under test stops where a real testing.T would.
type TDouble struct {
	*TestDouble
	real *testing.T
}

func NewTDouble(t *testing.T) *TDouble {
	td := &TDouble{TestDouble: NewFacade(t).Double((*T)(nil)), real: t}
	td.SetReceiver(td)
	td.Fake("Fatalf", td.FakeFatalf)
	return td
}

func (t *TDouble) Errorf(format string, args ...interface{}) {
	t.real.Helper()
	t.Invoke("Errorf", format, args)
}

func (t *TDouble) Fatalf(format string, args ...interface{}) {
	t.real.Helper()
	t.Invoke("Fatalf", format, args)
}

func (t *TDouble) FakeFatalf(format string, args ...interface{}) {
	panic(fmt.Errorf(format, args...))
}

func (t *TDouble) Logf(format string, args ...interface{}) {
	t.real.Helper()
	t.Invoke("Logf", format, args)
}

func (t *TDouble) Helper() {
	t.Invoke("Helper")
}

// messages formats each recorded call to a printf style method
func (t *TDouble) messages(method string) []string {
	var msgs []string
	for _, call := range t.Spy(method).Calls() {
		all := call.Arguments().All()
		msgs = append(msgs, fmt.Sprintf(all[0].(string), all[1:]...))
	}
	return msgs
}

func (t *TDouble) Errors() []string { return t.messages("Errorf") }
func (t *TDouble) Fatals() []string { return t.messages("Fatalf") }
func (t *TDouble) Logs() []string   { return t.messages("Logf") }

// Fatally runs f, recovering the panic raised by FakeFatalf
func (t *TDouble) Fatally(f func()) (fatal bool) {
	t.real.Helper()
	defer func() {
		if e := recover(); e != nil {
			fatal = true
		}
	}()
	f()
	return false
}

// printfMatcher matches the format argument of a printf style call whose formatted message matches re.
// Use with AnyArgs() for the format arguments.
func printfMatcher(re string) Matcher {
	exp := regexp.MustCompile(re)
	return Func(func(format string) bool {
		return exp.MatchString(format)
	}, fmt.Sprintf("/%s/", re))
}
