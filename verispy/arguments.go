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

// NamedArgument is an argument (or matcher) supplied by parameter name rather than position
type NamedArgument struct {
	Name  string
	Value interface{}
}

// Named pairs name with value. When passed to Spy.Invoke it records a named argument,
// when passed to a verification it declares a named matcher.
func Named(name string, value interface{}) NamedArgument {
	return NamedArgument{Name: name, Value: value}
}

// Arguments is the immutable list of arguments to one call
type Arguments struct {
	positional []interface{}
	named      []NamedArgument
}

// NewArguments splits args into positional values and NamedArgument values, preserving order
func NewArguments(args ...interface{}) Arguments {
	a := Arguments{}
	for _, arg := range args {
		if na, isNamed := arg.(NamedArgument); isNamed {
			a.named = append(a.named, na)
		} else {
			a.positional = append(a.positional, arg)
		}
	}
	return a
}

// Positional returns a copy of the positional values
func (a Arguments) Positional() []interface{} {
	return append([]interface{}(nil), a.positional...)
}

// Named returns a copy of the named arguments, in the order supplied
func (a Arguments) Named() []NamedArgument {
	return append([]NamedArgument(nil), a.named...)
}

// Len is the total number of positional and named arguments
func (a Arguments) Len() int {
	return len(a.positional) + len(a.named)
}

// Get returns positional argument i. Negative indices count back from the last argument.
func (a Arguments) Get(i int) (interface{}, error) {
	n := len(a.positional)
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil, &UndefinedIndexError{Kind: "argument", Index: i}
	}
	return a.positional[idx], nil
}

// Lookup returns the first named argument called name
func (a Arguments) Lookup(name string) (interface{}, bool) {
	for _, na := range a.named {
		if na.Name == name {
			return na.Value, true
		}
	}
	return nil, false
}

// All returns positional values followed by the named arguments (as NamedArgument)
func (a Arguments) All() []interface{} {
	all := make([]interface{}, 0, a.Len())
	all = append(all, a.positional...)
	for _, na := range a.named {
		all = append(all, na)
	}
	return all
}

// Param is a declared parameter of the function or method being spied upon.
type Param struct {
	Name       string
	Default    interface{}
	HasDefault bool
}

// Signature lists the declared parameters that arguments are bound to.
//
// If Variadic is set the last parameter collects any excess arguments and is never bound to a single value.
type Signature struct {
	Params   []Param
	Variadic bool
}

// Params is a non variadic Signature with parameters called names
func Params(names ...string) Signature {
	params := make([]Param, len(names))
	for i, n := range names {
		params[i] = Param{Name: n}
	}
	return Signature{Params: params}
}

// WithDefault returns a copy of s where the parameter called name has a default value
func (s Signature) WithDefault(name string, value interface{}) Signature {
	params := append([]Param(nil), s.Params...)
	for i := range params {
		if params[i].Name == name {
			params[i].Default = value
			params[i].HasDefault = true
		}
	}
	return Signature{Params: params, Variadic: s.Variadic}
}

// bindable are the parameters that take a single argument
func (s Signature) bindable() []Param {
	if s.Variadic && len(s.Params) > 0 {
		return s.Params[:len(s.Params)-1]
	}
	return s.Params
}

func (s Signature) indexOf(name string) int {
	for i, p := range s.bindable() {
		if p.Name == name {
			return i
		}
	}
	return -1
}
