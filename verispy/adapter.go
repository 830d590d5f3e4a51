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

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/mock"
)

// AdaptFunc converts a value recognised by an adapter registration into a Matcher
type AdaptFunc func(value interface{}) Matcher

type adapterRegistration struct {
	capability reflect.Type
	adapt      AdaptFunc
}

type sentinelRegistration struct {
	value interface{}
	adapt AdaptFunc
}

/*
AdapterRegistry converts raw values and external matchers into Matchers.

Registration is explicit. A value is adapted by the first registration whose capability it has:
an interface capability is satisfied by any value implementing it, any other type only by values of exactly
that type. Sentinel registrations match a specific value.
*/
type AdapterRegistry struct {
	sentinels     []sentinelRegistration
	registrations []adapterRegistration
}

// NewAdapterRegistry returns a registry with no registrations
func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{}
}

// DefaultAdapters returns a new registry with adapters for gomock and testify/mock matchers
func DefaultAdapters() *AdapterRegistry {
	r := NewAdapterRegistry()
	r.RegisterValue(mock.Anything, func(interface{}) Matcher {
		return wrapped{AnyValue(), "mock.Anything"}
	})
	r.Register(reflect.TypeOf(mock.AnythingOfTypeArgument("")), adaptAnythingOfType)
	r.Register(reflect.TypeOf((*gomock.Matcher)(nil)).Elem(), adaptGomock)
	return r
}

// defaultAdapters is never modified after initialisation.
var defaultAdapters = DefaultAdapters()

// Register adds an adapter for values with capability
func (r *AdapterRegistry) Register(capability reflect.Type, adapt AdaptFunc) {
	r.registrations = append(r.registrations, adapterRegistration{capability, adapt})
}

// RegisterValue adds an adapter for a specific sentinel value (pointers by identity, other values by equal content)
func (r *AdapterRegistry) RegisterValue(sentinel interface{}, adapt AdaptFunc) {
	r.sentinels = append(r.sentinels, sentinelRegistration{sentinel, adapt})
}

// Clone returns an independent copy of r
func (r *AdapterRegistry) Clone() *AdapterRegistry {
	return &AdapterRegistry{
		sentinels:     append([]sentinelRegistration(nil), r.sentinels...),
		registrations: append([]adapterRegistration(nil), r.registrations...),
	}
}

/*
Adapt returns a Matcher for value

A Matcher is returned as is, a registered capability is adapted, a reflect.Type becomes InstanceOf,
a func(x X) bool becomes Func, anything else becomes EqualTo.
*/
func (r *AdapterRegistry) Adapt(value interface{}) Matcher {
	if m, isAdapted := r.adaptRegistered(value); isAdapted {
		return m
	}
	if value == nil {
		return EqualTo(nil)
	}
	vt := reflect.TypeOf(value)
	if rt, isType := value.(reflect.Type); isType {
		return InstanceOf(rt)
	}
	if isPredicate(vt) {
		return Func(value)
	}
	return EqualTo(value)
}

// adaptRegistered returns value if it is a Matcher, or its adaptation by a sentinel or capability registration
func (r *AdapterRegistry) adaptRegistered(value interface{}) (Matcher, bool) {
	if m, isMatcher := value.(Matcher); isMatcher {
		return m, true
	}
	if value == nil {
		return nil, false
	}
	for _, s := range r.sentinels {
		if sameValue(s.value, value) {
			return s.adapt(value), true
		}
	}
	vt := reflect.TypeOf(value)
	for _, reg := range r.registrations {
		if reg.capability.Kind() == reflect.Interface {
			if vt.Implements(reg.capability) {
				return reg.adapt(value), true
			}
		} else if vt == reg.capability {
			return reg.adapt(value), true
		}
	}
	return nil, false
}

// isPredicate reports whether ft is a func(x X) bool
func isPredicate(ft reflect.Type) bool {
	return ft.Kind() == reflect.Func && ft.NumIn() == 1 && !ft.IsVariadic() &&
		ft.NumOut() == 1 && ft.Out(0).Kind() == reflect.Bool
}

// wrapped is a Matcher delegating to an adapted external matcher
type wrapped struct {
	Matcher
	description string
}

func (w wrapped) Describe() string {
	return w.description
}

type externalMatcher func(value interface{}) bool

func (f externalMatcher) Matches(value interface{}) bool { return f(value) }
func (f externalMatcher) Describe() string                 { return "<external>" }

// Wrapped adapts an arbitrary predicate, described by description, to a Matcher
func Wrapped(matches func(value interface{}) bool, description string) Matcher {
	return wrapped{externalMatcher(matches), description}
}

func adaptGomock(value interface{}) Matcher {
	gm := value.(gomock.Matcher)
	return Wrapped(gm.Matches, fmt.Sprintf("<%s>", gm.String()))
}

func adaptAnythingOfType(value interface{}) Matcher {
	typeName := fmt.Sprint(value)
	return Wrapped(func(v interface{}) bool {
		if v == nil {
			return false
		}
		vt := reflect.TypeOf(v)
		return vt.Name() == typeName || vt.String() == typeName
	}, fmt.Sprintf("<mock.AnythingOfType(%q)>", typeName))
}
