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
	"reflect"
)

//AssertMethodReturnValues fatally fails test t unless returnValues are compatible with method
func AssertMethodReturnValues(t T, method reflect.Method, returnValues []interface{}) {
	t.Helper()
	if method.Type.NumOut() != len(returnValues) {
		t.Fatalf("%v expects to have %d return values, found %d", method.Type, method.Type.NumOut(), len(returnValues))
	}
	for i, v := range returnValues {
		mType := method.Type.Out(i)
		if v == nil {
			if !nillable(mType) {
				t.Fatalf("%v expects return value %d to be a %v, got nil", method.Type, i, mType)
			}
		} else if vType := reflect.TypeOf(v); !vType.AssignableTo(mType) {
			t.Fatalf("%v expects return value %d to be assignable to %v, got %v", method.Type, i, mType, vType)
		}
	}
}

//AssertMethodSignature fatally fails test t unless funcType has the same inputs and outputs as method m
func AssertMethodSignature(t T, m reflect.Method, funcType reflect.Type) {
	t.Helper()
	if funcType.Kind() != reflect.Func {
		t.Fatalf("expected func, got %v", funcType)
	}

	if funcType.IsVariadic() != m.Type.IsVariadic() {
		t.Fatalf("%v expects %v to have variadic=%v, found %v", m.Type, funcType, m.Type.IsVariadic(), funcType.IsVariadic())
	}

	if funcType.NumIn() != m.Type.NumIn() {
		t.Fatalf("%v expects %v to have %d arguments, found %d", m.Type, funcType, m.Type.NumIn(), funcType.NumIn())
	}

	for i := 0; i < funcType.NumIn(); i++ {
		if !m.Type.In(i).AssignableTo(funcType.In(i)) {
			t.Fatalf("%v requires %v arg %d to be assignable from %v", m.Type, funcType, i, m.Type.In(i))
		}
	}

	if m.Type.NumOut() != funcType.NumOut() {
		t.Fatalf("%v for %v expects to have %d return values, found %d", funcType, m.Type, m.Type.NumOut(), funcType.NumOut())
	}

	for i := 0; i < funcType.NumOut(); i++ {
		if out, mType := funcType.Out(i), m.Type.Out(i); !out.AssignableTo(mType) {
			t.Fatalf("%v for %v expects return value %d to be assignable to %v, got %v", funcType, m.Type, i, mType, out)
		}
	}
}

func nillable(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return true
	}
	return false
}
