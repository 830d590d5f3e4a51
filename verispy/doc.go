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

/*
Package verispy is a spy and verification framework for Go tests.

A Spy records every invocation as a Call, stamped with a sequence number shared by all spies of a Facade.
After exercising the system under test, calls are verified against a Cardinality and argument matchers,
and results of separate verifications can be verified to have occurred in order.

See the canonical sources...

* http://xunitpatterns.com/Test%20Spy.html

* https://martinfowler.com/articles/mocksArentStubs.html

Spies

 func Test_Spy(t *testing.T) {
	f := NewFacade(t)
	save := f.Spy("save", Params("key", "value"))
	save.Returning(nil)

	//Exercise...
	save.Invoke("k", 1)
	save.Invoke(Named("key", "k"), Named("value", 2))

	//Verify
	save.Verify(Twice()).Called()
	save.Verify(Once()).CalledWith(Named("value", 2))
	save.Verify(Never()).CalledWith("other", AnyArgs())
 }

Matchers

Arguments to CalledWith (and TestDouble stubs) are adapted to Matchers. Native Matchers (EqualTo, InstanceOf, Func, ...)
are used as is, gomock.Matcher and testify mock argument matchers are adapted, reflect.Type values match instances of
the type, and anything else matches by equality.

A Wildcard absorbs leftover arguments, so CalledWith(1, AnyArgs()) matches any call whose first argument is 1.

In order

 first := save.Verify().CalledWith("a", AnyArgs())
 second := load.Verify().CalledWith("a")
 f.InOrder(first, second)

Test doubles

A TestDouble substitutes for an interface, with a spy per method.

 func Test_Double(t *testing.T) {
	d := NewAPIDouble(t) // An implementation of the interface that calls TestDouble.Invoke
	defer d.Verify()

	d.Stub("SomeQuery").Matching("test").Returning(Results{"result"}, nil)
	d.Expect("SomeCommand", Times(3))

	//Exercise...
 }

Diagnostics

A failed verification reports the expectation, the recorded calls and a diff against the closest call,
where [-x-] marks an actual argument that was not expected and {+x+} marks an expected argument that was missing.
*/
package verispy
