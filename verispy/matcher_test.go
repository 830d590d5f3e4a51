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
	"io"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type tiface interface {
	test()
}

type tstring string

func (tstring) test() {
	panic("Unexpected call to test()")
}

func TestMatchers(t *testing.T) {
	type test struct {
		name        string
		matcher     Matcher
		matching    []interface{}
		notMatching []interface{}
		re          string
	}

	var emptySlice = make([]int, 0)
	var nilSlice []int
	var nilPtr *int
	ts := tstring("atest")

	tests := []test{
		{"EqualTo(string)", EqualTo("x"), []interface{}{"x"}, []interface{}{"y", ""}, `"x"`},
		{"EqualTo(int)", EqualTo(10), []interface{}{10}, []interface{}{6, -1, 0, int64(10)}, "10"},
		{"EqualTo(slice)", EqualTo([]string{"a", "b"}), []interface{}{[]string{"a", "b"}}, []interface{}{[]string{"a"}}, `\[a b\]`},
		{"Not(EqualTo(int))", Not(EqualTo(10)), []interface{}{6, -1, 0}, []interface{}{10}, `Not\(10\)`},
		{"Not(raw)", Not(10), []interface{}{6}, []interface{}{10}, `Not\(10\)`},
		{"Nil", Nil(), []interface{}{nil, nilSlice, nilPtr}, []interface{}{emptySlice, []int{1}, 0, ""}, "nil"},
		{"Slice", Slice(10, EqualTo(20)), []interface{}{[]int{10, 20}, []int{10, 20, 3}, [2]int{10, 20}}, []interface{}{[]int{10}, []int{1, 20}, emptySlice, nilSlice, "astring"}, `Slice\[10, 20\]`},
		{"Len([]int)", Len(2), []interface{}{[]int{0, 0}, "ab", map[int]int{1: 1, 2: 2}}, []interface{}{emptySlice, []int{1}, []int{1, 2, 3}, 0}, `Len\(2\)`},
		{"Len(Func)", Len(Func(func(l int) bool { return l >= 2 }, ">= 2")), []interface{}{"one", "xx"}, []interface{}{"x", ""}, `Len\(>= 2\)`},
		{"Len(func)", Len(func(l int) bool { return l >= 2 }), []interface{}{"one", "xx"}, []interface{}{"x", ""}, `Len\(func\(int\) bool\)`},
		{"AllOf()", AllOf(), []interface{}{"one", 10, true, emptySlice}, nil, `AllOf\{\}`},
		{"AnyOf()", AnyOf(), nil, []interface{}{"one", 10, true, emptySlice}, `AnyOf\{\}`},
		{"AllOf", AllOf(AllOf(), "xxx", Len(3)), []interface{}{"xxx"}, []interface{}{"yyy"}, `AllOf.*AllOf.*xxx.*Len.*3`},
		{"AnyOf", AnyOf("xxx", Len(2)), []interface{}{"xxx", "ab"}, []interface{}{"yyy", ""}, `AnyOf.*xxx.*Len.*2`},
		{"InstanceOf", InstanceOf(111), []interface{}{33}, []interface{}{"yyyy", nil, int32(33)}, "<int>"},
		{"InstanceOfType", InstanceOf(reflect.TypeOf(10)), []interface{}{33}, []interface{}{"yyyy"}, "<int>"},
		{"InstanceOfIface", InstanceOf((*tiface)(nil)), []interface{}{ts}, []interface{}{"plainstring"}, "tiface"},
		{"InstanceOfReader", InstanceOf((*io.Reader)(nil)), []interface{}{strings.NewReader("")}, []interface{}{"s"}, "io.Reader"},
		{"AnyValue", AnyValue(), []interface{}{nil, 1, "x"}, nil, "<any>"},
		{"Func", Func(regexp.MustCompile("^t").MatchString, "startswith 't'"), []interface{}{"test"}, []interface{}{"", "xt", 1, nil}, "startswith 't'"},
		{"FuncNil", Func(func(p *int) bool { return p == nil }), []interface{}{nil, nilPtr}, []interface{}{new(int), "x"}, `func\(\*int\) bool`},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			matcher := test.matcher
			if !regexp.MustCompile(test.re).MatchString(matcher.Describe()) {
				t.Errorf("expected '%s' to match '%s'", matcher.Describe(), test.re)
			}
			for _, arg := range test.matching {
				if !matcher.Matches(arg) {
					t.Errorf("Expected %s to match %v", matcher.Describe(), arg)
				}
			}
			for _, notArg := range test.notMatching {
				if matcher.Matches(notArg) {
					t.Errorf("Expected %s to not match %v", matcher.Describe(), notArg)
				}
			}
		})
	}
}

func TestFunc_PanicsForBadSignature(t *testing.T) {
	bad := []interface{}{
		func(i int, s string) bool { return false },
		func(i int) {},
		func(i int) (bool, error) { return false, nil },
		func(i ...int) bool { return false },
		"notafunc",
		nil,
	}
	for _, f := range bad {
		assert.Panics(t, func() { Func(f) }, "%T", f)
	}
}

func TestInstanceOf_PanicsForNil(t *testing.T) {
	assert.PanicsWithValue(t, "InstanceOf() expects a value, a reflect.Type or a nil pointer to an interface, got nil",
		func() { InstanceOf(nil) })
}

func TestDescribeWith(t *testing.T) {
	r := NewRenderer(6)
	tests := []struct {
		matcher  Matcher
		expected string
	}{
		{EqualTo("aardvark"), `"aa...`},
		{Not("aardvark"), `Not("aa...)`},
		{AllOf("aardvark", AnyValue()), `AllOf{"aa..., <any>}`},
		{AnyOf("aardvark"), `AnyOf{"aa...}`},
		{Slice("aardvark"), `Slice["aa...]`},
		{Len(3), "Len(3)"},
		{Wildcard("aardvark", 1, Unbounded), `"aa...+`},
		{AnyValue(), "<any>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, describeWith(r, tt.matcher))
	}
	assert.Equal(t, `"aardvark"`, EqualTo("aardvark").Describe())
}

func TestWildcard_Describe(t *testing.T) {
	tests := []struct {
		wildcard *WildcardMatcher
		expected string
	}{
		{AnyArgs(), "<any>*"},
		{Wildcard(nil, 1, Unbounded), "<any>+"},
		{Wildcard(nil, 3, Unbounded), "<any>{3,}"},
		{Wildcard(nil, 2, 2), "<any>{2}"},
		{Wildcard("x", 1, 4), `"x"{1,4}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.wildcard.Describe())
	}

	w := Wildcard(InstanceOf(""), 1, 2)
	assert.Equal(t, 1, w.MinimumArguments())
	assert.Equal(t, 2, w.MaximumArguments())
	assert.True(t, w.Matches("s"))
	assert.False(t, w.Matches(1))
	assert.False(t, w.MatchesCount(0))
	assert.True(t, w.MatchesCount(2))
	assert.False(t, w.MatchesCount(3))
	assert.Equal(t, "<string>", fmt.Sprint(w.ValueMatcher().Describe()))
}
