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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

type named string

func (n named) String() string { return "named:" + string(n) }

func TestRenderer_RenderValue(t *testing.T) {
	r := NewRenderer(0)
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"Nil", nil, "nil"},
		{"String", "x", `"x"`},
		{"QuotedString", `say "hi"`, `"say \"hi\""`},
		{"Int", 42, "42"},
		{"Bool", true, "true"},
		{"Error", errBoom, `error("boom")`},
		{"Stringer", named("n"), "named:n"},
		{"Slice", []int{1, 2}, "[1 2]"},
		{"Struct", point{1, 2}, "{1 2}"},
		{"Map", map[string]int{"b": 2, "a": 1}, "map[a:1 b:2]"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.RenderValue(tt.value))
		})
	}

	assert.NotContains(t, r.RenderValue(&point{1, 2}), "0x", "pointer addresses are not rendered")
}

func TestRenderer_Truncates(t *testing.T) {
	long := strings.Repeat("x", 50)

	assert.Equal(t, `"xxxxxx...`, NewRenderer(10).RenderValue(long))
	assert.Equal(t, `"xx`, NewRenderer(3).RenderValue(long))
	assert.Equal(t, `"`+long+`"`, NewRenderer(0).RenderValue(long))
	assert.Equal(t, "42", NewRenderer(3).RenderValue(42))

	multibyte := NewRenderer(5).RenderValue("ééééééé")
	assert.Equal(t, `"é...`, multibyte)
}

func TestRenderer_RenderCall(t *testing.T) {
	f := NewFacade(t)
	r := f.Renderer()

	assert.Equal(t, []string{"1", `"two"`, "three: 3"}, r.RenderArguments(NewArguments(1, "two", Named("three", 3))))

	returning := f.Spy("lookup").Returning("value", nil)
	returning.Invoke("key", Named("fresh", true))
	call, err := returning.LastCall()
	require.NoError(t, err)
	assert.Equal(t, `lookup("key", fresh: true) returned "value", nil`, r.RenderCall(call))

	silent := f.Spy("notify")
	silent.Invoke()
	call, err = silent.LastCall()
	require.NoError(t, err)
	assert.Equal(t, `notify()`, r.RenderCall(call))

	panicking := f.Spy("explode").Panicking("oops")
	assert.Panics(t, func() { panicking.Invoke(point{1, 2}) })
	call, err = panicking.LastCall()
	require.NoError(t, err)
	assert.Equal(t, `explode({1 2}) panicked "oops"`, r.RenderCall(call))
}

type constRenderer struct{}

func (constRenderer) RenderValue(interface{}) string          { return "v" }
func (constRenderer) RenderArguments(args Arguments) []string { return []string{"args"} }
func (constRenderer) RenderCall(*Call) string                 { return "call" }

func TestWithRenderer(t *testing.T) {
	f := NewFacade(t, WithRenderer(constRenderer{}))
	spy := f.Spy("custom")
	spy.Invoke(1)

	_, err := spy.Check(Never()).Called()
	var failure *AssertionError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, []string{"call"}, failure.Actual)
}
