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

package difference

import (
	"strings"
	"testing"

	"github.com/Pallinder/go-randomdata"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name     string
		from     []string
		to       []string
		expected string
	}{
		{"Identical", []string{"a", "b"}, []string{"a", "b"}, "a, b"},
		{"BothEmpty", nil, nil, ""},
		{"FromEmpty", nil, []string{"a"}, "{+a+}"},
		{"ToEmpty", []string{"a", "b"}, nil, "[-a, b-]"},
		{"Replace", []string{`"b"`, "2"}, []string{`"b"`, "3"}, `"b", [-2-]{+3+}`},
		{"Insert", []string{"a", "c"}, []string{"a", "b", "c"}, "a, {+b+}, c"},
		{"Delete", []string{"a", "b", "c"}, []string{"a", "c"}, "a, [-b-], c"},
		{"Disjoint", []string{"a", "b"}, []string{"x", "y"}, "[-a, b-]{+x, y+}"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Annotate(tt.from, tt.to, ", "))
		})
	}
}

func TestAnnotate_IdenticalHasNoMarkers(t *testing.T) {
	tokens := strings.Fields("the quick brown fox jumps over the lazy dog")
	annotated := Annotate(tokens, tokens, " ")
	assert.Equal(t, strings.Join(tokens, " "), annotated)
	assert.NotContains(t, annotated, "[-")
	assert.NotContains(t, annotated, "{+")
}

func TestAnnotate_KeepsLongestCommonSubsequence(t *testing.T) {
	from := strings.Fields("L L L L L s1 s2 s3 s4 s5 s6")
	to := strings.Fields("s1 s2 s3 z s4 s5 s6 L L L L L")

	assert.Equal(t, "[-L L L L L-] s1 s2 s3 {+z+} s4 s5 s6 {+L L L L L+}", Annotate(from, to, " "))
	assert.Equal(t, 6, kept(Tokens(from, to)))
}

// kept counts the unchanged tokens of an edit script
func kept(chunks []Chunk) int {
	n := 0
	for _, c := range chunks {
		if c.Op == Equal {
			n += len(c.From)
		}
	}
	return n
}

// lcs is the textbook dynamic programming length of the longest common subsequence
func lcs(a []string, b []string) int {
	table := make([][]int, len(a)+1)
	for i := range table {
		table[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				table[i][j] = table[i+1][j+1] + 1
			case table[i+1][j] > table[i][j+1]:
				table[i][j] = table[i+1][j]
			default:
				table[i][j] = table[i][j+1]
			}
		}
	}
	return table[0][0]
}

func randomTokens() []string {
	tokens := make([]string, randomdata.Number(0, 12))
	for i := range tokens {
		tokens[i] = randomdata.StringSample("a", "b", "c", "d")
	}
	return tokens
}

func TestTokens_ShortestEditScript(t *testing.T) {
	for i := 0; i < 200; i++ {
		from, to := randomTokens(), randomTokens()
		chunks := Tokens(from, to)
		assert.Equal(t, lcs(from, to), kept(chunks), "from %v to %v", from, to)

		var rebuiltFrom, rebuiltTo []string
		for _, c := range chunks {
			switch c.Op {
			case Equal:
				rebuiltFrom = append(rebuiltFrom, c.From...)
				rebuiltTo = append(rebuiltTo, c.From...)
			default:
				rebuiltFrom = append(rebuiltFrom, c.From...)
				rebuiltTo = append(rebuiltTo, c.To...)
			}
		}
		assert.Equal(t, strings.Join(from, " "), strings.Join(rebuiltFrom, " "))
		assert.Equal(t, strings.Join(to, " "), strings.Join(rebuiltTo, " "))
	}
}

func TestTokens(t *testing.T) {
	chunks := Tokens([]string{"a", "b", "c"}, []string{"a", "x", "c", "d"})
	assert.Equal(t, []Chunk{
		{Op: Equal, From: []string{"a"}},
		{Op: Replace, From: []string{"b"}, To: []string{"x"}},
		{Op: Equal, From: []string{"c"}},
		{Op: Insert, To: []string{"d"}},
	}, chunks)

	assert.Empty(t, Tokens(nil, nil))
}

func TestLines(t *testing.T) {
	from := "expected spy \"save\"\ncalled with \"b\", 2\nat least 1\nfound 0"
	to := "expected spy \"save\"\ncalled with \"b\", 3\nat least 1\nfound 0\nclosest call"

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "lines", []byte(Lines(from, to)))

	assert.Equal(t, "", Lines("", ""))
	assert.Equal(t, "same\nlines", Lines("same\nlines", "same\nlines"))
}
