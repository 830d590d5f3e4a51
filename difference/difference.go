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
Package difference computes token level differences for failure diagnostics.

Unchanged tokens are rendered verbatim, deleted tokens as [-token-], inserted tokens as {+token+}, and
a deletion immediately followed by an insertion as a single replacement [-old-]{+new+}.

The edit script is a shortest one: the unchanged tokens form a longest common subsequence of the inputs.
*/
package difference

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a Chunk
type Op byte

const (
	Equal   Op = 'e'
	Delete  Op = 'd'
	Insert  Op = 'i'
	Replace Op = 'r'
)

// A Chunk is a run of tokens with the same Op. For Replace, From are the deleted tokens and To the inserted.
type Chunk struct {
	Op   Op
	From []string
	To   []string
}

// alphabet maps each distinct token to a rune so token sequences can be diffed as rune sequences
type alphabet struct {
	runes  map[string]rune
	tokens map[rune]string
}

func newAlphabet() *alphabet {
	return &alphabet{runes: map[string]rune{}, tokens: map[rune]string{}}
}

func (a *alphabet) encode(tokens []string) []rune {
	encoded := make([]rune, len(tokens))
	for i, token := range tokens {
		r, found := a.runes[token]
		if !found {
			r = rune(len(a.runes) + 1)
			// skip the surrogate range, which does not survive conversion to string
			if r >= 0xD800 {
				r += 0x800
			}
			a.runes[token] = r
			a.tokens[r] = token
		}
		encoded[i] = r
	}
	return encoded
}

func (a *alphabet) decode(text string) []string {
	var tokens []string
	for _, r := range text {
		tokens = append(tokens, a.tokens[r])
	}
	return tokens
}

// Tokens returns a shortest edit script transforming from into to
func Tokens(from []string, to []string) []Chunk {
	a := newAlphabet()
	dmp := diffmatchpatch.New()
	// no deadline, so the result is always minimal
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(a.encode(from), a.encode(to), false)

	var chunks []Chunk
	var deleted, inserted []string
	flush := func() {
		switch {
		case len(deleted) > 0 && len(inserted) > 0:
			chunks = append(chunks, Chunk{Op: Replace, From: deleted, To: inserted})
		case len(deleted) > 0:
			chunks = append(chunks, Chunk{Op: Delete, From: deleted})
		case len(inserted) > 0:
			chunks = append(chunks, Chunk{Op: Insert, To: inserted})
		}
		deleted, inserted = nil, nil
	}
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			deleted = append(deleted, a.decode(d.Text)...)
		case diffmatchpatch.DiffInsert:
			inserted = append(inserted, a.decode(d.Text)...)
		case diffmatchpatch.DiffEqual:
			if d.Text == "" {
				continue
			}
			flush()
			chunks = append(chunks, Chunk{Op: Equal, From: a.decode(d.Text)})
		}
	}
	flush()
	return chunks
}

// Annotate renders the difference between from and to, joining tokens with sep
func Annotate(from []string, to []string, sep string) string {
	var parts []string
	for _, c := range Tokens(from, to) {
		switch c.Op {
		case Equal:
			parts = append(parts, c.From...)
		case Delete:
			parts = append(parts, deleted(c.From, sep))
		case Insert:
			parts = append(parts, inserted(c.To, sep))
		case Replace:
			parts = append(parts, deleted(c.From, sep)+inserted(c.To, sep))
		}
	}
	return strings.Join(parts, sep)
}

// Lines is Annotate over the lines of from and to
func Lines(from string, to string) string {
	return Annotate(splitLines(from), splitLines(to), "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func deleted(tokens []string, sep string) string {
	return "[-" + strings.Join(tokens, sep) + "-]"
}

func inserted(tokens []string, sep string) string {
	return "{+" + strings.Join(tokens, sep) + "+}"
}
