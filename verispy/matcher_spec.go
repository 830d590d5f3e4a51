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
	"sort"
	"strings"
)

// NamedMatcher is a matcher for an argument supplied by name
type NamedMatcher struct {
	Name    string
	Matcher Matcher
}

// declaredMatcher is a matcher bound to a declared parameter, by position or by name
type declaredMatcher struct {
	index   int
	param   Param
	byName  bool
	matcher Matcher
}

/*
A MatcherSpec describes the arguments expected by one verification.

It consists of matchers for declared parameters, extra positional matchers beyond the declared parameters,
extra named matchers, and at most one wildcard consuming any leftover arguments.
*/
type MatcherSpec struct {
	signature  Signature
	declared   []declaredMatcher
	positional []Matcher
	named      []NamedMatcher
	wildcard   *WildcardMatcher
	renderer   Renderer
}

// MatcherFactory builds matcher specifications, adapting raw values with its AdapterRegistry
type MatcherFactory struct {
	adapters *AdapterRegistry
	renderer Renderer
}

// NewMatcherFactory returns a factory using adapters (nil for DefaultAdapters())
func NewMatcherFactory(adapters *AdapterRegistry) *MatcherFactory {
	if adapters == nil {
		adapters = DefaultAdapters()
	}
	return &MatcherFactory{adapters: adapters, renderer: defaultRenderer}
}

func (f *MatcherFactory) Adapters() *AdapterRegistry {
	return f.adapters
}

// Adapt converts a raw value or external matcher to a Matcher
func (f *MatcherFactory) Adapt(value interface{}) Matcher {
	return f.adapters.Adapt(value)
}

/*
Spec builds a MatcherSpec for sig from args.

Each of args is one of
	*WildcardMatcher - the single wildcard, which must follow every positional matcher
	NamedArgument    - a named matcher (see Named); a declared parameter name binds to that parameter
	anything else    - a positional matcher, adapted via the AdapterRegistry

Positional matchers bind to declared parameters in order, the rest are extra positional matchers.
*/
func (f *MatcherFactory) Spec(sig Signature, args ...interface{}) (*MatcherSpec, error) {
	spec := &MatcherSpec{signature: sig, renderer: f.renderer}
	if spec.renderer == nil {
		spec.renderer = defaultRenderer
	}
	bindable := sig.bindable()
	declaredByIndex := map[int]bool{}
	namedSeen := map[string]bool{}
	positionalCount := 0

	for i, arg := range args {
		switch typed := arg.(type) {
		case *WildcardMatcher:
			if spec.wildcard != nil {
				return nil, &MatcherSpecError{Reason: ErrMultipleWildcards, Position: i}
			}
			if err := typed.validate(); err != nil {
				return nil, &MatcherSpecError{Reason: ErrInvalidWildcard, Position: i, Detail: err.Error()}
			}
			spec.wildcard = typed

		case NamedArgument:
			if namedSeen[typed.Name] {
				return nil, &MatcherSpecError{Reason: ErrDuplicateMatcher, Position: i, Detail: typed.Name}
			}
			namedSeen[typed.Name] = true
			m := f.adapters.Adapt(typed.Value)
			if idx := sig.indexOf(typed.Name); idx >= 0 {
				if declaredByIndex[idx] {
					return nil, &MatcherSpecError{Reason: ErrDuplicateMatcher, Position: i, Detail: typed.Name}
				}
				declaredByIndex[idx] = true
				spec.declared = append(spec.declared, declaredMatcher{index: idx, param: bindable[idx], byName: true, matcher: m})
			} else {
				spec.named = append(spec.named, NamedMatcher{Name: typed.Name, Matcher: m})
			}

		default:
			if spec.wildcard != nil {
				return nil, &MatcherSpecError{Reason: ErrPositionalAfterWildcard, Position: i}
			}
			m := f.adapters.Adapt(arg)
			if idx := positionalCount; idx < len(bindable) {
				if declaredByIndex[idx] {
					return nil, &MatcherSpecError{Reason: ErrDuplicateMatcher, Position: i, Detail: bindable[idx].Name}
				}
				declaredByIndex[idx] = true
				spec.declared = append(spec.declared, declaredMatcher{index: idx, param: bindable[idx], matcher: m})
			} else {
				spec.positional = append(spec.positional, m)
			}
			positionalCount++
		}
	}

	sort.SliceStable(spec.declared, func(i, j int) bool { return spec.declared[i].index < spec.declared[j].index })
	return spec, nil
}

func (s *MatcherSpec) Signature() Signature { return s.signature }

// Wildcard returns nil if there is no wildcard
func (s *MatcherSpec) Wildcard() *WildcardMatcher { return s.wildcard }

func (s *MatcherSpec) describe(m Matcher) string {
	return describeWith(s.renderer, m)
}

// describeTokens describes each matcher in declaration order
func (s *MatcherSpec) describeTokens() []string {
	var tokens []string
	for _, d := range s.declared {
		if d.byName {
			tokens = append(tokens, fmt.Sprintf("%s: %s", d.param.Name, s.describe(d.matcher)))
		} else {
			tokens = append(tokens, s.describe(d.matcher))
		}
	}
	for _, m := range s.positional {
		tokens = append(tokens, s.describe(m))
	}
	for _, nm := range s.named {
		tokens = append(tokens, fmt.Sprintf("%s: %s", nm.Name, s.describe(nm.Matcher)))
	}
	if s.wildcard != nil {
		tokens = append(tokens, s.describe(s.wildcard))
	}
	return tokens
}

/*
expectedTokens describes the matchers in the layout Renderer.RenderArguments gives args, so the two can be
diffed token by token.

A declared matcher whose parameter args fill by position takes that position, rendered plainly. Extra
positional matchers follow. The remaining declared matchers and the extra named matchers are rendered
"name: matcher", ordered as their names appear in args (names args lack go last). The wildcard ends the list.
*/
func (s *MatcherSpec) expectedTokens(args Arguments) []string {
	type namedToken struct {
		name  string
		token string
	}
	var tokens []string
	var named []namedToken
	for _, d := range s.declared {
		if d.index < len(args.positional) {
			tokens = append(tokens, s.describe(d.matcher))
		} else {
			named = append(named, namedToken{d.param.Name, fmt.Sprintf("%s: %s", d.param.Name, s.describe(d.matcher))})
		}
	}
	for _, m := range s.positional {
		tokens = append(tokens, s.describe(m))
	}
	for _, nm := range s.named {
		named = append(named, namedToken{nm.Name, fmt.Sprintf("%s: %s", nm.Name, s.describe(nm.Matcher))})
	}
	order := func(name string) int {
		for i, na := range args.named {
			if na.Name == name {
				return i
			}
		}
		return len(args.named)
	}
	sort.SliceStable(named, func(i, j int) bool { return order(named[i].name) < order(named[j].name) })
	for _, n := range named {
		tokens = append(tokens, n.token)
	}
	if s.wildcard != nil {
		tokens = append(tokens, s.describe(s.wildcard))
	}
	return tokens
}

func (s *MatcherSpec) String() string {
	tokens := s.describeTokens()
	if len(tokens) == 0 {
		return "no arguments"
	}
	return strings.Join(tokens, ", ")
}
