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
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Renderer produces short human readable strings for diagnostics. It is never used for matching.
type Renderer interface {
	RenderValue(v interface{}) string
	// RenderArguments renders each argument, named arguments as "name: value"
	RenderArguments(args Arguments) []string
	RenderCall(c *Call) string
}

type spewRenderer struct {
	config    *spew.ConfigState
	maxLength int
}

// NewRenderer returns the default Renderer, truncating rendered values longer than maxLength runes (0 for no limit)
func NewRenderer(maxLength int) Renderer {
	return &spewRenderer{
		config: &spew.ConfigState{
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
			MaxDepth:                4,
		},
		maxLength: maxLength,
	}
}

// defaultRenderer is stateless, and used where no Facade is available (eg matcher descriptions)
var defaultRenderer = NewRenderer(DefaultConfig().MaxRenderLength)

func (r *spewRenderer) RenderValue(v interface{}) string {
	var s string
	switch typed := v.(type) {
	case nil:
		s = "nil"
	case string:
		s = strconv.Quote(typed)
	case error:
		s = fmt.Sprintf("error(%q)", typed.Error())
	case fmt.Stringer:
		s = typed.String()
	default:
		s = r.config.Sprintf("%v", v)
	}
	return r.truncate(s)
}

func (r *spewRenderer) truncate(s string) string {
	if r.maxLength <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= r.maxLength {
		return s
	}
	if r.maxLength <= 3 {
		return string(runes[:r.maxLength])
	}
	return string(runes[:r.maxLength-3]) + "..."
}

func (r *spewRenderer) RenderArguments(args Arguments) []string {
	tokens := make([]string, 0, args.Len())
	for _, v := range args.positional {
		tokens = append(tokens, r.RenderValue(v))
	}
	for _, na := range args.named {
		tokens = append(tokens, fmt.Sprintf("%s: %s", na.Name, r.RenderValue(na.Value)))
	}
	return tokens
}

func (r *spewRenderer) RenderCall(c *Call) string {
	sb := strings.Builder{}
	sb.WriteString(c.spy.Label())
	sb.WriteRune('(')
	sb.WriteString(strings.Join(r.RenderArguments(c.args), ", "))
	sb.WriteRune(')')

	if response := c.Response(); response != nil {
		switch response.kind {
		case Returned:
			if len(response.values) > 0 {
				values := make([]string, len(response.values))
				for i, v := range response.values {
					values[i] = r.RenderValue(v)
				}
				sb.WriteString(" returned ")
				sb.WriteString(strings.Join(values, ", "))
			}
		case Threw:
			sb.WriteString(" panicked ")
			sb.WriteString(r.RenderValue(response.thrown))
		}
	}
	if events := c.IterableEvents(); len(events) > 0 {
		fmt.Fprintf(&sb, " (%d iterable events)", len(events))
	}
	return sb.String()
}
