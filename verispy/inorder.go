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
	"strings"
)

/*
checkInOrder verifies the ordering keys (the sequence of each result's first event) never decrease.

Equal keys are allowed, the same event may satisfy consecutive results. The first adjacent pair out of
order is reported. A result without events cannot be ordered and fails at its position.
*/
func checkInOrder(r Renderer, results []*EventCollection) (*EventCollection, error) {
	for i, result := range results {
		if !result.HasEvents() {
			return nil, &AssertionError{
				Expected: fmt.Sprintf("events in order, but result %d has no events", i),
				Actual:   describeResults(r, results),
				Pair:     [2]int{i, i},
			}
		}
		if i == 0 {
			continue
		}
		previous, current := results[i-1].events[0], result.events[0]
		if current.Sequence() < previous.Sequence() {
			return nil, &AssertionError{
				Expected: fmt.Sprintf("events in order, but result %d (%s) occurred before result %d (%s)",
					i, describeEvent(r, current), i-1, describeEvent(r, previous)),
				Actual: describeResults(r, results),
				Pair:   [2]int{i - 1, i},
			}
		}
	}
	return mergeEvents(results), nil
}

func describeEvent(r Renderer, e Event) string {
	switch typed := e.(type) {
	case *Call:
		return fmt.Sprintf("#%d %s", typed.Sequence(), r.RenderCall(typed))
	case *ResponseEvent:
		return fmt.Sprintf("#%d %s %s", typed.Sequence(), typed.Kind(), r.RenderCall(typed.call))
	case *IterableEvent:
		return fmt.Sprintf("#%d %s from %s", typed.Sequence(), typed, r.RenderCall(typed.call))
	default:
		return fmt.Sprintf("#%d %v", e.Sequence(), e)
	}
}

func describeResults(r Renderer, results []*EventCollection) []string {
	lines := make([]string, len(results))
	for i, result := range results {
		if !result.HasEvents() {
			lines[i] = fmt.Sprintf("%d: no events", i)
			continue
		}
		events := make([]string, 0, result.Len())
		for _, e := range result.events {
			events = append(events, describeEvent(r, e))
		}
		lines[i] = fmt.Sprintf("%d: %s", i, strings.Join(events, "; "))
	}
	return lines
}
