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
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config controls tracing and the detail of failure diagnostics
type Config struct {
	// Trace logs every recorded call via T.Logf
	Trace bool `yaml:"trace"`
	// Diff includes a diff against the closest call in argument matching failures
	Diff bool `yaml:"diff"`
	// MaxRenderLength truncates rendered values, 0 for no limit
	MaxRenderLength int `yaml:"max_render_length"`
	// MaxRenderedCalls limits the calls listed in a failure, 0 for no limit
	MaxRenderedCalls int `yaml:"max_rendered_calls"`
}

func DefaultConfig() Config {
	return Config{
		Diff:             true,
		MaxRenderLength:  120,
		MaxRenderedCalls: 20,
	}
}

// ParseConfig reads a yaml document over the defaults. Unknown fields are rejected.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if c.MaxRenderLength < 0 {
		return fmt.Errorf("%w: max_render_length must not be negative, got %d", ErrInvalidConfig, c.MaxRenderLength)
	}
	if c.MaxRenderedCalls < 0 {
		return fmt.Errorf("%w: max_rendered_calls must not be negative, got %d", ErrInvalidConfig, c.MaxRenderedCalls)
	}
	return nil
}
