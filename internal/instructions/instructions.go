// Copyright 2025 Datamask
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package instructions loads and reads masking instruction records: one
// JSON object per masking operation, always carrying the rule discriminator
// and an execution group number.
package instructions

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// Instruction is one instruction record. Field access goes through the
// typed accessors, which distinguish an absent key from a malformed value.
type Instruction map[string]any

// MissingFieldError reports a required field that is absent from an
// instruction record.
type MissingFieldError struct {
	Rule  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("'%s' is missing from the instructions for the %s rule", e.Field, e.Rule)
}

// LoadSet reads an instruction-set file: a JSON array of instruction
// objects.
func LoadSet(path string) ([]Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instruction set file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("instruction set file %s is not valid JSON", path)
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("instruction set file %s must contain a JSON array", path)
	}

	var set []Instruction
	for i, element := range parsed.Array() {
		fields, ok := element.Value().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("instruction %d is not a JSON object", i)
		}
		set = append(set, Instruction(fields))
	}
	return set, nil
}

// StringField returns the named field as a string, or a MissingFieldError
// when the key is absent. Empty values are returned as-is; emptiness is a
// validation concern, not a loading one.
func (i Instruction) StringField(key, rule string) (string, error) {
	raw, ok := i[key]
	if !ok {
		return "", &MissingFieldError{Rule: rule, Field: key}
	}
	value, err := cast.ToStringE(raw)
	if err != nil {
		return "", fmt.Errorf("field '%s' of the %s rule: %w", key, rule, err)
	}
	return value, nil
}

// IntField returns the named field as an int, or a MissingFieldError when
// the key is absent.
func (i Instruction) IntField(key, rule string) (int, error) {
	raw, ok := i[key]
	if !ok {
		return 0, &MissingFieldError{Rule: rule, Field: key}
	}
	value, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("field '%s' of the %s rule: %w", key, rule, err)
	}
	return value, nil
}
