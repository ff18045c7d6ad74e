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

// Package rules implements the masking and administrative operations the
// engine can perform. Every rule is validated exactly once before any rule
// executes, then executed exactly once.
package rules

import (
	"context"
	"errors"
	"fmt"
)

// Progress marker interval for row-by-row rules.
const progressInterval = 1000

// ErrValidation tags every rule validation failure.
var ErrValidation = errors.New("invalid rule instructions")

// Rule is one declarative masking or administrative operation.
// Validate must be called before Execute; the pipeline guarantees it runs
// exactly once for the whole instruction set before any execution starts.
type Rule interface {
	fmt.Stringer
	Group() int
	Validate() error
	Execute(ctx context.Context) error
}

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// tableRule carries the target-table triple shared by the data-mutation
// family.
type tableRule struct {
	group    int
	database string
	schema   string
	table    string
}

func (r *tableRule) Group() int { return r.group }

func (r *tableRule) validate(rule fmt.Stringer) error {
	if r.group < 1 {
		return validationErrorf("'group' must be a positive integer for %s", rule)
	}
	if r.database == "" {
		return validationErrorf("'database' property not set for %s", rule)
	}
	if r.schema == "" {
		return validationErrorf("'schema' property not set for %s", rule)
	}
	if r.table == "" {
		return validationErrorf("'table' property not set for %s", rule)
	}
	return nil
}
