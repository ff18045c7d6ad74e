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

// Package scheduler turns an instruction set into a validated execution
// plan and runs it group by group.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/datamaskio/datamask/internal/db"
	"github.com/datamaskio/datamask/internal/instructions"
	"github.com/datamaskio/datamask/internal/rules"
)

// Plan is a validated set of rules ready to run. Every rule has passed
// Validate; construction fails before any rule executes.
type Plan struct {
	rules []rules.Rule
}

// Rules returns the planned rules in instruction-set order.
func (p *Plan) Rules() []rules.Rule {
	return p.rules
}

// NewPlan constructs and validates one rule per instruction. The first
// construction or validation failure aborts planning: either the whole
// instruction set is admitted or none of it runs.
func NewPlan(set []instructions.Instruction, gateway db.Gateway) (*Plan, error) {
	planned := make([]rules.Rule, 0, len(set))
	for i, instr := range set {
		rule, err := rules.CreateRule(instr, gateway)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		planned = append(planned, rule)
	}
	return &Plan{rules: planned}, nil
}

// Run executes the plan: groups in ascending numeric order, every rule
// within a group concurrently, with a full barrier between groups. A rule
// failure never interrupts its siblings or later groups; it is logged,
// counted, and folded into the aggregate error after the last group.
// An empty plan is a no-op.
func Run(ctx context.Context, plan *Plan) error {
	if len(plan.rules) == 0 {
		log.Warn().Msg("no rules to run")
		return nil
	}

	runID := uuid.NewString()
	byGroup := make(map[int][]rules.Rule)
	for _, rule := range plan.rules {
		byGroup[rule.Group()] = append(byGroup[rule.Group()], rule)
	}
	groups := make([]int, 0, len(byGroup))
	for group := range byGroup {
		groups = append(groups, group)
	}
	sort.Ints(groups)

	var failed atomic.Int64
	for _, group := range groups {
		log.Info().
			Str("runId", runID).
			Int("group", group).
			Int("rules", len(byGroup[group])).
			Msg("starting rule group")

		eg := &errgroup.Group{}
		for _, rule := range byGroup[group] {
			rule := rule
			eg.Go(func() error {
				if err := rule.Execute(ctx); err != nil {
					failed.Add(1)
					log.Error().
						Err(err).
						Str("runId", runID).
						Int("group", group).
						Str("rule", rule.String()).
						Msg("rule failed")
					return nil
				}
				log.Info().
					Str("runId", runID).
					Int("group", group).
					Str("rule", rule.String()).
					Msg("rule completed")
				return nil
			})
		}
		_ = eg.Wait()
	}

	if count := failed.Load(); count > 0 {
		return fmt.Errorf("%d of %d rules failed", count, len(plan.rules))
	}
	return nil
}
