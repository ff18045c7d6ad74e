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

package rules

import (
	"context"
	"fmt"

	"github.com/datamaskio/datamask/internal/db"
)

// Wildcard widens a database-object rule: on the schema field it means
// every schema and table in the database, on the object-name field it means
// every object of that kind on the table. It matches whole names only, not
// partial ones.
const Wildcard = "*"

// objectToggleRule is the shared shape of the enable/disable rule family:
// a target triple plus one object name, resolved at execution time to one
// of three granularities checked in precedence order: schema wildcard
// (whole database), object wildcard (whole table), single object.
type objectToggleRule struct {
	group    int
	database string
	schema   string
	table    string
	object   string
}

func (r *objectToggleRule) Group() int { return r.group }

func (r *objectToggleRule) validate(rule fmt.Stringer) error {
	if r.group < 1 {
		return validationErrorf("'group' must be a positive integer for %s", rule)
	}
	if r.database == Wildcard {
		return validationErrorf("wildcard character is not allowed for 'database' property for %s", rule)
	}
	if r.table == Wildcard {
		return validationErrorf("wildcard character is not allowed for 'table' property for %s", rule)
	}
	return nil
}

func (r *objectToggleRule) execute(
	ctx context.Context,
	forDatabase func(ctx context.Context, database string) error,
	forTable func(ctx context.Context, database, schema, table string) error,
	forObject func(ctx context.Context, database, schema, table, object string) error,
) error {
	if r.schema == Wildcard {
		return forDatabase(ctx, r.database)
	}
	if r.object == Wildcard {
		return forTable(ctx, r.database, r.schema, r.table)
	}
	return forObject(ctx, r.database, r.schema, r.table, r.object)
}

// DisableTriggerRule disables one trigger, every trigger on a table, or
// every trigger in the database. The reverse of EnableTriggerRule.
type DisableTriggerRule struct {
	objectToggleRule
	gateway db.Gateway
}

func (r *DisableTriggerRule) String() string {
	return fmt.Sprintf("DisableTriggerRule with database='%s', schema='%s', table='%s', trigger='%s'",
		r.database, r.schema, r.table, r.object)
}

func (r *DisableTriggerRule) Validate() error {
	return r.objectToggleRule.validate(r)
}

func (r *DisableTriggerRule) Execute(ctx context.Context) error {
	return r.execute(ctx,
		r.gateway.DisableAllTriggersForDatabase,
		r.gateway.DisableAllTriggersForTable,
		r.gateway.DisableSingleTriggerForTable,
	)
}

// EnableTriggerRule is the reverse of DisableTriggerRule.
type EnableTriggerRule struct {
	objectToggleRule
	gateway db.Gateway
}

func (r *EnableTriggerRule) String() string {
	return fmt.Sprintf("EnableTriggerRule with database='%s', schema='%s', table='%s', trigger='%s'",
		r.database, r.schema, r.table, r.object)
}

func (r *EnableTriggerRule) Validate() error {
	return r.objectToggleRule.validate(r)
}

func (r *EnableTriggerRule) Execute(ctx context.Context) error {
	return r.execute(ctx,
		r.gateway.EnableAllTriggersForDatabase,
		r.gateway.EnableAllTriggersForTable,
		r.gateway.EnableSingleTriggerForTable,
	)
}

// DisableCheckConstraintRule disables one check constraint, every check
// constraint on a table, or every check constraint in the database.
type DisableCheckConstraintRule struct {
	objectToggleRule
	gateway db.Gateway
}

func (r *DisableCheckConstraintRule) String() string {
	return fmt.Sprintf(
		"DisableCheckConstraintRule with database='%s', schema='%s', table='%s', check_constraint='%s'",
		r.database, r.schema, r.table, r.object)
}

func (r *DisableCheckConstraintRule) Validate() error {
	return r.objectToggleRule.validate(r)
}

func (r *DisableCheckConstraintRule) Execute(ctx context.Context) error {
	return r.execute(ctx,
		r.gateway.DisableAllCheckConstraintsForDatabase,
		r.gateway.DisableAllCheckConstraintsForTable,
		r.gateway.DisableSingleCheckConstraintForTable,
	)
}

// EnableCheckConstraintRule is the reverse of DisableCheckConstraintRule.
type EnableCheckConstraintRule struct {
	objectToggleRule
	gateway db.Gateway
}

func (r *EnableCheckConstraintRule) String() string {
	return fmt.Sprintf(
		"EnableCheckConstraintRule with database='%s', schema='%s', table='%s', check_constraint='%s'",
		r.database, r.schema, r.table, r.object)
}

func (r *EnableCheckConstraintRule) Validate() error {
	return r.objectToggleRule.validate(r)
}

func (r *EnableCheckConstraintRule) Execute(ctx context.Context) error {
	return r.execute(ctx,
		r.gateway.EnableAllCheckConstraintsForDatabase,
		r.gateway.EnableAllCheckConstraintsForTable,
		r.gateway.EnableSingleCheckConstraintForTable,
	)
}

// DisableForeignKeyRule disables one foreign key, every foreign key on a
// table, or every foreign key in the database.
type DisableForeignKeyRule struct {
	objectToggleRule
	gateway db.Gateway
}

func (r *DisableForeignKeyRule) String() string {
	return fmt.Sprintf("DisableForeignKeyRule with database='%s', schema='%s', table='%s', foreign_key='%s'",
		r.database, r.schema, r.table, r.object)
}

func (r *DisableForeignKeyRule) Validate() error {
	return r.objectToggleRule.validate(r)
}

func (r *DisableForeignKeyRule) Execute(ctx context.Context) error {
	return r.execute(ctx,
		r.gateway.DisableAllForeignKeysForDatabase,
		r.gateway.DisableAllForeignKeysForTable,
		r.gateway.DisableSingleForeignKeyForTable,
	)
}

// EnableForeignKeyRule is the reverse of DisableForeignKeyRule.
type EnableForeignKeyRule struct {
	objectToggleRule
	gateway db.Gateway
}

func (r *EnableForeignKeyRule) String() string {
	return fmt.Sprintf("EnableForeignKeyRule with database='%s', schema='%s', table='%s', foreign_key='%s'",
		r.database, r.schema, r.table, r.object)
}

func (r *EnableForeignKeyRule) Validate() error {
	return r.objectToggleRule.validate(r)
}

func (r *EnableForeignKeyRule) Execute(ctx context.Context) error {
	return r.execute(ctx,
		r.gateway.EnableAllForeignKeysForDatabase,
		r.gateway.EnableAllForeignKeysForTable,
		r.gateway.EnableSingleForeignKeyForTable,
	)
}
