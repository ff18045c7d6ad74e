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

package db

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by a gateway when the connected dialect has no
// native way to express the requested operation.
var ErrUnsupported = errors.New("operation is not supported by this dialect")

// Record is one row read from a table: column name -> typed value
// (nil, integer, string, time.Time).
type Record map[string]any

// Session is the driver boundary: a connected database capability that runs
// raw SQL. Implementations must be safe for concurrent use, since all rules
// within an execution group share one session.
type Session interface {
	// Query runs a select statement and returns the full result set.
	Query(ctx context.Context, query string) ([]Record, error)
	// Execute runs a statement that produces no result set.
	Execute(ctx context.Context, query string) error
	Close() error
}

// Gateway renders and runs dialect-specific SQL on behalf of the rules. It
// owns no mutable state beyond the underlying session and performs no
// retries; driver failures surface to the caller as-is.
type Gateway interface {
	// PrimaryKeyColumns returns the ordered primary key column names of the
	// table, or an empty slice when the table has no primary key.
	PrimaryKeyColumns(ctx context.Context, database, schema, table string) ([]string, error)

	ReadRows(ctx context.Context, database, schema, table, whereClause string) ([]Record, error)
	UpdateRows(ctx context.Context, database, schema, table, setClause, whereClause string) error

	// WhereFromRecord builds a where clause that distinctly identifies the
	// record. When primaryKey is non-empty the record is reduced to those
	// columns first.
	WhereFromRecord(record Record, primaryKey []string) (string, error)
	SetClauseForColumn(column string, value any) string
	AppendColumnIsNotNull(column, whereClause string) string

	TruncateTable(ctx context.Context, database, schema, table string) error
	DeleteRows(ctx context.Context, database, schema, table, whereClause string) error

	// UpdateDateColumnWithRandomVariance shifts the column by a single random
	// day offset in [rangeMin, rangeMax], computed once server-side for the
	// whole statement.
	UpdateDateColumnWithRandomVariance(
		ctx context.Context, database, schema, table, column, whereClause string,
		rangeMin, rangeMax int,
	) error

	DisableAllTriggersForDatabase(ctx context.Context, database string) error
	DisableAllTriggersForTable(ctx context.Context, database, schema, table string) error
	DisableSingleTriggerForTable(ctx context.Context, database, schema, table, trigger string) error
	EnableAllTriggersForDatabase(ctx context.Context, database string) error
	EnableAllTriggersForTable(ctx context.Context, database, schema, table string) error
	EnableSingleTriggerForTable(ctx context.Context, database, schema, table, trigger string) error

	DisableAllCheckConstraintsForDatabase(ctx context.Context, database string) error
	DisableAllCheckConstraintsForTable(ctx context.Context, database, schema, table string) error
	DisableSingleCheckConstraintForTable(ctx context.Context, database, schema, table, checkConstraint string) error
	EnableAllCheckConstraintsForDatabase(ctx context.Context, database string) error
	EnableAllCheckConstraintsForTable(ctx context.Context, database, schema, table string) error
	EnableSingleCheckConstraintForTable(ctx context.Context, database, schema, table, checkConstraint string) error

	DisableAllForeignKeysForDatabase(ctx context.Context, database string) error
	DisableAllForeignKeysForTable(ctx context.Context, database, schema, table string) error
	DisableSingleForeignKeyForTable(ctx context.Context, database, schema, table, foreignKey string) error
	EnableAllForeignKeysForDatabase(ctx context.Context, database string) error
	EnableAllForeignKeysForTable(ctx context.Context, database, schema, table string) error
	EnableSingleForeignKeyForTable(ctx context.Context, database, schema, table, foreignKey string) error

	// ExecuteCommand runs an operator-supplied statement verbatim.
	ExecuteCommand(ctx context.Context, command string) error
}
