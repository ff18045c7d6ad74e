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

// Package postgres implements the database gateway for PostgreSQL.
//
// PostgreSQL cannot address another database inside a statement, so object
// references are rendered as "schema"."table" and the instruction's database
// field is expected to match the connected database. Whole-database toggles
// walk the catalog in DO blocks; foreign keys are toggled through their
// internal constraint triggers, which requires superuser. Check constraints
// cannot be disabled at all in PostgreSQL, so those operations return
// db.ErrUnsupported.
package postgres

import (
	"context"
	"fmt"

	"github.com/datamaskio/datamask/internal/db"
	"github.com/datamaskio/datamask/internal/db/sqlfmt"
)

type Gateway struct {
	session db.Session
}

var _ db.Gateway = (*Gateway)(nil)

func NewGateway(session db.Session) *Gateway {
	return &Gateway{session: session}
}

func (g *Gateway) PrimaryKeyColumns(ctx context.Context, _, schema, table string) ([]string, error) {
	query := fmt.Sprintf(
		"select a.attname as column_name "+
			"from pg_index i "+
			"join pg_attribute a on a.attrelid = i.indrelid and a.attnum = any(i.indkey) "+
			"where i.indrelid = '%s'::regclass "+
			"and i.indisprimary "+
			"order by array_position(i.indkey, a.attnum);",
		g.tableName(schema, table),
	)
	records, err := g.session.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read primary key columns for %s.%s: %w", schema, table, err)
	}

	columns := make([]string, 0, len(records))
	for _, record := range records {
		name, ok := record["column_name"].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected column_name value %v", record["column_name"])
		}
		columns = append(columns, name)
	}
	return columns, nil
}

func (g *Gateway) ReadRows(ctx context.Context, _, schema, table, whereClause string) ([]db.Record, error) {
	return g.session.Query(ctx, fmt.Sprintf(
		"select t1.* from %s as t1 %s;", g.tableName(schema, table), whereClause,
	))
}

func (g *Gateway) UpdateRows(ctx context.Context, _, schema, table, setClause, whereClause string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"update %s %s %s;", g.tableName(schema, table), setClause, whereClause,
	))
}

func (g *Gateway) WhereFromRecord(record db.Record, primaryKey []string) (string, error) {
	return sqlfmt.WhereFromRecord(sqlfmt.DoubleQuoteIdent, record, primaryKey)
}

func (g *Gateway) SetClauseForColumn(column string, value any) string {
	return sqlfmt.SetClauseForColumn(sqlfmt.DoubleQuoteIdent, column, value)
}

func (g *Gateway) AppendColumnIsNotNull(column, whereClause string) string {
	return sqlfmt.AppendIsNotNull(sqlfmt.DoubleQuoteIdent, column, whereClause)
}

func (g *Gateway) TruncateTable(ctx context.Context, _, schema, table string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"truncate table %s;", g.tableName(schema, table),
	))
}

func (g *Gateway) DeleteRows(ctx context.Context, _, schema, table, whereClause string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"delete from %s %s;", g.tableName(schema, table), whereClause,
	))
}

// UpdateDateColumnWithRandomVariance computes one random offset in a
// single-row from-subquery, so random() is evaluated once per statement
// rather than once per row.
func (g *Gateway) UpdateDateColumnWithRandomVariance(
	ctx context.Context, _, schema, table, column, whereClause string,
	rangeMin, rangeMax int,
) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"update %s set %s = %s + make_interval(days => v.offset_days) "+
			"from (select (%d + floor(random() * (%d + 1 - %d)))::int as offset_days) as v %s;",
		g.tableName(schema, table),
		sqlfmt.DoubleQuoteIdent(column),
		sqlfmt.DoubleQuoteIdent(column),
		rangeMin, rangeMax, rangeMin,
		whereClause,
	))
}

func (g *Gateway) DisableAllTriggersForDatabase(ctx context.Context, _ string) error {
	return g.walkUserTriggers(ctx, "disable")
}

func (g *Gateway) EnableAllTriggersForDatabase(ctx context.Context, _ string) error {
	return g.walkUserTriggers(ctx, "enable")
}

// Table-wide toggles target USER triggers only, so foreign key enforcement
// (implemented as internal triggers) stays under the foreign key rules.
func (g *Gateway) DisableAllTriggersForTable(ctx context.Context, _, schema, table string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"alter table %s disable trigger user;", g.tableName(schema, table),
	))
}

func (g *Gateway) EnableAllTriggersForTable(ctx context.Context, _, schema, table string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"alter table %s enable trigger user;", g.tableName(schema, table),
	))
}

func (g *Gateway) DisableSingleTriggerForTable(ctx context.Context, _, schema, table, trigger string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"alter table %s disable trigger %s;",
		g.tableName(schema, table), sqlfmt.DoubleQuoteIdent(trigger),
	))
}

func (g *Gateway) EnableSingleTriggerForTable(ctx context.Context, _, schema, table, trigger string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"alter table %s enable trigger %s;",
		g.tableName(schema, table), sqlfmt.DoubleQuoteIdent(trigger),
	))
}

func (g *Gateway) DisableAllCheckConstraintsForDatabase(ctx context.Context, _ string) error {
	return g.checkConstraintsUnsupported()
}

func (g *Gateway) EnableAllCheckConstraintsForDatabase(ctx context.Context, _ string) error {
	return g.checkConstraintsUnsupported()
}

func (g *Gateway) DisableAllCheckConstraintsForTable(ctx context.Context, _, _, _ string) error {
	return g.checkConstraintsUnsupported()
}

func (g *Gateway) EnableAllCheckConstraintsForTable(ctx context.Context, _, _, _ string) error {
	return g.checkConstraintsUnsupported()
}

func (g *Gateway) DisableSingleCheckConstraintForTable(ctx context.Context, _, _, _, _ string) error {
	return g.checkConstraintsUnsupported()
}

func (g *Gateway) EnableSingleCheckConstraintForTable(ctx context.Context, _, _, _, _ string) error {
	return g.checkConstraintsUnsupported()
}

func (g *Gateway) DisableAllForeignKeysForDatabase(ctx context.Context, _ string) error {
	return g.walkForeignKeyTriggers(ctx, "disable", "", "", "")
}

func (g *Gateway) EnableAllForeignKeysForDatabase(ctx context.Context, _ string) error {
	return g.walkForeignKeyTriggers(ctx, "enable", "", "", "")
}

func (g *Gateway) DisableAllForeignKeysForTable(ctx context.Context, _, schema, table string) error {
	return g.walkForeignKeyTriggers(ctx, "disable", schema, table, "")
}

func (g *Gateway) EnableAllForeignKeysForTable(ctx context.Context, _, schema, table string) error {
	return g.walkForeignKeyTriggers(ctx, "enable", schema, table, "")
}

func (g *Gateway) DisableSingleForeignKeyForTable(ctx context.Context, _, schema, table, foreignKey string) error {
	return g.walkForeignKeyTriggers(ctx, "disable", schema, table, foreignKey)
}

func (g *Gateway) EnableSingleForeignKeyForTable(ctx context.Context, _, schema, table, foreignKey string) error {
	return g.walkForeignKeyTriggers(ctx, "enable", schema, table, foreignKey)
}

func (g *Gateway) ExecuteCommand(ctx context.Context, command string) error {
	return g.session.Execute(ctx, command)
}

func (g *Gateway) tableName(schema, table string) string {
	return sqlfmt.DoubleQuoteIdent(schema) + "." + sqlfmt.DoubleQuoteIdent(table)
}

func (g *Gateway) checkConstraintsUnsupported() error {
	return fmt.Errorf("postgres cannot toggle check constraints: %w", db.ErrUnsupported)
}

func (g *Gateway) walkUserTriggers(ctx context.Context, action string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"do $$ "+
			"declare r record; "+
			"begin "+
			"for r in select schemaname, tablename from pg_tables "+
			"where schemaname not in ('pg_catalog', 'information_schema') "+
			"loop "+
			"execute format('alter table %%I.%%I %s trigger user', r.schemaname, r.tablename); "+
			"end loop; "+
			"end $$;",
		action,
	))
}

// walkForeignKeyTriggers toggles the internal triggers that enforce foreign
// key constraints. Empty schema/table widens the walk to the whole database;
// empty foreignKey widens it to every foreign key on the table.
func (g *Gateway) walkForeignKeyTriggers(ctx context.Context, action, schema, table, foreignKey string) error {
	filter := ""
	if table != "" {
		filter += fmt.Sprintf(
			" and c.conrelid = '%s'::regclass", g.tableName(schema, table),
		)
	}
	if foreignKey != "" {
		filter += fmt.Sprintf(" and c.conname = %s", sqlfmt.Literal(foreignKey))
	}

	return g.session.Execute(ctx, fmt.Sprintf(
		"do $$ "+
			"declare r record; "+
			"begin "+
			"for r in select ns.nspname as schema_name, cl.relname as table_name, tg.tgname as trigger_name "+
			"from pg_trigger tg "+
			"join pg_constraint c on tg.tgconstraint = c.oid "+
			"join pg_class cl on tg.tgrelid = cl.oid "+
			"join pg_namespace ns on cl.relnamespace = ns.oid "+
			"where c.contype = 'f'%s "+
			"loop "+
			"execute format('alter table %%I.%%I %s trigger %%I', r.schema_name, r.table_name, r.trigger_name); "+
			"end loop; "+
			"end $$;",
		filter, action,
	))
}
