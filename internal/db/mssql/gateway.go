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

// Package mssql implements the database gateway for Microsoft SQL Server:
// bracket-quoted identifiers, three-part object names, and catalog-walk
// T-SQL batches for the whole-database and whole-table DDL toggles.
package mssql

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

func (g *Gateway) PrimaryKeyColumns(ctx context.Context, database, schema, table string) ([]string, error) {
	query := fmt.Sprintf(
		"use [%s]; "+
			"select col.[name] as column_name "+
			"from sys.tables tab "+
			"inner join sys.schemas as sch "+
			"on tab.schema_id = sch.schema_id "+
			"inner join sys.indexes pk "+
			"on tab.object_id = pk.object_id and pk.is_primary_key = 1 "+
			"inner join sys.index_columns ic "+
			"on ic.object_id = pk.object_id and ic.index_id = pk.index_id "+
			"inner join sys.columns col "+
			"on pk.object_id = col.object_id and col.column_id = ic.column_id "+
			"where sch.[name] = '%s' "+
			"and tab.name = '%s' "+
			"order by ic.index_column_id asc;",
		database, schema, table,
	)
	records, err := g.session.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read primary key columns for %s.%s.%s: %w", database, schema, table, err)
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

func (g *Gateway) ReadRows(ctx context.Context, database, schema, table, whereClause string) ([]db.Record, error) {
	return g.session.Query(ctx, fmt.Sprintf(
		"select t1.* from %s as t1 %s;", g.tableName(database, schema, table), whereClause,
	))
}

func (g *Gateway) UpdateRows(ctx context.Context, database, schema, table, setClause, whereClause string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"update %s %s %s;", g.tableName(database, schema, table), setClause, whereClause,
	))
}

func (g *Gateway) WhereFromRecord(record db.Record, primaryKey []string) (string, error) {
	return sqlfmt.WhereFromRecord(sqlfmt.BracketIdent, record, primaryKey)
}

func (g *Gateway) SetClauseForColumn(column string, value any) string {
	return sqlfmt.SetClauseForColumn(sqlfmt.BracketIdent, column, value)
}

func (g *Gateway) AppendColumnIsNotNull(column, whereClause string) string {
	return sqlfmt.AppendIsNotNull(sqlfmt.BracketIdent, column, whereClause)
}

func (g *Gateway) TruncateTable(ctx context.Context, database, schema, table string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"truncate table %s;", g.tableName(database, schema, table),
	))
}

func (g *Gateway) DeleteRows(ctx context.Context, database, schema, table, whereClause string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"delete from %s %s;", g.tableName(database, schema, table), whereClause,
	))
}

// UpdateDateColumnWithRandomVariance relies on T-SQL evaluating rand() once
// per statement, so every matched row shifts by the same offset.
func (g *Gateway) UpdateDateColumnWithRandomVariance(
	ctx context.Context, database, schema, table, column, whereClause string,
	rangeMin, rangeMax int,
) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"update %s set %s = dateadd(day, (%d + floor(rand() * (%d + 1 - %d))), %s) %s;",
		g.tableName(database, schema, table),
		sqlfmt.BracketIdent(column),
		rangeMin, rangeMax, rangeMin,
		sqlfmt.BracketIdent(column),
		whereClause,
	))
}

func (g *Gateway) DisableAllTriggersForDatabase(ctx context.Context, database string) error {
	return g.walkTriggers(ctx, database, "disable")
}

func (g *Gateway) EnableAllTriggersForDatabase(ctx context.Context, database string) error {
	return g.walkTriggers(ctx, database, "enable")
}

func (g *Gateway) DisableAllTriggersForTable(ctx context.Context, database, schema, table string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"use [%s]; disable trigger all on [%s].[%s];", database, schema, table,
	))
}

func (g *Gateway) EnableAllTriggersForTable(ctx context.Context, database, schema, table string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"use [%s]; enable trigger all on [%s].[%s];", database, schema, table,
	))
}

func (g *Gateway) DisableSingleTriggerForTable(ctx context.Context, database, schema, table, trigger string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"use [%s]; disable trigger [%s].[%s] on [%s].[%s];", database, schema, trigger, schema, table,
	))
}

func (g *Gateway) EnableSingleTriggerForTable(ctx context.Context, database, schema, table, trigger string) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"use [%s]; enable trigger [%s].[%s] on [%s].[%s];", database, schema, trigger, schema, table,
	))
}

func (g *Gateway) DisableAllCheckConstraintsForDatabase(ctx context.Context, database string) error {
	return g.walkConstraints(ctx, database, "", "", "sys.check_constraints", "nocheck")
}

func (g *Gateway) EnableAllCheckConstraintsForDatabase(ctx context.Context, database string) error {
	return g.walkConstraints(ctx, database, "", "", "sys.check_constraints", "check")
}

func (g *Gateway) DisableAllCheckConstraintsForTable(ctx context.Context, database, schema, table string) error {
	return g.walkConstraints(ctx, database, schema, table, "sys.check_constraints", "nocheck")
}

func (g *Gateway) EnableAllCheckConstraintsForTable(ctx context.Context, database, schema, table string) error {
	return g.walkConstraints(ctx, database, schema, table, "sys.check_constraints", "check")
}

func (g *Gateway) DisableSingleCheckConstraintForTable(
	ctx context.Context, database, schema, table, checkConstraint string,
) error {
	return g.toggleSingleConstraint(ctx, database, schema, table, checkConstraint, "nocheck")
}

func (g *Gateway) EnableSingleCheckConstraintForTable(
	ctx context.Context, database, schema, table, checkConstraint string,
) error {
	return g.toggleSingleConstraint(ctx, database, schema, table, checkConstraint, "check")
}

func (g *Gateway) DisableAllForeignKeysForDatabase(ctx context.Context, database string) error {
	return g.walkConstraints(ctx, database, "", "", "sys.foreign_keys", "nocheck")
}

func (g *Gateway) EnableAllForeignKeysForDatabase(ctx context.Context, database string) error {
	return g.walkConstraints(ctx, database, "", "", "sys.foreign_keys", "check")
}

func (g *Gateway) DisableAllForeignKeysForTable(ctx context.Context, database, schema, table string) error {
	return g.walkConstraints(ctx, database, schema, table, "sys.foreign_keys", "nocheck")
}

func (g *Gateway) EnableAllForeignKeysForTable(ctx context.Context, database, schema, table string) error {
	return g.walkConstraints(ctx, database, schema, table, "sys.foreign_keys", "check")
}

func (g *Gateway) DisableSingleForeignKeyForTable(
	ctx context.Context, database, schema, table, foreignKey string,
) error {
	return g.toggleSingleConstraint(ctx, database, schema, table, foreignKey, "nocheck")
}

func (g *Gateway) EnableSingleForeignKeyForTable(
	ctx context.Context, database, schema, table, foreignKey string,
) error {
	return g.toggleSingleConstraint(ctx, database, schema, table, foreignKey, "check")
}

func (g *Gateway) ExecuteCommand(ctx context.Context, command string) error {
	return g.session.Execute(ctx, command)
}

func (g *Gateway) tableName(database, schema, table string) string {
	return fmt.Sprintf("[%s].[%s].[%s]", database, schema, table)
}

func (g *Gateway) walkTriggers(ctx context.Context, database, action string) error {
	query, err := renderAllTriggersForDatabase(triggerWalkData{Database: database, Action: action})
	if err != nil {
		return err
	}
	return g.session.Execute(ctx, query)
}

func (g *Gateway) walkConstraints(ctx context.Context, database, schema, table, catalogView, action string) error {
	query, err := renderConstraintWalk(constraintWalkData{
		Database:    database,
		Schema:      schema,
		Table:       table,
		CatalogView: catalogView,
		Action:      action,
	})
	if err != nil {
		return err
	}
	return g.session.Execute(ctx, query)
}

func (g *Gateway) toggleSingleConstraint(
	ctx context.Context, database, schema, table, constraint, action string,
) error {
	return g.session.Execute(ctx, fmt.Sprintf(
		"use [%s]; alter table [%s].[%s] %s constraint [%s];",
		database, schema, table, action, constraint,
	))
}
