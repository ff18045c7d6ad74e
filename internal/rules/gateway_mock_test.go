package rules

import (
	"context"
	"fmt"

	"github.com/datamaskio/datamask/internal/db"
	"github.com/datamaskio/datamask/internal/db/sqlfmt"
)

// fakeGateway records every call so the tests can assert on ordering and
// rendered clauses without a live database.
type fakeGateway struct {
	records    []db.Record
	primaryKey []string
	failWith   error

	calls   []string
	updates []update
}

type update struct {
	setClause   string
	whereClause string
}

var _ db.Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) call(format string, args ...any) {
	g.calls = append(g.calls, fmt.Sprintf(format, args...))
}

func (g *fakeGateway) PrimaryKeyColumns(_ context.Context, database, schema, table string) ([]string, error) {
	g.call("PrimaryKeyColumns(%s,%s,%s)", database, schema, table)
	return g.primaryKey, g.failWith
}

func (g *fakeGateway) ReadRows(_ context.Context, database, schema, table, whereClause string) ([]db.Record, error) {
	g.call("ReadRows(%s,%s,%s,%s)", database, schema, table, whereClause)
	return g.records, g.failWith
}

func (g *fakeGateway) UpdateRows(_ context.Context, database, schema, table, setClause, whereClause string) error {
	g.call("UpdateRows(%s,%s,%s)", database, schema, table)
	g.updates = append(g.updates, update{setClause: setClause, whereClause: whereClause})
	return g.failWith
}

func (g *fakeGateway) WhereFromRecord(record db.Record, primaryKey []string) (string, error) {
	return sqlfmt.WhereFromRecord(sqlfmt.BracketIdent, record, primaryKey)
}

func (g *fakeGateway) SetClauseForColumn(column string, value any) string {
	return sqlfmt.SetClauseForColumn(sqlfmt.BracketIdent, column, value)
}

func (g *fakeGateway) AppendColumnIsNotNull(column, whereClause string) string {
	return sqlfmt.AppendIsNotNull(sqlfmt.BracketIdent, column, whereClause)
}

func (g *fakeGateway) TruncateTable(_ context.Context, database, schema, table string) error {
	g.call("TruncateTable(%s,%s,%s)", database, schema, table)
	return g.failWith
}

func (g *fakeGateway) DeleteRows(_ context.Context, database, schema, table, whereClause string) error {
	g.call("DeleteRows(%s,%s,%s,%s)", database, schema, table, whereClause)
	return g.failWith
}

func (g *fakeGateway) UpdateDateColumnWithRandomVariance(
	_ context.Context, database, schema, table, column, whereClause string,
	rangeMin, rangeMax int,
) error {
	g.call("UpdateDateColumnWithRandomVariance(%s,%s,%s,%s,%s,%d,%d)",
		database, schema, table, column, whereClause, rangeMin, rangeMax)
	return g.failWith
}

func (g *fakeGateway) DisableAllTriggersForDatabase(_ context.Context, database string) error {
	g.call("DisableAllTriggersForDatabase(%s)", database)
	return g.failWith
}

func (g *fakeGateway) DisableAllTriggersForTable(_ context.Context, database, schema, table string) error {
	g.call("DisableAllTriggersForTable(%s,%s,%s)", database, schema, table)
	return g.failWith
}

func (g *fakeGateway) DisableSingleTriggerForTable(_ context.Context, database, schema, table, trigger string) error {
	g.call("DisableSingleTriggerForTable(%s,%s,%s,%s)", database, schema, table, trigger)
	return g.failWith
}

func (g *fakeGateway) EnableAllTriggersForDatabase(_ context.Context, database string) error {
	g.call("EnableAllTriggersForDatabase(%s)", database)
	return g.failWith
}

func (g *fakeGateway) EnableAllTriggersForTable(_ context.Context, database, schema, table string) error {
	g.call("EnableAllTriggersForTable(%s,%s,%s)", database, schema, table)
	return g.failWith
}

func (g *fakeGateway) EnableSingleTriggerForTable(_ context.Context, database, schema, table, trigger string) error {
	g.call("EnableSingleTriggerForTable(%s,%s,%s,%s)", database, schema, table, trigger)
	return g.failWith
}

func (g *fakeGateway) DisableAllCheckConstraintsForDatabase(_ context.Context, database string) error {
	g.call("DisableAllCheckConstraintsForDatabase(%s)", database)
	return g.failWith
}

func (g *fakeGateway) DisableAllCheckConstraintsForTable(_ context.Context, database, schema, table string) error {
	g.call("DisableAllCheckConstraintsForTable(%s,%s,%s)", database, schema, table)
	return g.failWith
}

func (g *fakeGateway) DisableSingleCheckConstraintForTable(
	_ context.Context, database, schema, table, checkConstraint string,
) error {
	g.call("DisableSingleCheckConstraintForTable(%s,%s,%s,%s)", database, schema, table, checkConstraint)
	return g.failWith
}

func (g *fakeGateway) EnableAllCheckConstraintsForDatabase(_ context.Context, database string) error {
	g.call("EnableAllCheckConstraintsForDatabase(%s)", database)
	return g.failWith
}

func (g *fakeGateway) EnableAllCheckConstraintsForTable(_ context.Context, database, schema, table string) error {
	g.call("EnableAllCheckConstraintsForTable(%s,%s,%s)", database, schema, table)
	return g.failWith
}

func (g *fakeGateway) EnableSingleCheckConstraintForTable(
	_ context.Context, database, schema, table, checkConstraint string,
) error {
	g.call("EnableSingleCheckConstraintForTable(%s,%s,%s,%s)", database, schema, table, checkConstraint)
	return g.failWith
}

func (g *fakeGateway) DisableAllForeignKeysForDatabase(_ context.Context, database string) error {
	g.call("DisableAllForeignKeysForDatabase(%s)", database)
	return g.failWith
}

func (g *fakeGateway) DisableAllForeignKeysForTable(_ context.Context, database, schema, table string) error {
	g.call("DisableAllForeignKeysForTable(%s,%s,%s)", database, schema, table)
	return g.failWith
}

func (g *fakeGateway) DisableSingleForeignKeyForTable(
	_ context.Context, database, schema, table, foreignKey string,
) error {
	g.call("DisableSingleForeignKeyForTable(%s,%s,%s,%s)", database, schema, table, foreignKey)
	return g.failWith
}

func (g *fakeGateway) EnableAllForeignKeysForDatabase(_ context.Context, database string) error {
	g.call("EnableAllForeignKeysForDatabase(%s)", database)
	return g.failWith
}

func (g *fakeGateway) EnableAllForeignKeysForTable(_ context.Context, database, schema, table string) error {
	g.call("EnableAllForeignKeysForTable(%s,%s,%s)", database, schema, table)
	return g.failWith
}

func (g *fakeGateway) EnableSingleForeignKeyForTable(
	_ context.Context, database, schema, table, foreignKey string,
) error {
	g.call("EnableSingleForeignKeyForTable(%s,%s,%s,%s)", database, schema, table, foreignKey)
	return g.failWith
}

func (g *fakeGateway) ExecuteCommand(_ context.Context, command string) error {
	g.call("ExecuteCommand(%s)", command)
	return g.failWith
}
