package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datamaskio/datamask/internal/db"
)

type recordingSession struct {
	queries  []string
	executed []string
	results  []db.Record
}

func (s *recordingSession) Query(_ context.Context, query string) ([]db.Record, error) {
	s.queries = append(s.queries, query)
	return s.results, nil
}

func (s *recordingSession) Execute(_ context.Context, query string) error {
	s.executed = append(s.executed, query)
	return nil
}

func (s *recordingSession) Close() error { return nil }

func TestGateway_PrimaryKeyColumns(t *testing.T) {
	session := &recordingSession{results: []db.Record{{"column_name": "id"}}}
	gw := NewGateway(session)

	columns, err := gw.PrimaryKeyColumns(context.Background(), "shop", "public", "users")
	require.NoError(t, err)
	require.Equal(t, []string{"id"}, columns)
	require.Contains(t, session.queries[0], `i.indrelid = '"public"."users"'::regclass`)
	require.Contains(t, session.queries[0], "i.indisprimary")
}

func TestGateway_RowOperations(t *testing.T) {
	session := &recordingSession{}
	gw := NewGateway(session)
	ctx := context.Background()

	_, err := gw.ReadRows(ctx, "shop", "public", "users", "where 1 = 1")
	require.NoError(t, err)
	require.Equal(t, []string{`select t1.* from "public"."users" as t1 where 1 = 1;`}, session.queries)

	require.NoError(t, gw.UpdateRows(ctx, "shop", "public", "users", ` set "name" = 'Ann'`, "where 1 = 1"))
	require.NoError(t, gw.TruncateTable(ctx, "shop", "public", "audit"))
	require.NoError(t, gw.DeleteRows(ctx, "shop", "public", "audit", ""))
	require.Equal(t, []string{
		`update "public"."users"  set "name" = 'Ann' where 1 = 1;`,
		`truncate table "public"."audit";`,
		`delete from "public"."audit" ;`,
	}, session.executed)
}

func TestGateway_UpdateDateColumnWithRandomVariance(t *testing.T) {
	session := &recordingSession{}
	gw := NewGateway(session)

	err := gw.UpdateDateColumnWithRandomVariance(
		context.Background(), "shop", "public", "users", "dob",
		`where 1 = 1 and "dob" is not null`, 1, 30,
	)
	require.NoError(t, err)
	require.Equal(
		t,
		[]string{
			`update "public"."users" set "dob" = "dob" + make_interval(days => v.offset_days) ` +
				`from (select (1 + floor(random() * (30 + 1 - 1)))::int as offset_days) as v ` +
				`where 1 = 1 and "dob" is not null;`,
		},
		session.executed,
	)
}

func TestGateway_TriggerToggles(t *testing.T) {
	session := &recordingSession{}
	gw := NewGateway(session)
	ctx := context.Background()

	require.NoError(t, gw.DisableSingleTriggerForTable(ctx, "shop", "public", "users", "trg_audit"))
	require.NoError(t, gw.EnableAllTriggersForTable(ctx, "shop", "public", "users"))
	require.Equal(t, []string{
		`alter table "public"."users" disable trigger "trg_audit";`,
		`alter table "public"."users" enable trigger user;`,
	}, session.executed)

	require.NoError(t, gw.EnableAllTriggersForDatabase(ctx, "shop"))
	walk := session.executed[2]
	require.Contains(t, walk, "for r in select schemaname, tablename from pg_tables")
	require.Contains(t, walk, "enable trigger user")
}

func TestGateway_ForeignKeyToggles(t *testing.T) {
	session := &recordingSession{}
	gw := NewGateway(session)
	ctx := context.Background()

	require.NoError(t, gw.DisableSingleForeignKeyForTable(ctx, "shop", "public", "orders", "fk_customer"))
	single := session.executed[0]
	require.Contains(t, single, "c.contype = 'f'")
	require.Contains(t, single, `c.conrelid = '"public"."orders"'::regclass`)
	require.Contains(t, single, "c.conname = 'fk_customer'")
	require.Contains(t, single, "disable trigger")

	require.NoError(t, gw.EnableAllForeignKeysForDatabase(ctx, "shop"))
	all := session.executed[1]
	require.NotContains(t, all, "conrelid")
	require.NotContains(t, all, "conname")
	require.Contains(t, all, "enable trigger")
}

func TestGateway_CheckConstraintsUnsupported(t *testing.T) {
	gw := NewGateway(&recordingSession{})
	ctx := context.Background()

	require.ErrorIs(t, gw.DisableAllCheckConstraintsForDatabase(ctx, "shop"), db.ErrUnsupported)
	require.ErrorIs(t, gw.EnableAllCheckConstraintsForTable(ctx, "shop", "public", "users"), db.ErrUnsupported)
	require.ErrorIs(
		t,
		gw.DisableSingleCheckConstraintForTable(ctx, "shop", "public", "users", "ck_age"),
		db.ErrUnsupported,
	)
}
