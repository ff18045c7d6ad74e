package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datamaskio/datamask/internal/instructions"
)

func TestCreateRule_AllVariants(t *testing.T) {
	tests := []struct {
		name  string
		instr instructions.Instruction
		want  any
	}{
		{
			name: "fake_string_substitution",
			instr: instructions.Instruction{
				"rule": "fake_string_substitution", "group": float64(1),
				"database": "shop", "schema": "dbo", "table": "users",
				"column": "name", "where_clause": "where 1 = 1",
				"data_set_path": "names.json", "data_set_key": "name",
			},
			want: &FakeStringSubstitutionRule{},
		},
		{
			name: "static_string_substitution",
			instr: instructions.Instruction{
				"rule": "static_string_substitution", "group": float64(1),
				"database": "shop", "schema": "dbo", "table": "users",
				"column": "name", "static_value": "REDACTED", "where_clause": "",
			},
			want: &StaticStringSubstitutionRule{},
		},
		{
			name: "fake_ssn_substitution",
			instr: instructions.Instruction{
				"rule": "fake_ssn_substitution", "group": float64(1),
				"database": "shop", "schema": "dbo", "table": "users",
				"column": "ssn", "seperator": "-", "ignore_null": "yes",
			},
			want: &FakeSsnSubstitutionRule{},
		},
		{
			name: "date_variance",
			instr: instructions.Instruction{
				"rule": "date_variance", "group": float64(1),
				"database": "shop", "schema": "dbo", "table": "users",
				"column": "dob", "range": float64(-5), "where_clause": "", "method": "simple",
			},
			want: &DateVarianceRule{},
		},
		{
			name: "truncate_table",
			instr: instructions.Instruction{
				"rule": "truncate_table", "group": float64(1),
				"database": "shop", "schema": "dbo", "table": "audit",
			},
			want: &TruncateTableRule{},
		},
		{
			name: "delete_rows",
			instr: instructions.Instruction{
				"rule": "delete_rows", "group": float64(1),
				"database": "shop", "schema": "dbo", "table": "audit",
				"where_clause": "where 1 = 1",
			},
			want: &DeleteRowsRule{},
		},
		{
			name: "adhoc_command",
			instr: instructions.Instruction{
				"rule": "adhoc_command", "group": float64(1), "command": "select 1",
			},
			want: &AdHocCommandRule{},
		},
		{
			name: "adhoc_script",
			instr: instructions.Instruction{
				"rule": "adhoc_script", "group": float64(1), "script": "cleanup.sql",
			},
			want: &AdHocScriptRule{},
		},
		{
			name: "disable_trigger",
			instr: instructions.Instruction{
				"rule": "disable_trigger", "group": float64(1),
				"database": "shop", "schema": "dbo", "table": "users", "trigger": "*",
			},
			want: &DisableTriggerRule{},
		},
		{
			name: "enable_trigger",
			instr: instructions.Instruction{
				"rule": "enable_trigger", "group": float64(2),
				"database": "shop", "schema": "dbo", "table": "users", "trigger": "*",
			},
			want: &EnableTriggerRule{},
		},
		{
			name: "disable_check_constraint",
			instr: instructions.Instruction{
				"rule": "disable_check_constraint", "group": float64(1),
				"database": "shop", "schema": "dbo", "table": "users", "check_constraint": "ck_age",
			},
			want: &DisableCheckConstraintRule{},
		},
		{
			name: "enable_check_constraint",
			instr: instructions.Instruction{
				"rule": "enable_check_constraint", "group": float64(2),
				"database": "shop", "schema": "dbo", "table": "users", "check_constraint": "ck_age",
			},
			want: &EnableCheckConstraintRule{},
		},
		{
			name: "disable_foreign_key",
			instr: instructions.Instruction{
				"rule": "disable_foreign_key", "group": float64(1),
				"database": "shop", "schema": "dbo", "table": "orders", "foreign_key": "fk_user",
			},
			want: &DisableForeignKeyRule{},
		},
		{
			name: "enable_foreign_key",
			instr: instructions.Instruction{
				"rule": "enable_foreign_key", "group": float64(2),
				"database": "shop", "schema": "dbo", "table": "orders", "foreign_key": "fk_user",
			},
			want: &EnableForeignKeyRule{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := CreateRule(tt.instr, &fakeGateway{})
			require.NoError(t, err)
			require.IsType(t, tt.want, rule)
		})
	}
}

func TestCreateRule_GroupFromJSONNumber(t *testing.T) {
	// JSON numbers arrive as float64; the factory must coerce them.
	instr := instructions.Instruction{
		"rule": "truncate_table", "group": float64(3),
		"database": "shop", "schema": "dbo", "table": "audit",
	}
	rule, err := CreateRule(instr, &fakeGateway{})
	require.NoError(t, err)
	require.Equal(t, 3, rule.Group())
}

func TestCreateRule_UnknownRule(t *testing.T) {
	_, err := CreateRule(instructions.Instruction{"rule": "scramble_everything"}, &fakeGateway{})
	require.ErrorIs(t, err, ErrUnknownRule)
}

func TestCreateRule_MissingField(t *testing.T) {
	instr := instructions.Instruction{
		"rule": "static_string_substitution", "group": float64(1),
		"database": "shop", "schema": "dbo", "table": "users",
		// no column
		"static_value": "REDACTED", "where_clause": "",
	}
	_, err := CreateRule(instr, &fakeGateway{})
	var missing *instructions.MissingFieldError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "column", missing.Field)
	require.Equal(t, "static_string_substitution", missing.Rule)
}

func TestCreateRule_MissingDiscriminator(t *testing.T) {
	_, err := CreateRule(instructions.Instruction{"group": float64(1)}, &fakeGateway{})
	var missing *instructions.MissingFieldError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "rule", missing.Field)
}
