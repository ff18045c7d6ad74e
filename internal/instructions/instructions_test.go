package instructions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSet(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instructions.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadSet(t *testing.T) {
	path := writeSet(t, `[
		{"rule": "truncate_table", "group": 1, "database": "shop", "schema": "dbo", "table": "audit"},
		{"rule": "adhoc_command", "group": 2, "command": "select 1"}
	]`)
	set, err := LoadSet(path)
	require.NoError(t, err)
	require.Len(t, set, 2)
	require.Equal(t, "truncate_table", set[0]["rule"])
	require.Equal(t, float64(1), set[0]["group"])
	require.Equal(t, "select 1", set[1]["command"])
}

func TestLoadSet_InvalidJSON(t *testing.T) {
	path := writeSet(t, `[{"rule": "truncate_table"`)
	_, err := LoadSet(path)
	require.ErrorContains(t, err, "not valid JSON")
}

func TestLoadSet_NotAnArray(t *testing.T) {
	path := writeSet(t, `{"rule": "truncate_table"}`)
	_, err := LoadSet(path)
	require.ErrorContains(t, err, "must contain a JSON array")
}

func TestLoadSet_NonObjectElement(t *testing.T) {
	path := writeSet(t, `[{"rule": "truncate_table"}, 42]`)
	_, err := LoadSet(path)
	require.ErrorContains(t, err, "instruction 1 is not a JSON object")
}

func TestStringField(t *testing.T) {
	instr := Instruction{"column": "ssn", "empty": ""}

	value, err := instr.StringField("column", "fake_ssn_substitution")
	require.NoError(t, err)
	require.Equal(t, "ssn", value)

	// Presence and emptiness are separate concerns.
	value, err = instr.StringField("empty", "fake_ssn_substitution")
	require.NoError(t, err)
	require.Empty(t, value)

	_, err = instr.StringField("seperator", "fake_ssn_substitution")
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "seperator", missing.Field)
	require.Equal(t, "fake_ssn_substitution", missing.Rule)
	require.Equal(t,
		"'seperator' is missing from the instructions for the fake_ssn_substitution rule",
		missing.Error())
}

func TestIntField(t *testing.T) {
	instr := Instruction{"group": float64(3), "range": "not a number"}

	value, err := instr.IntField("group", "date_variance")
	require.NoError(t, err)
	require.Equal(t, 3, value)

	_, err = instr.IntField("missing", "date_variance")
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)

	// A present but malformed value is a cast error, not a missing field.
	_, err = instr.IntField("range", "date_variance")
	require.Error(t, err)
	require.False(t, errors.As(err, &missing))
}
