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
	"errors"
	"fmt"

	"github.com/datamaskio/datamask/internal/db"
	"github.com/datamaskio/datamask/internal/instructions"
)

// ErrUnknownRule tags an instruction whose discriminator matches no rule
// variant.
var ErrUnknownRule = errors.New("not a recognized rule type")

// CreateRule dispatches one instruction record to a concrete rule variant,
// injecting the shared gateway. Absent required fields fail with a
// MissingFieldError; the caller must still invoke Validate on the result.
func CreateRule(instr instructions.Instruction, gateway db.Gateway) (Rule, error) {
	ruleName, err := instr.StringField("rule", "unknown")
	if err != nil {
		return nil, err
	}

	switch ruleName {
	case "fake_string_substitution":
		return createFakeStringSubstitution(instr, ruleName, gateway)
	case "static_string_substitution":
		return createStaticStringSubstitution(instr, ruleName, gateway)
	case "fake_ssn_substitution":
		return createFakeSsnSubstitution(instr, ruleName, gateway)
	case "date_variance":
		return createDateVariance(instr, ruleName, gateway)
	case "truncate_table":
		base, err := tableRuleFields(instr, ruleName)
		if err != nil {
			return nil, err
		}
		return &TruncateTableRule{tableRule: base, gateway: gateway}, nil
	case "delete_rows":
		base, err := tableRuleFields(instr, ruleName)
		if err != nil {
			return nil, err
		}
		whereClause, err := instr.StringField("where_clause", ruleName)
		if err != nil {
			return nil, err
		}
		return &DeleteRowsRule{tableRule: base, whereClause: whereClause, gateway: gateway}, nil
	case "adhoc_command":
		group, err := instr.IntField("group", ruleName)
		if err != nil {
			return nil, err
		}
		command, err := instr.StringField("command", ruleName)
		if err != nil {
			return nil, err
		}
		return &AdHocCommandRule{group: group, command: command, gateway: gateway}, nil
	case "adhoc_script":
		group, err := instr.IntField("group", ruleName)
		if err != nil {
			return nil, err
		}
		script, err := instr.StringField("script", ruleName)
		if err != nil {
			return nil, err
		}
		return &AdHocScriptRule{group: group, script: script, gateway: gateway}, nil
	case "disable_trigger":
		base, err := objectToggleFields(instr, ruleName, "trigger")
		if err != nil {
			return nil, err
		}
		return &DisableTriggerRule{objectToggleRule: base, gateway: gateway}, nil
	case "enable_trigger":
		base, err := objectToggleFields(instr, ruleName, "trigger")
		if err != nil {
			return nil, err
		}
		return &EnableTriggerRule{objectToggleRule: base, gateway: gateway}, nil
	case "disable_check_constraint":
		base, err := objectToggleFields(instr, ruleName, "check_constraint")
		if err != nil {
			return nil, err
		}
		return &DisableCheckConstraintRule{objectToggleRule: base, gateway: gateway}, nil
	case "enable_check_constraint":
		base, err := objectToggleFields(instr, ruleName, "check_constraint")
		if err != nil {
			return nil, err
		}
		return &EnableCheckConstraintRule{objectToggleRule: base, gateway: gateway}, nil
	case "disable_foreign_key":
		base, err := objectToggleFields(instr, ruleName, "foreign_key")
		if err != nil {
			return nil, err
		}
		return &DisableForeignKeyRule{objectToggleRule: base, gateway: gateway}, nil
	case "enable_foreign_key":
		base, err := objectToggleFields(instr, ruleName, "foreign_key")
		if err != nil {
			return nil, err
		}
		return &EnableForeignKeyRule{objectToggleRule: base, gateway: gateway}, nil
	default:
		return nil, fmt.Errorf("'%s' is %w", ruleName, ErrUnknownRule)
	}
}

func tableRuleFields(instr instructions.Instruction, ruleName string) (tableRule, error) {
	group, err := instr.IntField("group", ruleName)
	if err != nil {
		return tableRule{}, err
	}
	database, err := instr.StringField("database", ruleName)
	if err != nil {
		return tableRule{}, err
	}
	schema, err := instr.StringField("schema", ruleName)
	if err != nil {
		return tableRule{}, err
	}
	table, err := instr.StringField("table", ruleName)
	if err != nil {
		return tableRule{}, err
	}
	return tableRule{group: group, database: database, schema: schema, table: table}, nil
}

func objectToggleFields(
	instr instructions.Instruction, ruleName, objectKey string,
) (objectToggleRule, error) {
	group, err := instr.IntField("group", ruleName)
	if err != nil {
		return objectToggleRule{}, err
	}
	database, err := instr.StringField("database", ruleName)
	if err != nil {
		return objectToggleRule{}, err
	}
	schema, err := instr.StringField("schema", ruleName)
	if err != nil {
		return objectToggleRule{}, err
	}
	table, err := instr.StringField("table", ruleName)
	if err != nil {
		return objectToggleRule{}, err
	}
	object, err := instr.StringField(objectKey, ruleName)
	if err != nil {
		return objectToggleRule{}, err
	}
	return objectToggleRule{
		group:    group,
		database: database,
		schema:   schema,
		table:    table,
		object:   object,
	}, nil
}

func createFakeStringSubstitution(
	instr instructions.Instruction, ruleName string, gateway db.Gateway,
) (Rule, error) {
	base, err := tableRuleFields(instr, ruleName)
	if err != nil {
		return nil, err
	}
	column, err := instr.StringField("column", ruleName)
	if err != nil {
		return nil, err
	}
	whereClause, err := instr.StringField("where_clause", ruleName)
	if err != nil {
		return nil, err
	}
	dataSetPath, err := instr.StringField("data_set_path", ruleName)
	if err != nil {
		return nil, err
	}
	dataSetKey, err := instr.StringField("data_set_key", ruleName)
	if err != nil {
		return nil, err
	}
	return &FakeStringSubstitutionRule{
		tableRule:   base,
		column:      column,
		whereClause: whereClause,
		dataSetPath: dataSetPath,
		dataSetKey:  dataSetKey,
		gateway:     gateway,
		rnd:         newRandSource(),
	}, nil
}

func createStaticStringSubstitution(
	instr instructions.Instruction, ruleName string, gateway db.Gateway,
) (Rule, error) {
	base, err := tableRuleFields(instr, ruleName)
	if err != nil {
		return nil, err
	}
	column, err := instr.StringField("column", ruleName)
	if err != nil {
		return nil, err
	}
	staticValue, err := instr.StringField("static_value", ruleName)
	if err != nil {
		return nil, err
	}
	whereClause, err := instr.StringField("where_clause", ruleName)
	if err != nil {
		return nil, err
	}
	return &StaticStringSubstitutionRule{
		tableRule:   base,
		column:      column,
		staticValue: staticValue,
		whereClause: whereClause,
		gateway:     gateway,
	}, nil
}

func createFakeSsnSubstitution(
	instr instructions.Instruction, ruleName string, gateway db.Gateway,
) (Rule, error) {
	base, err := tableRuleFields(instr, ruleName)
	if err != nil {
		return nil, err
	}
	column, err := instr.StringField("column", ruleName)
	if err != nil {
		return nil, err
	}
	// The instruction-file key predates this implementation, spelling
	// included.
	separator, err := instr.StringField("seperator", ruleName)
	if err != nil {
		return nil, err
	}
	ignoreNull, err := instr.StringField("ignore_null", ruleName)
	if err != nil {
		return nil, err
	}
	return &FakeSsnSubstitutionRule{
		tableRule:  base,
		column:     column,
		separator:  separator,
		ignoreNull: ignoreNull,
		gateway:    gateway,
	}, nil
}

func createDateVariance(
	instr instructions.Instruction, ruleName string, gateway db.Gateway,
) (Rule, error) {
	base, err := tableRuleFields(instr, ruleName)
	if err != nil {
		return nil, err
	}
	column, err := instr.StringField("column", ruleName)
	if err != nil {
		return nil, err
	}
	varianceRange, err := instr.IntField("range", ruleName)
	if err != nil {
		return nil, err
	}
	whereClause, err := instr.StringField("where_clause", ruleName)
	if err != nil {
		return nil, err
	}
	method, err := instr.StringField("method", ruleName)
	if err != nil {
		return nil, err
	}
	return &DateVarianceRule{
		tableRule:     base,
		column:        column,
		varianceRange: varianceRange,
		whereClause:   whereClause,
		method:        method,
		gateway:       gateway,
		rnd:           newRandSource(),
	}, nil
}
