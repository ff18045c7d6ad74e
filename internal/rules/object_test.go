package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectToggleRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    objectToggleRule
		wantErr bool
	}{
		{
			name: "single object",
			rule: objectToggleRule{group: 1, database: "shop", schema: "dbo", table: "users", object: "tr_audit"},
		},
		{
			name: "object wildcard",
			rule: objectToggleRule{group: 1, database: "shop", schema: "dbo", table: "users", object: "*"},
		},
		{
			name: "schema wildcard",
			rule: objectToggleRule{group: 1, database: "shop", schema: "*", table: "users", object: "tr_audit"},
		},
		{
			name:    "group must be positive",
			rule:    objectToggleRule{group: 0, database: "shop", schema: "dbo", table: "users", object: "tr_audit"},
			wantErr: true,
		},
		{
			name:    "database wildcard forbidden",
			rule:    objectToggleRule{group: 1, database: "*", schema: "dbo", table: "users", object: "tr_audit"},
			wantErr: true,
		},
		{
			name:    "table wildcard forbidden",
			rule:    objectToggleRule{group: 1, database: "shop", schema: "dbo", table: "*", object: "tr_audit"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &DisableTriggerRule{objectToggleRule: tt.rule, gateway: &fakeGateway{}}
			err := rule.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTriggerRules_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		object   string
		wantCall string
	}{
		{
			name:     "schema wildcard covers the database",
			schema:   "*",
			object:   "tr_audit",
			wantCall: "DisableAllTriggersForDatabase(shop)",
		},
		{
			name:     "object wildcard covers the table",
			schema:   "dbo",
			object:   "*",
			wantCall: "DisableAllTriggersForTable(shop,dbo,users)",
		},
		{
			name:     "schema wildcard wins over object wildcard",
			schema:   "*",
			object:   "*",
			wantCall: "DisableAllTriggersForDatabase(shop)",
		},
		{
			name:     "single trigger",
			schema:   "dbo",
			object:   "tr_audit",
			wantCall: "DisableSingleTriggerForTable(shop,dbo,users,tr_audit)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			rule := &DisableTriggerRule{
				objectToggleRule: objectToggleRule{
					group:    1,
					database: "shop",
					schema:   tt.schema,
					table:    "users",
					object:   tt.object,
				},
				gateway: gw,
			}
			require.NoError(t, rule.Execute(context.Background()))
			require.Equal(t, []string{tt.wantCall}, gw.calls)
		})
	}
}

func TestEnableTriggerRule_Execute(t *testing.T) {
	gw := &fakeGateway{}
	rule := &EnableTriggerRule{
		objectToggleRule: objectToggleRule{group: 1, database: "shop", schema: "dbo", table: "users", object: "tr_audit"},
		gateway:          gw,
	}
	require.NoError(t, rule.Execute(context.Background()))
	require.Equal(t, []string{"EnableSingleTriggerForTable(shop,dbo,users,tr_audit)"}, gw.calls)
}

func TestCheckConstraintRules_Execute(t *testing.T) {
	gw := &fakeGateway{}
	disable := &DisableCheckConstraintRule{
		objectToggleRule: objectToggleRule{group: 1, database: "shop", schema: "*", table: "users", object: "ck_age"},
		gateway:          gw,
	}
	enable := &EnableCheckConstraintRule{
		objectToggleRule: objectToggleRule{group: 2, database: "shop", schema: "dbo", table: "users", object: "ck_age"},
		gateway:          gw,
	}
	require.NoError(t, disable.Execute(context.Background()))
	require.NoError(t, enable.Execute(context.Background()))
	require.Equal(t, []string{
		"DisableAllCheckConstraintsForDatabase(shop)",
		"EnableSingleCheckConstraintForTable(shop,dbo,users,ck_age)",
	}, gw.calls)
}

func TestForeignKeyRules_Execute(t *testing.T) {
	gw := &fakeGateway{}
	disable := &DisableForeignKeyRule{
		objectToggleRule: objectToggleRule{group: 1, database: "shop", schema: "dbo", table: "orders", object: "*"},
		gateway:          gw,
	}
	enable := &EnableForeignKeyRule{
		objectToggleRule: objectToggleRule{group: 2, database: "shop", schema: "dbo", table: "orders", object: "fk_user"},
		gateway:          gw,
	}
	require.NoError(t, disable.Execute(context.Background()))
	require.NoError(t, enable.Execute(context.Background()))
	require.Equal(t, []string{
		"DisableAllForeignKeysForTable(shop,dbo,orders)",
		"EnableSingleForeignKeyForTable(shop,dbo,orders,fk_user)",
	}, gw.calls)
}
