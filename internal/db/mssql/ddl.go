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

package mssql

import (
	"fmt"
	"strings"
	"text/template"
)

// Catalog-walk T-SQL batches. SQL Server has no single statement that
// toggles every trigger or constraint in a database, so each batch collects
// the targets from the system catalog into a temp table and walks it,
// running one ALTER/ENABLE statement per object through sp_executesql.
//
// The check-constraint and foreign-key walks cannot use the one-statement
// "alter table ... nocheck constraint all" form because SQL Server treats
// foreign keys as constraints too, and the two rule kinds must toggle
// independently.

const allTriggersForDatabaseTemplate = `use [{{ .Database }}]; ` +
	`declare @Id int; ` +
	`declare @SchemaName nvarchar(128); ` +
	`declare @TableName nvarchar(128); ` +
	`declare @SqlStatement nvarchar(max); ` +
	`drop table if exists #tables; ` +
	`create table #tables ( ` +
	`[id] int identity(1,1) not null, ` +
	`[schema_name] nvarchar(128) not null, ` +
	`[table_name] nvarchar(128) not null, ` +
	`[processed] bit default 0); ` +
	`insert into #tables ([schema_name], [table_name]) ` +
	`select s.[name], o.[name] ` +
	`from sys.objects as o inner join sys.schemas as s on o.schema_id = s.schema_id ` +
	`where o.[type] = 'U'; ` +
	`while exists (select 1 from #tables where [processed] = 0) ` +
	`begin ` +
	`select top 1 @Id = [id], @SchemaName = [schema_name], @TableName = [table_name] ` +
	`from #tables ` +
	`where [processed] = 0; ` +
	`select @SqlStatement = '{{ .Action }} trigger all on [' + @SchemaName + '].[' + @TableName + '];' ` +
	`execute sp_executesql @SqlStatement; ` +
	`update #tables set [processed] = 1 where [id] = @Id; ` +
	`end`

// constraintWalkTemplate covers check constraints and foreign keys at both
// the whole-table and whole-database granularity: the catalog view and the
// check/nocheck action are parameters, and the table filter is rendered only
// when a table is given.
const constraintWalkTemplate = `use [{{ .Database }}]; ` +
	`declare @Id int; ` +
	`declare @SchemaName nvarchar(256); ` +
	`declare @TableName nvarchar(256); ` +
	`declare @ConstraintName nvarchar(256); ` +
	`declare @SqlStatement nvarchar(max); ` +
	`drop table if exists #constraints; ` +
	`create table #constraints ( ` +
	`[id] int identity(1,1) not null, ` +
	`[schema_name] nvarchar(256) not null, ` +
	`[table_name] nvarchar(256) not null, ` +
	`[constraint_name] nvarchar(256) not null, ` +
	`[processed] bit default 0); ` +
	`insert into #constraints ([schema_name], [table_name], [constraint_name]) ` +
	`select s.[name], o.[name], c.[name] ` +
	`from {{ .CatalogView }} as c ` +
	`inner join sys.objects as o on c.parent_object_id = o.object_id ` +
	`inner join sys.schemas as s on o.schema_id = s.schema_id ` +
	`where o.[type] = 'U' ` +
	`{{- if .Table }} ` +
	`and o.[name] = '{{ .Table }}' ` +
	`and s.[name] = '{{ .Schema }}' ` +
	`{{- end }}; ` +
	`while exists (select 1 from #constraints where [processed] = 0) ` +
	`begin ` +
	`select top 1 ` +
	`@Id = [id], @SchemaName = [schema_name], ` +
	`@TableName = [table_name], @ConstraintName = [constraint_name] ` +
	`from #constraints ` +
	`where [processed] = 0; ` +
	`select @SqlStatement = ` +
	`'alter table [' + @SchemaName + '].[' + @TableName + '] ` +
	`{{ .Action }} constraint [' + @ConstraintName + '];' ` +
	`execute sp_executesql @SqlStatement; ` +
	`update #constraints set [processed] = 1 where [id] = @Id; ` +
	`end`

var (
	allTriggersForDatabaseTmpl = template.Must(
		template.New("allTriggersForDatabase").Parse(allTriggersForDatabaseTemplate))
	constraintWalkTmpl = template.Must(
		template.New("constraintWalk").Parse(constraintWalkTemplate))
)

type triggerWalkData struct {
	Database string
	Action   string // "enable" or "disable"
}

type constraintWalkData struct {
	Database    string
	Schema      string
	Table       string // empty means every table in the database
	CatalogView string // sys.check_constraints or sys.foreign_keys
	Action      string // "check" or "nocheck"
}

func renderAllTriggersForDatabase(data triggerWalkData) (string, error) {
	var sb strings.Builder
	if err := allTriggersForDatabaseTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render trigger walk: %w", err)
	}
	return sb.String(), nil
}

func renderConstraintWalk(data constraintWalkData) (string, error) {
	var sb strings.Builder
	if err := constraintWalkTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render constraint walk: %w", err)
	}
	return sb.String(), nil
}
