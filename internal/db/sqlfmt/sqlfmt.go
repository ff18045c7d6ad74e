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

// Package sqlfmt renders typed values into SQL clause fragments. The
// null/integer/string branching is shared by both dialects; only identifier
// quoting differs, injected through a QuoteIdent func.
package sqlfmt

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultWhereClause is the always-true base predicate every generated where
// clause starts from, so that further conditions compose with "and".
const DefaultWhereClause = "where 1 = 1"

const timeLiteralLayout = "2006-01-02 15:04:05"

var ErrEmptyRecord = errors.New("cannot generate where clause from empty record")

// QuoteIdent quotes a single SQL identifier for one dialect.
type QuoteIdent func(name string) string

// BracketIdent quotes identifiers the SQL Server way: [name].
func BracketIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// DoubleQuoteIdent quotes identifiers the PostgreSQL way: "name".
func DoubleQuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Literal renders a value as a SQL literal: NULL for nil, a bare literal for
// integer kinds, a quoted timestamp for time.Time, and a quoted string for
// everything else. Embedded single quotes are doubled.
func Literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case int:
		return fmt.Sprintf("%d", v)
	case int8:
		return fmt.Sprintf("%d", v)
	case int16:
		return fmt.Sprintf("%d", v)
	case int32:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case uint:
		return fmt.Sprintf("%d", v)
	case uint8:
		return fmt.Sprintf("%d", v)
	case uint16:
		return fmt.Sprintf("%d", v)
	case uint32:
		return fmt.Sprintf("%d", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	case time.Time:
		return quoteString(v.Format(timeLiteralLayout))
	case []byte:
		return quoteString(string(v))
	default:
		return quoteString(fmt.Sprintf("%v", v))
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// WhereFromRecord builds a where clause identifying the record. When
// primaryKey is non-empty, the record is reduced to the primary key columns
// (in key order); otherwise all columns participate, sorted by name so the
// generated SQL is deterministic.
func WhereFromRecord(quote QuoteIdent, record map[string]any, primaryKey []string) (string, error) {
	if len(record) == 0 {
		return "", ErrEmptyRecord
	}

	columns := primaryKey
	if len(columns) == 0 {
		columns = make([]string, 0, len(record))
		for column := range record {
			columns = append(columns, column)
		}
		slices.Sort(columns)
	}

	var sb strings.Builder
	sb.WriteString(DefaultWhereClause)
	for _, column := range columns {
		value, ok := record[column]
		if !ok {
			return "", fmt.Errorf("record has no value for primary key column %q", column)
		}
		if value == nil {
			sb.WriteString(fmt.Sprintf(" and %s is NULL", quote(column)))
		} else {
			sb.WriteString(fmt.Sprintf(" and %s = %s", quote(column), Literal(value)))
		}
	}
	return sb.String(), nil
}

// SetClauseForColumn renders a single-column set clause with the same
// literal rules as WhereFromRecord.
func SetClauseForColumn(quote QuoteIdent, column string, value any) string {
	return fmt.Sprintf(" set %s = %s", quote(column), Literal(value))
}

// AppendIsNotNull conjuncts an is-not-null predicate onto the clause,
// falling back to the base predicate when the clause is empty.
func AppendIsNotNull(quote QuoteIdent, column, whereClause string) string {
	if whereClause == "" {
		whereClause = DefaultWhereClause
	}
	return fmt.Sprintf("%s and %s is not null", whereClause, quote(column))
}
