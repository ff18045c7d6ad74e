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
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/datamaskio/datamask/internal/dataset"
	"github.com/datamaskio/datamask/internal/db"
	"github.com/datamaskio/datamask/internal/db/sqlfmt"
	"github.com/datamaskio/datamask/internal/generators"
)

// staticNullSentinel in a static_value means SQL null, not the string.
const staticNullSentinel = "NULL"

const (
	ignoreNullAffirmative = "yes"
	ignoreNullNegative    = "no"
)

const (
	dateVarianceMethodSimple   = "simple"
	dateVarianceMethodComplete = "complete"
)

// StaticStringSubstitutionRule replaces the values in a column with one
// static value across all rows matched by the where clause; a single update,
// no row iteration.
type StaticStringSubstitutionRule struct {
	tableRule
	column      string
	staticValue string
	whereClause string
	gateway     db.Gateway
}

func (r *StaticStringSubstitutionRule) String() string {
	return fmt.Sprintf("StaticStringSubstitutionRule with database='%s', schema='%s', table='%s', column='%s'",
		r.database, r.schema, r.table, r.column)
}

func (r *StaticStringSubstitutionRule) Validate() error {
	if err := r.tableRule.validate(r); err != nil {
		return err
	}
	if r.column == "" {
		return validationErrorf("'column' property not set for %s", r)
	}
	return nil
}

func (r *StaticStringSubstitutionRule) Execute(ctx context.Context) error {
	var replacement any = r.staticValue
	if r.staticValue == staticNullSentinel {
		replacement = nil
	}
	return r.gateway.UpdateRows(
		ctx, r.database, r.schema, r.table,
		r.gateway.SetClauseForColumn(r.column, replacement),
		r.whereClause,
	)
}

// FakeStringSubstitutionRule replaces the values in a column with values
// drawn uniformly at random from an external data pool, one update per row
// keyed by primary key. Rows with a null target column are skipped.
type FakeStringSubstitutionRule struct {
	tableRule
	column      string
	whereClause string
	dataSetPath string
	dataSetKey  string
	gateway     db.Gateway
	rnd         *rand.Rand
}

func (r *FakeStringSubstitutionRule) String() string {
	return fmt.Sprintf("FakeStringSubstitutionRule with database='%s', schema='%s', table='%s', column='%s'",
		r.database, r.schema, r.table, r.column)
}

func (r *FakeStringSubstitutionRule) Validate() error {
	if err := r.tableRule.validate(r); err != nil {
		return err
	}
	if r.column == "" {
		return validationErrorf("'column' property not set for %s", r)
	}
	if _, err := os.Stat(r.dataSetPath); err != nil {
		return validationErrorf("could not find data set at '%s' for %s", r.dataSetPath, r)
	}
	if r.dataSetKey == "" {
		return validationErrorf("'data_set_key' property not set for %s", r)
	}
	return nil
}

func (r *FakeStringSubstitutionRule) Execute(ctx context.Context) error {
	pool, err := dataset.Load(r.dataSetPath, r.dataSetKey)
	if err != nil {
		return fmt.Errorf("load data set for %s: %w", r, err)
	}

	records, err := r.gateway.ReadRows(ctx, r.database, r.schema, r.table, r.whereClause)
	if err != nil {
		return fmt.Errorf("read rows for %s: %w", r, err)
	}
	primaryKey, err := r.gateway.PrimaryKeyColumns(ctx, r.database, r.schema, r.table)
	if err != nil {
		return fmt.Errorf("read primary key for %s: %w", r, err)
	}

	count := 0
	for _, record := range records {
		if record[r.column] == nil {
			continue
		}

		replacement := pool[r.rnd.Intn(len(pool))]
		whereClause, err := r.gateway.WhereFromRecord(record, primaryKey)
		if err != nil {
			return fmt.Errorf("build where clause for %s: %w", r, err)
		}
		if err := r.gateway.UpdateRows(
			ctx, r.database, r.schema, r.table,
			r.gateway.SetClauseForColumn(r.column, replacement),
			whereClause,
		); err != nil {
			return err
		}

		count++
		if count%progressInterval == 0 {
			log.Info().Int("rows", count).Str("rule", r.String()).Msg("substitution progress")
		}
	}
	return nil
}

// FakeSsnSubstitutionRule replaces the values in a column with synthesized
// invalid Social Security Numbers, unique across all rows processed by one
// execution.
type FakeSsnSubstitutionRule struct {
	tableRule
	column     string
	separator  string
	ignoreNull string
	gateway    db.Gateway
}

func (r *FakeSsnSubstitutionRule) String() string {
	return fmt.Sprintf("FakeSsnSubstitutionRule with database='%s', schema='%s', table='%s', column='%s'",
		r.database, r.schema, r.table, r.column)
}

func (r *FakeSsnSubstitutionRule) Validate() error {
	if err := r.tableRule.validate(r); err != nil {
		return err
	}
	if r.column == "" {
		return validationErrorf("'column' property not set for %s", r)
	}
	if r.ignoreNull != ignoreNullAffirmative && r.ignoreNull != ignoreNullNegative {
		return validationErrorf("'ignore_null' property must be either '%s' or '%s' for %s",
			ignoreNullAffirmative, ignoreNullNegative, r)
	}
	return nil
}

func (r *FakeSsnSubstitutionRule) Execute(ctx context.Context) error {
	whereClause := sqlfmt.DefaultWhereClause
	if r.ignoreNull == ignoreNullAffirmative {
		whereClause = r.gateway.AppendColumnIsNotNull(r.column, whereClause)
	}

	records, err := r.gateway.ReadRows(ctx, r.database, r.schema, r.table, whereClause)
	if err != nil {
		return fmt.Errorf("read rows for %s: %w", r, err)
	}
	primaryKey, err := r.gateway.PrimaryKeyColumns(ctx, r.database, r.schema, r.table)
	if err != nil {
		return fmt.Errorf("read primary key for %s: %w", r, err)
	}

	// Uniqueness is scoped to this one execution.
	generator := generators.NewInvalidSSN(r.separator)

	count := 0
	for _, record := range records {
		invalidSSN, err := generator.Generate()
		if err != nil {
			return fmt.Errorf("generate invalid SSN for %s: %w", r, err)
		}

		recordWhereClause, err := r.gateway.WhereFromRecord(record, primaryKey)
		if err != nil {
			return fmt.Errorf("build where clause for %s: %w", r, err)
		}
		if err := r.gateway.UpdateRows(
			ctx, r.database, r.schema, r.table,
			r.gateway.SetClauseForColumn(r.column, invalidSSN),
			recordWhereClause,
		); err != nil {
			return err
		}

		count++
		if count%progressInterval == 0 {
			log.Info().Int("rows", count).Str("rule", r.String()).Msg("substitution progress")
		}
	}
	return nil
}

// DateVarianceRule moves a date column by a random number of days within
// [1, range] for a positive range or [range, -1] for a negative one.
// The simple method shifts every matched row by one shared offset in a
// single statement; the complete method shifts every row independently,
// which masks more thoroughly but is slower by orders of magnitude.
type DateVarianceRule struct {
	tableRule
	column        string
	varianceRange int
	whereClause   string
	method        string
	gateway       db.Gateway
	rnd           *rand.Rand
}

func (r *DateVarianceRule) String() string {
	return fmt.Sprintf("DateVarianceRule with database='%s', schema='%s', table='%s', column='%s', method='%s'",
		r.database, r.schema, r.table, r.column, r.method)
}

func (r *DateVarianceRule) Validate() error {
	if err := r.tableRule.validate(r); err != nil {
		return err
	}
	if r.column == "" {
		return validationErrorf("'column' property not set for %s", r)
	}
	if r.varianceRange == 0 {
		return validationErrorf("'range' property must be either greater than or less than 0 for %s", r)
	}
	if r.method != dateVarianceMethodSimple && r.method != dateVarianceMethodComplete {
		return validationErrorf("'method' must be either set to '%s' or '%s' for %s",
			dateVarianceMethodSimple, dateVarianceMethodComplete, r)
	}
	return nil
}

func (r *DateVarianceRule) Execute(ctx context.Context) error {
	switch r.method {
	case dateVarianceMethodSimple:
		return r.executeSimple(ctx)
	case dateVarianceMethodComplete:
		return r.executeComplete(ctx)
	default:
		return fmt.Errorf("'%s' is not recognized as a valid method for %s", r.method, r)
	}
}

func (r *DateVarianceRule) offsetBounds() (int, int) {
	if r.varianceRange > 0 {
		return 1, r.varianceRange
	}
	return r.varianceRange, -1
}

func (r *DateVarianceRule) executeSimple(ctx context.Context) error {
	rangeMin, rangeMax := r.offsetBounds()

	whereClause := r.whereClause
	if whereClause == "" {
		whereClause = sqlfmt.DefaultWhereClause
	}

	return r.gateway.UpdateDateColumnWithRandomVariance(
		ctx, r.database, r.schema, r.table, r.column,
		r.gateway.AppendColumnIsNotNull(r.column, whereClause),
		rangeMin, rangeMax,
	)
}

func (r *DateVarianceRule) executeComplete(ctx context.Context) error {
	whereClause := r.whereClause
	if whereClause == "" {
		whereClause = sqlfmt.DefaultWhereClause
	}
	whereClause = r.gateway.AppendColumnIsNotNull(r.column, whereClause)

	records, err := r.gateway.ReadRows(ctx, r.database, r.schema, r.table, whereClause)
	if err != nil {
		return fmt.Errorf("read rows for %s: %w", r, err)
	}
	primaryKey, err := r.gateway.PrimaryKeyColumns(ctx, r.database, r.schema, r.table)
	if err != nil {
		return fmt.Errorf("read primary key for %s: %w", r, err)
	}

	rangeMin, rangeMax := r.offsetBounds()

	count := 0
	for _, record := range records {
		if record[r.column] == nil {
			continue
		}
		current, ok := record[r.column].(time.Time)
		if !ok {
			return fmt.Errorf("column '%s' value %v is not a date for %s", r.column, record[r.column], r)
		}

		offsetDays := rangeMin + r.rnd.Intn(rangeMax-rangeMin+1)
		replacement := current.AddDate(0, 0, offsetDays).Truncate(time.Second)

		recordWhereClause, err := r.gateway.WhereFromRecord(record, primaryKey)
		if err != nil {
			return fmt.Errorf("build where clause for %s: %w", r, err)
		}
		if err := r.gateway.UpdateRows(
			ctx, r.database, r.schema, r.table,
			r.gateway.SetClauseForColumn(r.column, replacement),
			recordWhereClause,
		); err != nil {
			return err
		}

		count++
		if count%progressInterval == 0 {
			log.Info().Int("rows", count).Str("rule", r.String()).Msg("date variance progress")
		}
	}
	return nil
}

// TruncateTableRule truncates the target table. Irreversible.
type TruncateTableRule struct {
	tableRule
	gateway db.Gateway
}

func (r *TruncateTableRule) String() string {
	return fmt.Sprintf("TruncateTableRule with database='%s', schema='%s', table='%s'",
		r.database, r.schema, r.table)
}

func (r *TruncateTableRule) Validate() error {
	return r.tableRule.validate(r)
}

func (r *TruncateTableRule) Execute(ctx context.Context) error {
	return r.gateway.TruncateTable(ctx, r.database, r.schema, r.table)
}

// DeleteRowsRule deletes the rows matched by the where clause; an empty
// clause deletes every row.
type DeleteRowsRule struct {
	tableRule
	whereClause string
	gateway     db.Gateway
}

func (r *DeleteRowsRule) String() string {
	return fmt.Sprintf("DeleteRowsRule with database='%s', schema='%s', table='%s'",
		r.database, r.schema, r.table)
}

func (r *DeleteRowsRule) Validate() error {
	return r.tableRule.validate(r)
}

func (r *DeleteRowsRule) Execute(ctx context.Context) error {
	return r.gateway.DeleteRows(ctx, r.database, r.schema, r.table, r.whereClause)
}

func newRandSource() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
