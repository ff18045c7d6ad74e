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
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/datamaskio/datamask/internal/db"
)

type ConnConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

// Session runs SQL on one SQL Server instance through database/sql.
// sql.DB is a connection pool, so the session is safe for concurrent use by
// all rules in an execution group.
type Session struct {
	pool *sql.DB
}

func Connect(ctx context.Context, cfg ConnConfig) (*Session, error) {
	query := url.Values{}
	query.Set("database", cfg.Database)
	if cfg.Timeout > 0 {
		query.Set("dial timeout", fmt.Sprintf("%d", int(cfg.Timeout.Seconds())))
	}
	dsn := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}

	pool, err := sql.Open("sqlserver", dsn.String())
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping sqlserver: %w", err)
	}
	return &Session{pool: pool}, nil
}

func (s *Session) Query(ctx context.Context, query string) ([]db.Record, error) {
	rows, err := s.pool.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read column names: %w", err)
	}

	var records []db.Record
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		record := make(db.Record, len(columns))
		for i, column := range columns {
			record[column] = normalize(values[i])
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

func (s *Session) Execute(ctx context.Context, query string) error {
	if _, err := s.pool.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

func (s *Session) Close() error {
	return s.pool.Close()
}

// normalize maps driver values onto the engine's record value kinds:
// character data arrives as []byte and is converted to string.
func normalize(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}
