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

package postgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

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

// Session runs SQL on one PostgreSQL database through a pgx pool. The pool
// makes the session safe for concurrent use by all rules in an execution
// group; a single pgx.Conn would not be.
type Session struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, cfg ConnConfig) (*Session, error) {
	dsn := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}
	if cfg.Timeout > 0 {
		query := url.Values{}
		query.Set("connect_timeout", fmt.Sprintf("%d", int(cfg.Timeout.Seconds())))
		dsn.RawQuery = query.Encode()
	}

	pool, err := pgxpool.New(ctx, dsn.String())
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Session{pool: pool}, nil
}

func (s *Session) Query(ctx context.Context, query string) ([]db.Record, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	descriptions := rows.FieldDescriptions()
	var records []db.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		record := make(db.Record, len(descriptions))
		for i, description := range descriptions {
			record[description.Name] = values[i]
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

func (s *Session) Execute(ctx context.Context, query string) error {
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

func (s *Session) Close() error {
	s.pool.Close()
	return nil
}
