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

package run

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datamaskio/datamask/internal/db"
	"github.com/datamaskio/datamask/internal/db/mssql"
	"github.com/datamaskio/datamask/internal/db/postgres"
	"github.com/datamaskio/datamask/internal/domains"
	"github.com/datamaskio/datamask/internal/instructions"
	"github.com/datamaskio/datamask/internal/scheduler"
	"github.com/datamaskio/datamask/internal/utils/logger"
)

var (
	Cmd = &cobra.Command{
		Use:   "run",
		Short: "validate the instruction set and execute it group by group",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if Config.InstructionSetFile == "" {
				log.Fatal().Msg("instruction_set_file cannot be empty")
			}

			session, gateway, err := connect(ctx, Config.Database)
			if err != nil {
				log.Fatal().Err(err).Msg("cannot connect to the database")
			}
			defer func() {
				if err := session.Close(); err != nil {
					log.Warn().Err(err).Msg("error closing database session")
				}
			}()

			set, err := instructions.LoadSet(Config.InstructionSetFile)
			if err != nil {
				log.Fatal().Err(err).Msg("cannot load the instruction set")
			}

			plan, err := scheduler.NewPlan(set, gateway)
			if err != nil {
				log.Fatal().Err(err).Msg("instruction set rejected")
			}

			if err := scheduler.Run(ctx, plan); err != nil {
				log.Fatal().Err(err).Msg("masking run failed")
			}
		},
	}
	Config = domains.NewConfig()
)

func init() {
	Cmd.Flags().StringP("instructions", "i", "", "path to the instruction set file")
	if err := viper.BindPFlag("instruction_set_file", Cmd.Flags().Lookup("instructions")); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}

func connect(ctx context.Context, cfg domains.DatabaseConfig) (db.Session, db.Gateway, error) {
	switch cfg.Type {
	case domains.DatabaseTypeMssql:
		session, err := mssql.Connect(ctx, mssql.ConnConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			Database: cfg.Name,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return session, mssql.NewGateway(session), nil
	case domains.DatabaseTypePostgres:
		session, err := postgres.Connect(ctx, postgres.ConnConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			Database: cfg.Name,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return session, postgres.NewGateway(session), nil
	default:
		return nil, nil, fmt.Errorf("unknown database type '%s'", cfg.Type)
	}
}
