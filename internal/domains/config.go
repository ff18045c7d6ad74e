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

package domains

import (
	"sync"
	"time"
)

var (
	Cfg  *Config
	once sync.Once
)

const (
	DatabaseTypeMssql    = "mssql"
	DatabaseTypePostgres = "postgres"
)

const (
	defaultDatabaseType    = DatabaseTypeMssql
	defaultDatabaseTimeout = 30 * time.Second
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
)

func NewConfig() *Config {
	once.Do(
		func() {
			Cfg = &Config{
				Database: DatabaseConfig{
					Type:    defaultDatabaseType,
					Timeout: defaultDatabaseTimeout,
				},
				Log: LogConfig{
					Level:  defaultLogLevel,
					Format: defaultLogFormat,
				},
			}
		},
	)
	return Cfg
}

type Config struct {
	Database           DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`
	Log                LogConfig      `mapstructure:"log" yaml:"log" json:"log"`
	InstructionSetFile string         `mapstructure:"instruction_set_file" yaml:"instruction_set_file" json:"instruction_set_file"`
}

type DatabaseConfig struct {
	Type     string        `mapstructure:"type" yaml:"type" json:"type"`
	Host     string        `mapstructure:"host" yaml:"host" json:"host"`
	Port     int           `mapstructure:"port" yaml:"port" json:"port"`
	Username string        `mapstructure:"username" yaml:"username" json:"username"`
	Password string        `mapstructure:"password" yaml:"password" json:"password,omitempty"`
	Name     string        `mapstructure:"name" yaml:"name" json:"name"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout,omitempty"`
}

type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format,omitempty"`
	Level  string `mapstructure:"level" yaml:"level" json:"level,omitempty"`
}
