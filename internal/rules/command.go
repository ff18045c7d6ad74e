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
	"os"

	"github.com/datamaskio/datamask/internal/db"
)

// AdHocCommandRule executes an operator-supplied statement verbatim.
type AdHocCommandRule struct {
	group   int
	command string
	gateway db.Gateway
}

func (r *AdHocCommandRule) String() string {
	return fmt.Sprintf("AdHocCommandRule with command='%s'", r.command)
}

func (r *AdHocCommandRule) Group() int { return r.group }

func (r *AdHocCommandRule) Validate() error {
	if r.group < 1 {
		return validationErrorf("'group' must be a positive integer for %s", r)
	}
	if r.command == "" {
		return validationErrorf("ad-hoc command cannot be empty for %s", r)
	}
	return nil
}

func (r *AdHocCommandRule) Execute(ctx context.Context) error {
	return r.gateway.ExecuteCommand(ctx, r.command)
}

// AdHocScriptRule executes the contents of a script file verbatim. The file
// must exist at validation time.
type AdHocScriptRule struct {
	group   int
	script  string
	gateway db.Gateway
}

func (r *AdHocScriptRule) String() string {
	return fmt.Sprintf("AdHocScriptRule with script='%s'", r.script)
}

func (r *AdHocScriptRule) Group() int { return r.group }

func (r *AdHocScriptRule) Validate() error {
	if r.group < 1 {
		return validationErrorf("'group' must be a positive integer for %s", r)
	}
	if _, err := os.Stat(r.script); err != nil {
		return validationErrorf("could not find ad-hoc script at '%s' for %s", r.script, r)
	}
	return nil
}

func (r *AdHocScriptRule) Execute(ctx context.Context) error {
	contents, err := os.ReadFile(r.script)
	if err != nil {
		return fmt.Errorf("read ad-hoc script for %s: %w", r, err)
	}
	return r.gateway.ExecuteCommand(ctx, string(contents))
}
