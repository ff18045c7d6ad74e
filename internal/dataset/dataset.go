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

// Package dataset loads fake-value pools: JSON arrays of objects from which
// one key per object is read.
package dataset

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Load reads the pool file and extracts the value of key from every
// element of the array.
func Load(path, key string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data set file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("data set file %s is not valid JSON", path)
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("data set file %s must contain a JSON array", path)
	}

	elements := parsed.Array()
	values := make([]string, 0, len(elements))
	for i, element := range elements {
		value := element.Get(key)
		if !value.Exists() {
			return nil, fmt.Errorf("data set element %d has no key '%s'", i, key)
		}
		values = append(values, value.String())
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("data set file %s is empty", path)
	}
	return values, nil
}
