/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiled() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// Schema returns the embedded JSON schema scripts are validated against.
func Schema() []byte { return append([]byte(nil), schemaJSON...) }

// Parse validates data against the script schema and decodes it. All
// schema violations are reported, each tied to its step where possible.
func Parse(data []byte) (Script, []Error) {
	sch, err := compiled()
	if err != nil {
		return Script{}, []Error{{Step: -1, Message: fmt.Sprintf("compile schema: %v", err)}}
	}
	res, err := sch.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Script{}, []Error{{Step: -1, Message: fmt.Sprintf("read script: %v", err)}}
	}
	if !res.Valid() {
		errs := make([]Error, 0, len(res.Errors()))
		for _, re := range res.Errors() {
			errs = append(errs, fromResult(re))
		}
		return Script{}, errs
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return Script{}, []Error{{Step: -1, Message: fmt.Sprintf("decode script: %v", err)}}
	}
	if s.DPR <= 0 {
		s.DPR = 1
	}
	return s, nil
}

// Load reads and parses a script file. Validation problems are joined into
// one error.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	s, errs := Parse(data)
	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return Script{}, fmt.Errorf("invalid script %s: %s", path, strings.Join(msgs, "; "))
	}
	return s, nil
}

// fromResult maps a schema error onto a step index using its field path
// ("steps.3.op").
func fromResult(re gojsonschema.ResultError) Error {
	field := re.Field()
	parts := strings.Split(field, ".")
	if len(parts) >= 2 && parts[0] == "steps" {
		if i, err := strconv.Atoi(parts[1]); err == nil {
			return Error{Step: i, Field: field, Message: re.Description()}
		}
	}
	return Error{Step: -1, Field: field, Message: re.Description()}
}
