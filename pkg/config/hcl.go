// Copyright 2025 walteh LLC
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

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/logshift/pkg/rewrite"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// hclMigration mirrors rewrite.Migration with HCL field tags
type hclMigration struct {
	FromFacility  string   `hcl:"from_facility,optional"`
	ToFacility    string   `hcl:"to_facility,optional"`
	Levels        []string `hcl:"levels,optional"`
	WrappedLevels []string `hcl:"wrapped_levels,optional"`
	FromImport    string   `hcl:"from_import,optional"`
	ToImport      string   `hcl:"to_import,optional"`
}

// hclConfig mirrors Config with HCL field tags
type hclConfig struct {
	Root           string        `hcl:"root,optional"`
	Extensions     []string      `hcl:"extensions,optional"`
	IgnorePatterns []string      `hcl:"ignore_patterns,optional"`
	Migration      *hclMigration `hcl:"migration,block"`
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var raw hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Root:           raw.Root,
		Extensions:     raw.Extensions,
		IgnorePatterns: raw.IgnorePatterns,
	}
	if raw.Migration != nil {
		cfg.Migration = rewrite.Migration{
			FromFacility:  raw.Migration.FromFacility,
			ToFacility:    raw.Migration.ToFacility,
			Levels:        raw.Migration.Levels,
			WrappedLevels: raw.Migration.WrappedLevels,
			FromImport:    raw.Migration.FromImport,
			ToImport:      raw.Migration.ToImport,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}
