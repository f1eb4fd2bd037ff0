// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

// Package config loads the YAML configuration of the tagwire command.
//
// The file is named by the --config flag or, when the flag is absent, by the
// TAGWIRE_CONFIG environment variable. Without either the defaults apply.
// Values given as command-line flags override the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"go.tagwire.dev/tagwire"
)

const EnvVar = "TAGWIRE_CONFIG"

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Color   string        `yaml:"color"`
	Compile CompileConfig `yaml:"compile"`
	Codegen CodegenConfig `yaml:"codegen"`
	Decode  DecodeConfig  `yaml:"decode"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is auto (text on a terminal, JSON otherwise), text or json.
	Format string `yaml:"format"`
}

type CompileConfig struct {
	Format  string `yaml:"format"`
	Dialect string `yaml:"dialect"`
}

type CodegenConfig struct {
	Output     string `yaml:"output"`
	Plugin     string `yaml:"plugin"`
	PluginPath string `yaml:"plugin_path"`
	Package    string `yaml:"package"`
}

type DecodeConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Color: "auto",
		Compile: CompileConfig{
			Format: "text",
		},
		Codegen: CodegenConfig{
			Plugin: "go",
		},
		Decode: DecodeConfig{
			MaxDepth: tagwire.DefaultMaxDepth,
		},
	}
}

// Load reads the file at path, or at $TAGWIRE_CONFIG if path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads a configuration document over the defaults. Unknown keys are
// errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expandVariables() {
	c.Codegen.Output = expandVars(c.Codegen.Output)
	c.Codegen.PluginPath = expandVars(c.Codegen.PluginPath)
}

// ${VAR} or ${VAR:-default}
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q, expected one of %q", field, value, allowed)
}

func (c *Config) Validate() error {
	var errs []error
	if err := oneOf("log.level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("log.format", c.Log.Format, "auto", "text", "json"); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("color", c.Color, "auto", "always", "never"); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("compile.format", c.Compile.Format, "text", "cbor", "json", "fingerprint"); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("compile.dialect", c.Compile.Dialect, "", "proto", "cbor"); err != nil {
		errs = append(errs, err)
	}
	if c.Decode.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("decode.max_depth must be positive, got %d", c.Decode.MaxDepth))
	}
	return errors.Join(errs...)
}
