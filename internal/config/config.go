// Package config loads lazylist configuration.
//
// Configuration is YAML. Unknown keys are rejected when decoding, and the
// decoded values are validated against an embedded CUE schema, so every
// problem is reported with the key it belongs to.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Sort orders.
const (
	SortNone  = "none"
	SortSeq   = "seq"
	SortTitle = "title"
)

// Config is the lazylist configuration.
type Config struct {
	Database  string  `yaml:"database" json:"database"`
	PageSize  int     `yaml:"page_size" json:"page_size"`
	LookAhead int     `yaml:"look_ahead" json:"look_ahead"`
	Sort      string  `yaml:"sort" json:"sort"`
	Locale    string  `yaml:"locale" json:"locale"`
	Rate      float64 `yaml:"rate" json:"rate"`
	Burst     int     `yaml:"burst" json:"burst"`
	Watch     bool    `yaml:"watch" json:"watch"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database:  "lazylist.db",
		PageSize:  20,
		LookAhead: 5,
		Sort:      SortNone,
		Locale:    "en",
		Rate:      0,
		Burst:     1,
	}
}

// ValidationError lists every schema violation found in a configuration.
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid configuration: %s", e.Source, strings.Join(e.Problems, "; "))
}

// Load reads and validates the YAML file at path. Keys missing from the file
// keep their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes and validates YAML. source names the input in errors.
func Parse(data []byte, source string) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%s: parse config: %w", source, err)
	}

	if err := cfg.validate(source); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks c against the schema.
func (c Config) Validate() error {
	return c.validate("config")
}

func (c Config) validate(source string) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Source: source, Problems: problems(err)}
	}
	return nil
}

// problems flattens a CUE error into one message per violation.
func problems(err error) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		msg := e.Error()
		if path := strings.Join(e.Path(), "."); path != "" && !strings.HasPrefix(msg, path) {
			msg = path + ": " + msg
		}
		if !seen[msg] {
			seen[msg] = true
			out = append(out, msg)
		}
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return out
}
