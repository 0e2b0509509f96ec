package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/scaffold/pkg/record"
)

var (
	errNoCollections     = errors.New("scaffold: no collections configured")
	errUnknownCollection = errors.New("scaffold: unknown collection")
	errReferenceCycle    = errors.New("scaffold: reference cycle")
)

// Config is the collections file:
//
//	api_keys: api_keys
//	validate:
//	  schedule: "0 3 * * *"
//	  report_to: ops@example.com
//	collections:
//	  - name: users
//	    mandatory: [email]
//	  - name: posts
//	    path: /api/posts
//	    fields: [title, author]
//	    mandatory: [title]
//	    references:
//	      - field: author
//	        target: users
type Config struct {
	APIKeys     string       `yaml:"api_keys"`
	Validate    ValidateSpec `yaml:"validate"`
	Collections []Collection `yaml:"collections"`
}

// ValidateSpec schedules the integrity pass when the server runs.
type ValidateSpec struct {
	Schedule string `yaml:"schedule"`
	ReportTo string `yaml:"report_to"`
}

// Collection declares one record collection.
type Collection struct {
	Name string `yaml:"name"`
	// Path is where the JSON API is mounted. Defaults to /api/<name>.
	Path       string      `yaml:"path"`
	Fields     []string    `yaml:"fields"`
	Populate   []string    `yaml:"populate"`
	Mandatory  []string    `yaml:"mandatory"`
	References []Reference `yaml:"references"`
}

type Reference struct {
	Field  string `yaml:"field"`
	Target string `yaml:"target"`
}

func (c Collection) apiPath() string {
	if c.Path != "" {
		return c.Path
	}
	return "/api/" + c.Name
}

// loadConfig reads and validates the collections file.
func loadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scaffold: read config: %w", err)
	}
	return parseConfig(raw)
}

func parseConfig(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("scaffold: parse config: %w", err)
	}
	if cfg.APIKeys == "" {
		cfg.APIKeys = "api_keys"
	}
	return &cfg, cfg.validate()
}

func (cfg *Config) validate() error {
	if len(cfg.Collections) == 0 {
		return errNoCollections
	}
	seen := make(map[string]bool, len(cfg.Collections))
	for _, c := range cfg.Collections {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return errors.New("scaffold: collection without a name")
		}
		if seen[name] {
			return fmt.Errorf("scaffold: duplicate collection %q", name)
		}
		seen[name] = true
	}
	for _, c := range cfg.Collections {
		for _, ref := range c.References {
			if !seen[ref.Target] {
				return fmt.Errorf("%w: %q referenced by %s.%s", errUnknownCollection, ref.Target, c.Name, ref.Field)
			}
		}
	}
	return nil
}

func (cfg *Config) collection(name string) (Collection, error) {
	for _, c := range cfg.Collections {
		if c.Name == name {
			return c, nil
		}
	}
	return Collection{}, fmt.Errorf("%w: %q", errUnknownCollection, name)
}

// stores builds a Postgres store per collection. Referenced collections
// are built first so that references can be populated.
func (cfg *Config) stores(q record.Querier, log *slog.Logger) (map[string]record.Store, error) {
	out := make(map[string]record.Store, len(cfg.Collections))
	visiting := make(map[string]bool)

	var build func(c Collection) error
	build = func(c Collection) error {
		if _, ok := out[c.Name]; ok {
			return nil
		}
		if visiting[c.Name] {
			return fmt.Errorf("%w: %s", errReferenceCycle, c.Name)
		}
		visiting[c.Name] = true

		opts := []record.PostgresOption{record.WithLogger(log)}
		for _, ref := range c.References {
			target, err := cfg.collection(ref.Target)
			if err != nil {
				return err
			}
			// Self references are checked by validate but never populated.
			if target.Name == c.Name {
				continue
			}
			if err := build(target); err != nil {
				return err
			}
			opts = append(opts, record.WithReference(record.Reference{Field: ref.Field, Target: out[target.Name]}))
		}

		out[c.Name] = record.NewPostgres(q, c.Name, opts...)
		visiting[c.Name] = false
		return nil
	}

	for _, c := range cfg.Collections {
		if err := build(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// schema is the integrity schema of c over the built stores.
func (c Collection) schema(stores map[string]record.Store) record.Schema {
	s := record.Schema{Resource: c.Name, Mandatory: c.Mandatory}
	for _, ref := range c.References {
		if target, ok := stores[ref.Target]; ok {
			s.References = append(s.References, record.Reference{Field: ref.Field, Target: target})
		}
	}
	return s
}
