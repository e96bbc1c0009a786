// Package config defines the pipeline file for a meshjoin run and loads it
// from JSON or YAML.
//
// Example (YAML):
//
//	job: nightly_sales
//	reference:
//	  kind: mysql
//	  dsn: "user:pass@tcp(127.0.0.1:3306)/shop"
//	stream:
//	  kind: file
//	  file: { path: data/transactions.csv }
//	output:
//	  path: out/output_data.csv
//	  reject_path: out/rejects.csv
//	storage:
//	  kind: mysql
//	  db: { dsn: "user:pass@tcp(127.0.0.1:3306)/shop", auto_create_table: true }
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults for Runtime fields left at zero.
const (
	DefaultBatchSize     = 100
	DefaultQueueCapacity = 10
	DefaultPartitions    = 3
	DefaultResultsTable  = "output_data"
)

// Environment variables consulted when a Runtime field is zero.
const (
	EnvBatchSize     = "MESHJOIN_BATCH_SIZE"
	EnvQueueCapacity = "MESHJOIN_QUEUE_CAPACITY"
	EnvPartitions    = "MESHJOIN_PARTITIONS"
)

// Pipeline is the top-level object of a pipeline file.
type Pipeline struct {
	// Job labels metrics and log lines.
	Job       string    `json:"job" yaml:"job"`
	Reference Reference `json:"reference" yaml:"reference"`
	Stream    Stream    `json:"stream" yaml:"stream"`
	Runtime   Runtime   `json:"runtime" yaml:"runtime"`
	Output    Output    `json:"output" yaml:"output"`
	Storage   Storage   `json:"storage" yaml:"storage"`
}

// Reference selects where customers and products come from. Kind "csv" reads
// CustomersPath and ProductsPath; any storage kind queries DSN.
type Reference struct {
	Kind           string `json:"kind" yaml:"kind"`
	DSN            string `json:"dsn" yaml:"dsn"`
	CustomersTable string `json:"customers_table" yaml:"customers_table"`
	ProductsTable  string `json:"products_table" yaml:"products_table"`
	CustomersPath  string `json:"customers_path" yaml:"customers_path"`
	ProductsPath   string `json:"products_path" yaml:"products_path"`
}

// Stream selects the transaction stream: "file" or "http".
type Stream struct {
	Kind string     `json:"kind" yaml:"kind"`
	File StreamFile `json:"file" yaml:"file"`
	HTTP StreamHTTP `json:"http" yaml:"http"`
}

type StreamFile struct {
	Path string `json:"path" yaml:"path"`
}

type StreamHTTP struct {
	URL            string `json:"url" yaml:"url"`
	MaxRetries     int    `json:"max_retries" yaml:"max_retries"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// Runtime sizes the join. Zero values fall back to the environment, then to
// the Default* constants; see Resolved.
type Runtime struct {
	BatchSize     int `json:"batch_size" yaml:"batch_size"`
	QueueCapacity int `json:"queue_capacity" yaml:"queue_capacity"`
	Partitions    int `json:"partitions" yaml:"partitions"`
}

// Output names the result CSV and the optional reject log.
type Output struct {
	Path       string `json:"path" yaml:"path"`
	RejectPath string `json:"reject_path" yaml:"reject_path"`
}

// Storage optionally loads results into a database table. An empty Kind
// disables it.
type Storage struct {
	Kind string   `json:"kind" yaml:"kind"`
	DB   DBConfig `json:"db" yaml:"db"`
}

type DBConfig struct {
	DSN string `json:"dsn" yaml:"dsn"`

	// Table defaults to DefaultResultsTable.
	Table string `json:"table" yaml:"table"`

	// AutoCreateTable issues the dialect's CREATE TABLE IF NOT EXISTS first.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`
}

// Load reads a pipeline file. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON. Unknown JSON fields are rejected.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	var p Pipeline
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return Pipeline{}, fmt.Errorf("decode yaml config %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("decode json config %s: %w", path, err)
		}
	}
	return p, nil
}

// Resolved returns r with every zero field filled from the environment or
// the defaults. Explicit positive values always win.
func (r Runtime) Resolved() Runtime {
	return Runtime{
		BatchSize:     pickInt(r.BatchSize, getenvInt(EnvBatchSize, DefaultBatchSize)),
		QueueCapacity: pickInt(r.QueueCapacity, getenvInt(EnvQueueCapacity, DefaultQueueCapacity)),
		Partitions:    pickInt(r.Partitions, getenvInt(EnvPartitions, DefaultPartitions)),
	}
}

// ResultsTable returns the configured results table or DefaultResultsTable.
func (s Storage) ResultsTable() string {
	if t := strings.TrimSpace(s.DB.Table); t != "" {
		return t
	}
	return DefaultResultsTable
}

// getenvInt reads a positive int from the environment, returning def when
// unset or invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// pickInt returns a when positive, otherwise b.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
