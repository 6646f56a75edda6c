// Package config defines the JSON-serializable configuration model for the
// books loader. Pipelines are decoded from disk (configs/pipelines/*.json)
// with the standard library and passed through the program without extra
// glue; parser-specific knobs travel in a small typed Options bag.
package config

import "encoding/json"

// Pipeline describes one full run: where the export comes from, how to parse
// it, and where the normalized tables land.
type Pipeline struct {
	// Job names the run for logs and metrics labels.
	Job string `json:"job"`

	// Source describes where the input bytes come from.
	Source Source `json:"source"`

	// Parser configures how raw bytes become records.
	Parser Parser `json:"parser"`

	// Normalize carries pass-level options for the normalization stage.
	Normalize Normalize `json:"normalize"`

	// Storage describes the sink for the three output tables.
	Storage Storage `json:"storage"`

	// Runtime controls batching for the load phase.
	Runtime RuntimeConfig `json:"runtime"`
}

// Source identifies the data source.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind"`

	// File carries options for the "file" kind.
	File SourceFile `json:"file"`

	// HTTP carries options for the "http" kind.
	HTTP SourceHTTP `json:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the export.
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	// URL is fetched with a plain GET; only a 200 response is accepted.
	URL string `json:"url"`
}

// Parser selects how to parse the raw source into rows.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser. For CSV the keys
	// are: has_header (bool), comma (string), encoding (string).
	Options Options `json:"options"`
}

// Normalize holds options for the normalization pass.
type Normalize struct {
	// DropDuplicates drops exact duplicate source rows before normalizing.
	DropDuplicates bool `json:"drop_duplicates"`
}

// Storage selects the sink used to persist the output tables.
type Storage struct {
	// Kind selects the storage backend: "postgres", "sqlite", "mysql",
	// "mssql".
	Kind string `json:"kind"`

	// DB configures the selected backend.
	DB DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the backend connection string. The BOOKETL_DSN environment
	// variable overrides it at runtime.
	DSN string `json:"dsn"`

	// CreateSchema provisions the books, authors and books_authors tables
	// before loading.
	CreateSchema bool `json:"create_schema"`
}

// RuntimeConfig controls load batching.
type RuntimeConfig struct {
	// BatchSize is the number of rows per bulk insert. Zero means the
	// default of 500.
	BatchSize int `json:"batch_size"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps.
// It performs only minimal coercion and returns the provided default when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. encoding/json decodes numbers as
// float64, so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def when the key
// is missing or empty. Used for single-character settings such as the CSV
// delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// UnmarshalJSON decodes a missing or null options object to a non-nil, empty
// Options map so call sites need no nil checks.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
