// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EvaluationConfig holds settings for the evaluate command and API.
type EvaluationConfig struct {
	// SplitAttr is the attribute used to group references into documents
	// (default "DOI").
	SplitAttr string `json:"split_attr" yaml:"split_attr" mapstructure:"split_attr"`

	// SplitByDoc enables per-document metrics (default true).
	SplitByDoc bool `json:"split_by_doc" yaml:"split_by_doc" mapstructure:"split_by_doc"`

	// Workers bounds the number of documents scored concurrently (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Format selects the summary format: text, table, markdown, json, yaml.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// StoreConfig holds settings for the run store.
type StoreConfig struct {
	// Dir is the directory holding runs.db (default "runs").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default number of runs listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ServeConfig holds settings for the HTTP API.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxBodyBytes caps the size of a dataset posted to the API
	// (default 32 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" or "json" (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings loaded from citation-eval.yaml, the
// environment and command-line flags.
type Config struct {
	Evaluation EvaluationConfig `json:"evaluation" yaml:"evaluation" mapstructure:"evaluation"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Serve      ServeConfig      `json:"serve" yaml:"serve" mapstructure:"serve"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Evaluation: EvaluationConfig{
			SplitAttr:  string(AttrDOI),
			SplitByDoc: true,
			Workers:    1,
			Format:     "text",
		},
		Store: StoreConfig{
			Dir:        "runs",
			MaxResults: 20,
		},
		Serve: ServeConfig{Addr: ":8080", MaxBodyBytes: 32 << 20},
		Log:   LogConfig{Level: "info", Format: "console"},
	}
}
