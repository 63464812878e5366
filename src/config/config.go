// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by [Load].
const (
	EnvConfigFile = "X509_POLICY_CONFIG_FILE"
	EnvWorkers    = "X509_POLICY_WORKERS"
	EnvRedisAddr  = "X509_POLICY_REDIS_ADDR"
	EnvLogFormat  = "X509_POLICY_LOG_FORMAT"
)

// Evaluator kinds.
const (
	EvaluatorProcess = "process"
	EvaluatorRego    = "rego"
)

// ErrInvalid is returned when a config file does not match the schema.
var ErrInvalid = errors.New("config: invalid configuration")

//go:embed schema.json
var schema string

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config is the verifier configuration.
type Config struct {
	// TrustStore: PEM bundle of trust anchors, loaded once per run
	TrustStore string `json:"trustStore" yaml:"trustStore"`

	Evaluator struct {
		// Kind: "process" runs Script, "rego" evaluates in process
		Kind string `json:"kind" yaml:"kind"`
		// Script: Entry point invoked as <script> <jobDir> <client>
		Script string `json:"script" yaml:"script"`
		// JobRoot: Prefix of every job directory, before the run suffix
		JobRoot string `json:"jobRoot" yaml:"jobRoot"`
		// RegoPath: Policy file or directory; empty selects the bundled policy
		RegoPath string `json:"regoPath,omitempty" yaml:"regoPath,omitempty"`
		// RegoQuery: Query yielding the exit status
		RegoQuery string `json:"regoQuery,omitempty" yaml:"regoQuery,omitempty"`
	} `json:"evaluator" yaml:"evaluator"`

	// Workers: Size of the partition worker pool
	Workers int `json:"workers" yaml:"workers"`
	// PartitionStride: Distance between partition file numbers
	PartitionStride int `json:"partitionStride" yaml:"partitionStride"`

	OCSP struct {
		// TimeoutSeconds: HTTP timeout for responder queries
		TimeoutSeconds int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
		// CacheSize: Entries kept by the in-memory response cache
		CacheSize int `json:"cacheSize" yaml:"cacheSize"`
		// RedisAddr: When set, responses are cached in Redis instead
		RedisAddr string `json:"redisAddr,omitempty" yaml:"redisAddr,omitempty"`
	} `json:"ocsp" yaml:"ocsp"`

	Intermediates struct {
		// Reconstruct: Extend row chains from <intpath>/<id>.pem
		Reconstruct bool `json:"reconstruct" yaml:"reconstruct"`
	} `json:"intermediates" yaml:"intermediates"`

	Log struct {
		// Format: "text" or "json"
		Format string `json:"format" yaml:"format"`
	} `json:"log" yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.TrustStore = "assets/roots.pem"
	c.Evaluator.Kind = EvaluatorProcess
	c.Evaluator.Script = "prolog/run.sh"
	c.Evaluator.JobRoot = "prolog/job"
	c.Workers = runtime.NumCPU()
	c.PartitionStride = 100
	c.OCSP.TimeoutSeconds = 10
	c.OCSP.CacheSize = 1024
	c.Log.Format = "text"
	return c
}

// OCSPTimeout returns the responder timeout as a duration.
func (c *Config) OCSPTimeout() time.Duration {
	return time.Duration(c.OCSP.TimeoutSeconds) * time.Second
}

// detectConfigFormat determines the configuration file format based on file extension.
func detectConfigFormat(configPath string) configFormat {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// Load builds the configuration.
//
// Parameters:
//   - configPath: Path to a .json, .yaml or .yml file (optional, can be empty)
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Read, parse or [ErrInvalid] schema error
//
// Configuration Priority:
//  1. Default values are set
//  2. X509_POLICY_CONFIG_FILE is checked if configPath is empty
//  3. Config file values override defaults (after schema validation)
//  4. X509_POLICY_WORKERS, X509_POLICY_REDIS_ADDR and X509_POLICY_LOG_FORMAT override the file
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, config, detectConfigFormat(configPath)); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalid, EnvWorkers, v)
		}
		config.Workers = n
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		config.OCSP.RedisAddr = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		config.Log.Format = v
	}

	config.normalize()
	return config, nil
}

// decode validates data against the schema and merges it into config.
func decode(data []byte, config *Config, format configFormat) error {
	var doc any
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	if doc == nil {
		return nil
	}

	if err := Validate(doc); err != nil {
		return err
	}

	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// Validate checks a decoded document against the embedded JSON schema.
func Validate(doc any) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// normalize replaces zero values with defaults.
func (c *Config) normalize() {
	d := Default()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.PartitionStride <= 0 {
		c.PartitionStride = d.PartitionStride
	}
	if c.OCSP.TimeoutSeconds <= 0 {
		c.OCSP.TimeoutSeconds = d.OCSP.TimeoutSeconds
	}
	if c.Evaluator.Kind == "" {
		c.Evaluator.Kind = d.Evaluator.Kind
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}
