// Package config provides configuration file support for adr.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the config file, read from the repo root.
const ConfigFileName = ".adr.yaml"

// Duration is a custom type that handles YAML duration parsing.
// Supports both Go duration format ("5m", "300s") and numeric seconds.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v) * time.Second)
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
	return nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Config represents the adr configuration file.
type Config struct {
	Timeout          *Duration      `yaml:"timeout"`
	PreflightTimeout *Duration      `yaml:"preflight_timeout"`
	LockThreshold    *int           `yaml:"lock_threshold"`
	ReportPath       *string        `yaml:"report_path"`
	PromptHeader     *string        `yaml:"prompt_header"`
	Backends         BackendsConfig `yaml:"backends"`
}

// BackendsConfig holds per-backend overrides.
type BackendsConfig struct {
	Claude BackendConfig `yaml:"claude"`
	Codex  BackendConfig `yaml:"codex"`
	Gemini BackendConfig `yaml:"gemini"`
}

// BackendConfig overrides the binary path and model for one backend.
type BackendConfig struct {
	Bin   *string `yaml:"bin"`
	Model *string `yaml:"model"`
}

// LoadResult contains the loaded config and any warnings encountered.
type LoadResult struct {
	Config   *Config
	Warnings []string
}

// LoadFromDirWithWarnings reads .adr.yaml from the specified directory and
// returns warnings for unknown keys. Returns an empty config (not error) if
// the file doesn't exist.
func LoadFromDirWithWarnings(dir string) (*LoadResult, error) {
	return LoadFromPathWithWarnings(filepath.Join(dir, ConfigFileName))
}

// LoadFromPathWithWarnings reads a config file and returns warnings for
// unknown keys. Returns an empty config (not error) if the file doesn't
// exist; returns an error if the file exists but is invalid.
func LoadFromPathWithWarnings(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadResult{Config: &Config{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	warnings := checkUnknownKeys(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}

	return &LoadResult{Config: &cfg, Warnings: warnings}, nil
}

// knownTopLevelKeys are the valid top-level keys in the config file.
var knownTopLevelKeys = []string{"timeout", "preflight_timeout", "lock_threshold", "report_path", "prompt_header", "backends"}

// knownBackendSections are the valid keys under the "backends" section.
var knownBackendSections = []string{"claude", "codex", "gemini"}

// knownBackendKeys are the valid keys inside each backend section.
var knownBackendKeys = []string{"bin", "model"}

// checkUnknownKeys checks for unknown keys in the YAML data and returns warnings.
func checkUnknownKeys(data []byte) []string {
	var warnings []string

	// Parse into a generic map to inspect keys
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// If we can't parse, let the main parser handle the error
		return nil
	}

	for key := range raw {
		if !slices.Contains(knownTopLevelKeys, key) {
			warning := fmt.Sprintf("unknown key %q in %s", key, ConfigFileName)
			if suggestion := findSimilar(key, knownTopLevelKeys); suggestion != "" {
				warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			warnings = append(warnings, warning)
		}
	}

	backends, ok := raw["backends"].(map[string]any)
	if !ok {
		return warnings
	}
	for name := range backends {
		if !slices.Contains(knownBackendSections, name) {
			warning := fmt.Sprintf("unknown backend %q in %s", name, ConfigFileName)
			if suggestion := findSimilar(name, knownBackendSections); suggestion != "" {
				warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			warnings = append(warnings, warning)
			continue
		}
		section, ok := backends[name].(map[string]any)
		if !ok {
			continue
		}
		for key := range section {
			if !slices.Contains(knownBackendKeys, key) {
				warning := fmt.Sprintf("unknown key %q in backends.%s section of %s", key, name, ConfigFileName)
				if suggestion := findSimilar(key, knownBackendKeys); suggestion != "" {
					warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
				}
				warnings = append(warnings, warning)
			}
		}
	}

	return warnings
}

// findSimilar finds the most similar string from candidates using Levenshtein distance.
// Returns empty string if no candidate is similar enough (threshold: 3 edits).
func findSimilar(input string, candidates []string) string {
	const maxDistance = 3
	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		dist := levenshtein(input, candidate)
		if dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshtein calculates the Levenshtein distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	if c.Timeout != nil && *c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", time.Duration(*c.Timeout))
	}
	if c.PreflightTimeout != nil && *c.PreflightTimeout <= 0 {
		return fmt.Errorf("preflight_timeout must be > 0, got %s", time.Duration(*c.PreflightTimeout))
	}
	if c.LockThreshold != nil && *c.LockThreshold < 1 {
		return fmt.Errorf("lock_threshold must be >= 1, got %d", *c.LockThreshold)
	}
	return nil
}

// BackendOverrides holds the resolved bin and model for one backend.
type BackendOverrides struct {
	Bin   string
	Model string
}

// ResolvedConfig holds the final resolved configuration values.
type ResolvedConfig struct {
	Timeout          time.Duration
	PreflightTimeout time.Duration
	LockThreshold    int
	ReportPath       string
	PromptHeader     string
	Claude           BackendOverrides
	Codex            BackendOverrides
	Gemini           BackendOverrides
}

// Defaults holds the built-in default values.
var Defaults = ResolvedConfig{
	Timeout:          2 * time.Minute,
	PreflightTimeout: 5 * time.Second,
	LockThreshold:    3,
}

// FlagState tracks whether a flag was explicitly set.
type FlagState struct {
	TimeoutSet       bool
	LockThresholdSet bool
}

// EnvState captures env var values and whether they were set.
type EnvState struct {
	Timeout             time.Duration
	TimeoutSet          bool
	PreflightTimeout    time.Duration
	PreflightTimeoutSet bool
	LockThreshold       int
	LockThresholdSet    bool
	ReportPath          string
	ReportPathSet       bool
	PromptHeader        string
	PromptHeaderSet     bool
	Claude              BackendEnv
	Codex               BackendEnv
	Gemini              BackendEnv
}

// BackendEnv captures per-backend env overrides.
type BackendEnv struct {
	Bin      string
	BinSet   bool
	Model    string
	ModelSet bool
}

// LoadEnvState reads ADR_* environment variables and returns their state.
func LoadEnvState() EnvState {
	var state EnvState

	if v := os.Getenv("ADR_TIMEOUT"); v != "" {
		if d, ok := parseDurationEnv(v); ok {
			state.Timeout = d
			state.TimeoutSet = true
		}
	}
	if v := os.Getenv("ADR_PREFLIGHT_TIMEOUT"); v != "" {
		if d, ok := parseDurationEnv(v); ok {
			state.PreflightTimeout = d
			state.PreflightTimeoutSet = true
		}
	}
	if v := os.Getenv("ADR_LOCK_THRESHOLD"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 1 {
			state.LockThreshold = i
			state.LockThresholdSet = true
		}
	}
	if v := os.Getenv("ADR_REPORT_PATH"); v != "" {
		state.ReportPath = v
		state.ReportPathSet = true
	}
	if v := os.Getenv("ADR_PROMPT_HEADER"); v != "" {
		state.PromptHeader = v
		state.PromptHeaderSet = true
	}
	state.Claude = loadBackendEnv("CLAUDE")
	state.Codex = loadBackendEnv("CODEX")
	state.Gemini = loadBackendEnv("GEMINI")

	return state
}

func loadBackendEnv(name string) BackendEnv {
	var be BackendEnv
	if v := os.Getenv("ADR_" + name + "_BIN"); v != "" {
		be.Bin = v
		be.BinSet = true
	}
	if v := os.Getenv("ADR_" + name + "_MODEL"); v != "" {
		be.Model = v
		be.ModelSet = true
	}
	return be
}

func parseDurationEnv(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// Resolve merges config file values with env vars and flags.
// Precedence: flags > env vars > config file > defaults
func Resolve(cfg *Config, envState EnvState, flagState FlagState, flagValues ResolvedConfig) ResolvedConfig {
	result := Defaults

	// Apply config file values (if set)
	if cfg != nil {
		if cfg.Timeout != nil {
			result.Timeout = cfg.Timeout.AsDuration()
		}
		if cfg.PreflightTimeout != nil {
			result.PreflightTimeout = cfg.PreflightTimeout.AsDuration()
		}
		if cfg.LockThreshold != nil {
			result.LockThreshold = *cfg.LockThreshold
		}
		if cfg.ReportPath != nil {
			result.ReportPath = *cfg.ReportPath
		}
		if cfg.PromptHeader != nil {
			result.PromptHeader = *cfg.PromptHeader
		}
		applyBackendConfig(&result.Claude, cfg.Backends.Claude)
		applyBackendConfig(&result.Codex, cfg.Backends.Codex)
		applyBackendConfig(&result.Gemini, cfg.Backends.Gemini)
	}

	// Apply env var values (if set)
	if envState.TimeoutSet {
		result.Timeout = envState.Timeout
	}
	if envState.PreflightTimeoutSet {
		result.PreflightTimeout = envState.PreflightTimeout
	}
	if envState.LockThresholdSet {
		result.LockThreshold = envState.LockThreshold
	}
	if envState.ReportPathSet {
		result.ReportPath = envState.ReportPath
	}
	if envState.PromptHeaderSet {
		result.PromptHeader = envState.PromptHeader
	}
	applyBackendEnv(&result.Claude, envState.Claude)
	applyBackendEnv(&result.Codex, envState.Codex)
	applyBackendEnv(&result.Gemini, envState.Gemini)

	// Apply flag values (if explicitly set)
	if flagState.TimeoutSet {
		result.Timeout = flagValues.Timeout
	}
	if flagState.LockThresholdSet {
		result.LockThreshold = flagValues.LockThreshold
	}

	return result
}

func applyBackendConfig(dst *BackendOverrides, src BackendConfig) {
	if src.Bin != nil {
		dst.Bin = *src.Bin
	}
	if src.Model != nil {
		dst.Model = *src.Model
	}
}

func applyBackendEnv(dst *BackendOverrides, src BackendEnv) {
	if src.BinSet {
		dst.Bin = src.Bin
	}
	if src.ModelSet {
		dst.Model = src.Model
	}
}
