package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical scoring defaults file.
// This is the single source of truth for all default scoring values.
const DefaultConfigPath = "config/scoring.defaults.json"

// Comparison modes for threshold checks. The source data sets this system
// replaces disagreed on whether grade cuts and the passing threshold are
// exclusive or inclusive, so both are configuration rather than code.
const (
	CompareGreater        = "gt"
	CompareGreaterOrEqual = "gte"
)

// Empty-display modes: how KPI cards render when filtering leaves no rows.
const (
	EmptyDisplayNA    = "na"
	EmptyDisplayZeros = "zeros"
)

// ScoringConfig represents the root configuration for scoring parameters:
// grade-cut boundaries, pass/perfect thresholds, and display precision.
// The same JSON schema is served by /api/config so a running instance can
// be inspected.
type ScoringConfig struct {
	// Grade cut boundaries. A score above (or at, per GradeComparison) a
	// cut earns at least that letter; anything below the D cut is an F.
	GradeCutA *float64 `json:"grade_cut_a,omitempty"`
	GradeCutB *float64 `json:"grade_cut_b,omitempty"`
	GradeCutC *float64 `json:"grade_cut_c,omitempty"`
	GradeCutD *float64 `json:"grade_cut_d,omitempty"`

	// GradeComparison selects "gt" (score must exceed the cut) or "gte"
	// (score at the cut already qualifies).
	GradeComparison *string `json:"grade_comparison,omitempty"`

	// Pass/perfect params
	PassThreshold  *float64 `json:"pass_threshold,omitempty"`
	PassComparison *string  `json:"pass_comparison,omitempty"`
	PerfectTarget  *float64 `json:"perfect_target,omitempty"`

	// Display params
	ScoreDecimals *int    `json:"score_decimals,omitempty"`
	RateDecimals  *int    `json:"rate_decimals,omitempty"`
	EmptyDisplay  *string `json:"empty_display,omitempty"`

	// UseWeights enables the weighted-mean KPI when weight data is present.
	UseWeights *bool `json:"use_weights,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyScoringConfig returns a ScoringConfig with all fields set to nil.
// Use LoadScoringConfig to load actual values from the defaults file.
func EmptyScoringConfig() *ScoringConfig {
	return &ScoringConfig{}
}

// DefaultScoringConfig returns a ScoringConfig with every field populated
// with its default value. It mirrors config/scoring.defaults.json without
// touching the disk.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		GradeCutA:       ptrFloat64(84),
		GradeCutB:       ptrFloat64(74),
		GradeCutC:       ptrFloat64(64),
		GradeCutD:       ptrFloat64(54),
		GradeComparison: ptrString(CompareGreater),
		PassThreshold:   ptrFloat64(55),
		PassComparison:  ptrString(CompareGreaterOrEqual),
		PerfectTarget:   ptrFloat64(100),
		ScoreDecimals:   ptrInt(2),
		RateDecimals:    ptrInt(1),
		EmptyDisplay:    ptrString(EmptyDisplayNA),
		UseWeights:      ptrBool(true),
	}
}

// LoadScoringConfig loads a ScoringConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadScoringConfig(path string) (*ScoringConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyScoringConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical scoring defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ScoringConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadScoringConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ScoringConfig) Validate() error {
	// Grade cuts must descend A > B > C > D when set.
	cuts := []struct {
		name  string
		value *float64
	}{
		{"grade_cut_a", c.GradeCutA},
		{"grade_cut_b", c.GradeCutB},
		{"grade_cut_c", c.GradeCutC},
		{"grade_cut_d", c.GradeCutD},
	}
	prev := -1.0
	prevName := ""
	for i := len(cuts) - 1; i >= 0; i-- {
		if cuts[i].value == nil {
			continue
		}
		if prev >= 0 && *cuts[i].value <= prev {
			return fmt.Errorf("%s (%v) must be greater than %s (%v)",
				cuts[i].name, *cuts[i].value, prevName, prev)
		}
		prev = *cuts[i].value
		prevName = cuts[i].name
	}

	if c.GradeComparison != nil {
		if *c.GradeComparison != CompareGreater && *c.GradeComparison != CompareGreaterOrEqual {
			return fmt.Errorf("grade_comparison must be %q or %q, got %q",
				CompareGreater, CompareGreaterOrEqual, *c.GradeComparison)
		}
	}

	if c.PassComparison != nil {
		if *c.PassComparison != CompareGreater && *c.PassComparison != CompareGreaterOrEqual {
			return fmt.Errorf("pass_comparison must be %q or %q, got %q",
				CompareGreater, CompareGreaterOrEqual, *c.PassComparison)
		}
	}

	if c.ScoreDecimals != nil {
		if *c.ScoreDecimals < 0 || *c.ScoreDecimals > 6 {
			return fmt.Errorf("score_decimals must be between 0 and 6, got %d", *c.ScoreDecimals)
		}
	}

	if c.RateDecimals != nil {
		if *c.RateDecimals < 0 || *c.RateDecimals > 6 {
			return fmt.Errorf("rate_decimals must be between 0 and 6, got %d", *c.RateDecimals)
		}
	}

	if c.EmptyDisplay != nil {
		if *c.EmptyDisplay != EmptyDisplayNA && *c.EmptyDisplay != EmptyDisplayZeros {
			return fmt.Errorf("empty_display must be %q or %q, got %q",
				EmptyDisplayNA, EmptyDisplayZeros, *c.EmptyDisplay)
		}
	}

	return nil
}

// GetGradeCutA returns the grade_cut_a value or the default.
func (c *ScoringConfig) GetGradeCutA() float64 {
	if c.GradeCutA == nil {
		return 84 // default
	}
	return *c.GradeCutA
}

// GetGradeCutB returns the grade_cut_b value or the default.
func (c *ScoringConfig) GetGradeCutB() float64 {
	if c.GradeCutB == nil {
		return 74
	}
	return *c.GradeCutB
}

// GetGradeCutC returns the grade_cut_c value or the default.
func (c *ScoringConfig) GetGradeCutC() float64 {
	if c.GradeCutC == nil {
		return 64
	}
	return *c.GradeCutC
}

// GetGradeCutD returns the grade_cut_d value or the default.
func (c *ScoringConfig) GetGradeCutD() float64 {
	if c.GradeCutD == nil {
		return 54
	}
	return *c.GradeCutD
}

// GetGradeComparison returns the grade_comparison value or the default.
func (c *ScoringConfig) GetGradeComparison() string {
	if c.GradeComparison == nil {
		return CompareGreater // default: a score above the cut earns the grade
	}
	return *c.GradeComparison
}

// GetPassThreshold returns the pass_threshold value or the default.
func (c *ScoringConfig) GetPassThreshold() float64 {
	if c.PassThreshold == nil {
		return 55
	}
	return *c.PassThreshold
}

// GetPassComparison returns the pass_comparison value or the default.
func (c *ScoringConfig) GetPassComparison() string {
	if c.PassComparison == nil {
		return CompareGreaterOrEqual // default: hitting the threshold passes
	}
	return *c.PassComparison
}

// GetPerfectTarget returns the perfect_target value or the default.
func (c *ScoringConfig) GetPerfectTarget() float64 {
	if c.PerfectTarget == nil {
		return 100
	}
	return *c.PerfectTarget
}

// GetScoreDecimals returns the score_decimals value or the default.
func (c *ScoringConfig) GetScoreDecimals() int {
	if c.ScoreDecimals == nil {
		return 2
	}
	return *c.ScoreDecimals
}

// GetRateDecimals returns the rate_decimals value or the default.
func (c *ScoringConfig) GetRateDecimals() int {
	if c.RateDecimals == nil {
		return 1
	}
	return *c.RateDecimals
}

// GetEmptyDisplay returns the empty_display value or the default.
func (c *ScoringConfig) GetEmptyDisplay() string {
	if c.EmptyDisplay == nil {
		return EmptyDisplayNA
	}
	return *c.EmptyDisplay
}

// GetUseWeights returns the use_weights value or the default.
func (c *ScoringConfig) GetUseWeights() bool {
	if c.UseWeights == nil {
		return true
	}
	return *c.UseWeights
}

// exceeds applies the configured comparison of value against threshold.
func exceeds(value, threshold float64, comparison string) bool {
	if comparison == CompareGreaterOrEqual {
		return value >= threshold
	}
	return value > threshold
}

// AssessmentGrade maps a score to its letter grade using the configured
// cuts and comparison direction.
func (c *ScoringConfig) AssessmentGrade(score float64) string {
	cmp := c.GetGradeComparison()
	switch {
	case exceeds(score, c.GetGradeCutA(), cmp):
		return "A"
	case exceeds(score, c.GetGradeCutB(), cmp):
		return "B"
	case exceeds(score, c.GetGradeCutC(), cmp):
		return "C"
	case exceeds(score, c.GetGradeCutD(), cmp):
		return "D"
	default:
		return "F"
	}
}

// IsPassing reports whether a score meets the configured passing threshold.
func (c *ScoringConfig) IsPassing(score float64) bool {
	return exceeds(score, c.GetPassThreshold(), c.GetPassComparison())
}

// IsPerfect reports whether a score equals the configured perfect target.
func (c *ScoringConfig) IsPerfect(score float64) bool {
	return score == c.GetPerfectTarget()
}

// GradeOrder returns the fixed letter-grade scale, best first.
func GradeOrder() []string {
	return []string{"A", "B", "C", "D", "F"}
}

// FormatScore renders a score value with the configured precision.
func (c *ScoringConfig) FormatScore(v float64) string {
	return fmt.Sprintf("%.*f", c.GetScoreDecimals(), v)
}

// FormatRate renders a percentage value with the configured precision.
func (c *ScoringConfig) FormatRate(v float64) string {
	return fmt.Sprintf("%.*f%%", c.GetRateDecimals(), v)
}

// EmptyScoreDisplay returns the score-card text to show when no rows match.
func (c *ScoringConfig) EmptyScoreDisplay() string {
	if c.GetEmptyDisplay() == EmptyDisplayZeros {
		return c.FormatScore(0)
	}
	return "N/A"
}

// EmptyRateDisplay returns the rate-card text to show when no rows match.
func (c *ScoringConfig) EmptyRateDisplay() string {
	if c.GetEmptyDisplay() == EmptyDisplayZeros {
		return c.FormatRate(0)
	}
	return "N/A"
}
