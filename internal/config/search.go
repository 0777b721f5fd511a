package config

// SearchConfig holds the search budgets used by the training use-cases.
type SearchConfig struct {
	// MoveTimeMs is the time budget for a best-move search
	MoveTimeMs int `yaml:"move_time_ms"`

	// Depth is the depth budget for a best-move search
	Depth int `yaml:"depth"`

	// EvalDepth is the depth of a position evaluation
	EvalDepth int `yaml:"eval_depth"`

	// HintMoveTimeMs is the time budget for a hint
	HintMoveTimeMs int `yaml:"hint_move_time_ms"`

	// BlunderThresholdCp is the evaluation drop that makes a move a blunder
	BlunderThresholdCp int `yaml:"blunder_threshold_cp"`
}

// NewSearchConfig creates a SearchConfig with default values.
func NewSearchConfig() SearchConfig {
	return SearchConfig{
		MoveTimeMs:         1000,
		Depth:              15,
		EvalDepth:          12,
		HintMoveTimeMs:     500,
		BlunderThresholdCp: 150,
	}
}

// Validate checks that the search configuration is valid.
func (s *SearchConfig) Validate() error {
	checks := []struct {
		name string
		n    int
	}{
		{"search.move_time_ms", s.MoveTimeMs},
		{"search.depth", s.Depth},
		{"search.eval_depth", s.EvalDepth},
		{"search.hint_move_time_ms", s.HintMoveTimeMs},
		{"search.blunder_threshold_cp", s.BlunderThresholdCp},
	}
	for _, c := range checks {
		if err := requirePositive(c.name, c.n); err != nil {
			return err
		}
	}
	return nil
}
