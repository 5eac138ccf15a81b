// Package config loads .rup.kdl project configuration, following the
// teacher's internal/config package: a defaulted struct overlaid by a
// KDL document when present (spec.md's ambient "configuration" concern).
package config

// Config is roughup's project configuration.
type Config struct {
	Version int

	Project Project
	Budget  BudgetConfig
	Dedupe  DedupeConfig
	Index   IndexConfig
}

// Project describes the repository root roughup operates over.
type Project struct {
	Root string
	Name string
}

// BudgetConfig mirrors the budgeter's tunables.
type BudgetConfig struct {
	Model              string
	DefaultBudget      int
	CodeCap            int
	InterfaceCap       int
	TestCap            int
	NoveltyFloor       int
	CallGraphDepth     int
	CallGraphWeight    float64
	FailSignalInfluence int // K constant, spec.md §9
}

// DedupeConfig mirrors the dedup engine's tunables.
type DedupeConfig struct {
	NgramMode        string
	N                int
	JaccardThreshold float64
	HashWindow       int
	CharFallback     bool
}

// IndexConfig holds the index settings read from .rup.kdl. The heuristic
// symbol provider does not read them: it walks with its built-in excludes
// plus detected build outputs, does not skip files by size, and these
// fields do not change which files it indexes.
type IndexConfig struct {
	Exclude        []string
	FollowSymlinks bool
	MaxFileSize    int64 // size limit in bytes, parsed from index.max_file_size
}

// Default returns the built-in configuration used when no .rup.kdl is
// present, or as the base a KDL document overlays onto.
func Default(projectRoot string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: projectRoot},
		Budget: BudgetConfig{
			Model:               "cl100k_base",
			DefaultBudget:       4000,
			CodeCap:             2000,
			InterfaceCap:        1000,
			TestCap:             1000,
			NoveltyFloor:        0,
			CallGraphDepth:      1,
			CallGraphWeight:     1.0,
			FailSignalInfluence: 20,
		},
		Dedupe: DedupeConfig{
			NgramMode:        "Word",
			N:                3,
			JaccardThreshold: 0.7,
			HashWindow:       4,
			CharFallback:     true,
		},
		Index: IndexConfig{
			Exclude:        []string{"**/.git/**", "**/node_modules/**", "**/vendor/**"},
			FollowSymlinks: false,
			MaxFileSize:    10 * 1024 * 1024,
		},
	}
}

// Load loads .rup.kdl from projectRoot if present, overlaying it onto
// Default. A missing file is not an error.
func Load(projectRoot string) (*Config, error) {
	cfg := Default(projectRoot)
	overlaid, err := loadKDL(projectRoot, cfg)
	if err != nil {
		return nil, err
	}
	if overlaid != nil {
		return overlaid, nil
	}
	return cfg, nil
}
