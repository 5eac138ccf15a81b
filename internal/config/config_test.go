package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/repo")
	assert.Equal(t, "cl100k_base", cfg.Budget.Model)
	assert.Equal(t, "/repo", cfg.Project.Root)
	assert.Equal(t, 1, cfg.Budget.CallGraphDepth)
}

func TestLoadWithoutKDLReturnsDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "cl100k_base", cfg.Budget.Model)
}

func TestLoadOverlaysKDL(t *testing.T) {
	root := t.TempDir()
	kdlDoc := `project {
    name "demo"
}
budget {
    model "o200k_base"
    default_budget 8000
    code_cap 4000
}
dedupe {
    ngram_mode "Char"
    jaccard_threshold 0.5
}
index {
    exclude "**/dist/**" "**/build/**"
    max_file_size "20MB"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".rup.kdl"), []byte(kdlDoc), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, "o200k_base", cfg.Budget.Model)
	assert.Equal(t, 8000, cfg.Budget.DefaultBudget)
	assert.Equal(t, 4000, cfg.Budget.CodeCap)
	assert.Equal(t, "Char", cfg.Dedupe.NgramMode)
	assert.InDelta(t, 0.5, cfg.Dedupe.JaccardThreshold, 0.0001)
	assert.ElementsMatch(t, []string{"**/dist/**", "**/build/**"}, cfg.Index.Exclude)
	assert.Equal(t, int64(20*1024*1024), cfg.Index.MaxFileSize)
}
