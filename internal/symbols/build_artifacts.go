package symbols

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// cargoManifest is the tiny slice of Cargo.toml this detector decodes. It
// only confirms the manifest parses as TOML; a custom target directory is
// not read, so any valid Cargo.toml adds the default "**/target/**".
type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

// DetectBuildOutputs mirrors (a trimmed-down version of) the teacher's
// internal/config/build_artifact_detector.go: sniff common manifest files
// to find language build-output directories that should never be walked
// for symbols, even when the caller didn't list them explicitly.
func DetectBuildOutputs(root string) []string {
	var excludes []string

	if data, err := os.ReadFile(filepath.Join(root, "Cargo.toml")); err == nil {
		var m cargoManifest
		if toml.Unmarshal(data, &m) == nil {
			excludes = append(excludes, "**/target/**")
		}
	}

	if _, err := os.Stat(filepath.Join(root, "package.json")); err == nil {
		excludes = append(excludes, "**/dist/**", "**/build/**", "**/node_modules/**")
	}

	if _, err := os.Stat(filepath.Join(root, "pyproject.toml")); err == nil {
		excludes = append(excludes, "**/__pycache__/**", "**/.venv/**")
	}

	if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
		excludes = append(excludes, "**/bin/**")
	}

	return excludes
}
