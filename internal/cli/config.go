package cli

import (
	"os"
	"path/filepath"

	pkgconfig "github.com/jdziat/langfuse-ingest/pkg/config"
)

// configCandidates are the file names searched for when --config is not set.
var configCandidates = []string{
	".langfuse.yaml",
	".langfuse.yml",
	".langfuse.json",
}

// findConfigFile searches the current directory and its parents.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configCandidates {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// loadSettings merges the config file, the environment and the persistent
// flags, in increasing precedence.
func (o *rootOptions) loadSettings() (*pkgconfig.Settings, error) {
	path := o.configPath
	if path == "" {
		path = findConfigFile()
	}
	s, err := pkgconfig.Load(path)
	if err != nil {
		return nil, err
	}
	if o.baseURL != "" {
		s.BaseURL = o.baseURL
	}
	if o.debug {
		s.Debug = true
	}
	return s, nil
}
