package usage

import (
	"os"
	"path/filepath"
)

// FileInfo is one source file picked up by the scan.
type FileInfo struct {
	Path     string
	Language Language
}

// Scanner discovers source files under a root directory.
type Scanner struct {
	excludeDirs map[string]bool
}

// NewScanner creates a scanner with the default directory exclusions.
func NewScanner() *Scanner {
	return &Scanner{
		excludeDirs: map[string]bool{
			"node_modules": true,
			"vendor":       true,
			".git":         true,
			"build":        true,
			"dist":         true,
			"bin":          true,
			"out":          true,
			".next":        true,
			".cache":       true,
			"target":       true,
		},
	}
}

// AddExcludeDirs excludes additional directory names from the scan.
func (s *Scanner) AddExcludeDirs(dirs []string) {
	for _, dir := range dirs {
		s.excludeDirs[dir] = true
	}
}

// Scan recursively walks rootPath and returns the source files whose language
// has a registered grammar.
func (s *Scanner) Scan(rootPath string) ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if s.excludeDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		lang := detectLanguage(path)
		if lang == LanguageUnknown {
			return nil
		}
		files = append(files, FileInfo{Path: path, Language: lang})
		return nil
	})

	return files, err
}
