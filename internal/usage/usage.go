// Package usage cross-checks an environment file against the source tree:
// variables the code reads must exist in the file, and variables in the file
// should be read somewhere. Only string-literal keys are checked; keys built
// at runtime are invisible to static analysis.
package usage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jenian/envcheck/internal/envfile"
	"github.com/jenian/envcheck/internal/finding"
)

const defaultWorkers = 10

// CrossChecker scans a source tree and compares the references it finds with
// a parsed environment file.
type CrossChecker struct {
	Workers     int      // parallel file parsers, defaults to 10
	ExcludeDirs []string // extra directory names to skip
	Logger      *log.Logger
}

// Run walks root, parses every supported source file and reports the
// mismatches between code and environment file. Files that fail to parse are
// logged and skipped; a scan that cannot start is a hard error.
func (c *CrossChecker) Run(root string, file *envfile.File) (*finding.Result, error) {
	scanner := NewScanner()
	scanner.AddExcludeDirs(c.ExcludeDirs)

	files, err := scanner.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	refs := c.parseFiles(files, root)
	return c.compare(refs, file), nil
}

// parseFiles parses all files in parallel and merges their references.
func (c *CrossChecker) parseFiles(files []FileInfo, root string) []Reference {
	parser := NewParser()

	workers := c.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var all []Reference
	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, workers)

	for _, file := range files {
		wg.Add(1)
		sem <- struct{}{}

		go func(f FileInfo) {
			defer wg.Done()
			defer func() { <-sem }()

			refs, err := parser.ParseFile(f.Path, f.Language, root)
			if err != nil {
				if c.Logger != nil {
					c.Logger.Warn("failed to parse source file", "file", f.Path, "err", err)
				}
				return
			}

			mu.Lock()
			all = append(all, refs...)
			mu.Unlock()
		}(file)
	}

	wg.Wait()
	return all
}

func (c *CrossChecker) compare(refs []Reference, file *envfile.File) *finding.Result {
	result := finding.NewResult()
	index := file.Index()

	byKey := make(map[string][]Reference)
	for _, ref := range refs {
		byKey[ref.Key] = append(byKey[ref.Key], ref)
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := index[key]; ok {
			continue
		}
		locs := byKey[key]
		sort.Slice(locs, func(i, j int) bool {
			if locs[i].File != locs[j].File {
				return locs[i].File < locs[j].File
			}
			return locs[i].Line < locs[j].Line
		})
		message := fmt.Sprintf("variable %s is read in %s:%d but not defined in the environment file",
			key, locs[0].File, locs[0].Line)
		if len(locs) > 1 {
			message += fmt.Sprintf(" (and %d more locations)", len(locs)-1)
		}
		result.Add(finding.SeverityWarning, finding.Finding{
			Type:       finding.TypeMissingRequired,
			Key:        key,
			Message:    message,
			Suggestion: key + "=",
		})
	}

	for _, v := range file.Variables {
		if _, ok := byKey[v.Key]; ok {
			continue
		}
		if index[v.Key] != v {
			continue // earlier occurrence of a duplicate key
		}
		result.Add(finding.SeverityInfo, finding.Finding{
			Type:    finding.TypeUnusedVariable,
			Key:     v.Key,
			Message: fmt.Sprintf("variable %s is never read by the scanned code", v.Key),
			Line:    v.Line,
		})
	}

	result.Summary.TotalVariables = len(index)
	result.Summary.UnusedVariables = result.CountAll(finding.TypeUnusedVariable)
	return result
}
