package usage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Reference is one static environment variable read found in source code.
type Reference struct {
	Key  string
	File string // relative to the scan root
	Line int    // 1-based
}

// Parser extracts environment variable references from source files. Grammars
// are loaded once and cached; the cache is the only shared state.
type Parser struct {
	mu        sync.Mutex
	languages map[Language]*sitter.Language
}

// NewParser creates a parser with an empty grammar cache.
func NewParser() *Parser {
	return &Parser{languages: make(map[Language]*sitter.Language)}
}

func (p *Parser) getLanguage(lang Language) (*sitter.Language, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if language, ok := p.languages[lang]; ok {
		return language, nil
	}
	spec, ok := languageSpecs[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	language := spec.load()
	if language == nil {
		return nil, fmt.Errorf("failed to load grammar for %s", lang)
	}
	p.languages[lang] = language
	return language, nil
}

// ParseFile parses one source file and returns the environment references it
// contains. scanRoot is used to relativize the reported file path. A file the
// grammar cannot make sense of yields no references, not an error.
func (p *Parser) ParseFile(path string, lang Language, scanRoot string) ([]Reference, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	language, err := p.getLanguage(lang)
	if err != nil {
		return nil, err
	}
	spec := languageSpecs[lang]

	// Tree-sitter parsers are not safe for concurrent use; each file gets its
	// own parser instance.
	tsParser := sitter.NewParser()
	defer tsParser.Close()
	tsParser.SetLanguage(language)

	tree := tsParser.Parse(content, nil)
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()
	rootNode := tree.RootNode()
	if rootNode == nil {
		return nil, nil
	}

	query, queryErr := sitter.NewQuery(language, spec.query)
	if queryErr != nil {
		return nil, fmt.Errorf("query for %s failed to compile: %v", lang, queryErr)
	}
	defer query.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	matches := cursor.Matches(query, rootNode, content)

	relPath := path
	if scanRoot != "" {
		if rel, err := filepath.Rel(scanRoot, path); err == nil && rel != "" {
			relPath = rel
		}
	}

	captureNames := query.CaptureNames()
	var refs []Reference
	seen := make(map[string]bool)

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		captures := make(map[string]string)
		var keyNode *sitter.Node
		for _, capture := range match.Captures {
			if int(capture.Index) >= len(captureNames) {
				continue
			}
			name := captureNames[capture.Index]
			node := capture.Node
			captures[name] = string(content[node.StartByte():node.EndByte()])
			if name == "key" {
				keyNode = &node
			}
		}

		if keyNode == nil || !spec.accepts(captures) {
			continue
		}
		key := trimQuotes(captures["key"])
		if key == "" {
			continue
		}

		line := int(keyNode.StartPosition().Row) + 1
		id := fmt.Sprintf("%s:%s:%d", relPath, key, line)
		if seen[id] {
			continue
		}
		seen[id] = true
		refs = append(refs, Reference{Key: key, File: relPath, Line: line})
	}

	return refs, nil
}
