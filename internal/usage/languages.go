package usage

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language names a supported source language.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageRust       Language = "rust"
	LanguageJava       Language = "java"
	LanguageUnknown    Language = "unknown"
)

// detectLanguage determines the language from the file extension.
func detectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs":
		return LanguageJavaScript
	case ".ts", ".tsx":
		return LanguageTypeScript
	case ".go":
		return LanguageGo
	case ".py":
		return LanguagePython
	case ".rs":
		return LanguageRust
	case ".java":
		return LanguageJava
	default:
		return LanguageUnknown
	}
}

// languageSpec ties a grammar to the query that finds environment reads and
// the predicate that confirms a match really is one. The queries capture only
// string-literal keys; dynamically built keys cannot be checked statically.
type languageSpec struct {
	load    func() *sitter.Language
	query   string
	accepts func(captures map[string]string) bool
}

// Queries do not use predicates; the accepts function filters instead.
var languageSpecs = map[Language]*languageSpec{
	LanguageGo: {
		load: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_go.Language()) },
		// os.Getenv("KEY") and os.LookupEnv("KEY")
		query: `
(call_expression
  function: (selector_expression
    operand: (identifier) @obj
    field: (field_identifier) @fn
  )
  arguments: (argument_list (interpreted_string_literal) @key)
)
`,
		accepts: func(c map[string]string) bool {
			return c["obj"] == "os" && (c["fn"] == "Getenv" || c["fn"] == "LookupEnv")
		},
	},
	LanguageJavaScript: {
		load: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_javascript.Language()) },
		// process.env.KEY and process.env["KEY"]
		query: `
[
  (member_expression
    object: (member_expression
      object: (identifier) @obj
      property: (property_identifier) @prop
    )
    property: (property_identifier) @key
  )
  (subscript_expression
    object: (member_expression
      object: (identifier) @obj
      property: (property_identifier) @prop
    )
    index: (string) @key
  )
]
`,
		accepts: func(c map[string]string) bool {
			return c["obj"] == "process" && c["prop"] == "env"
		},
	},
	LanguagePython: {
		load: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_python.Language()) },
		// os.environ["KEY"], os.getenv("KEY") and os.environ.get("KEY")
		query: `
[
  (subscript
    value: (attribute
      object: (identifier) @obj
      attribute: (identifier) @attr
    )
    subscript: (string) @key
  )
  (call
    function: (attribute
      object: (identifier) @obj2
      attribute: (identifier) @fn
    )
    arguments: (argument_list (string) @key)
  )
  (call
    function: (attribute
      object: (attribute
        object: (identifier) @obj3
        attribute: (identifier) @attr3
      )
      attribute: (identifier) @fn3
    )
    arguments: (argument_list (string) @key)
  )
]
`,
		accepts: func(c map[string]string) bool {
			if c["obj"] == "os" && c["attr"] == "environ" {
				return true
			}
			if c["obj2"] == "os" && c["fn"] == "getenv" {
				return true
			}
			return c["obj3"] == "os" && c["attr3"] == "environ" && c["fn3"] == "get"
		},
	},
	LanguageRust: {
		load: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_rust.Language()) },
		// env::var("KEY"), env::var_os("KEY") and std::env::var("KEY")
		query: `
[
  (call_expression
    function: (scoped_identifier
      path: (identifier) @path
      name: (identifier) @fn
    )
    arguments: (arguments (string_literal) @key)
  )
  (call_expression
    function: (scoped_identifier
      path: (scoped_identifier
        path: (identifier) @path1
        name: (identifier) @path2
      )
      name: (identifier) @fn
    )
    arguments: (arguments (string_literal) @key)
  )
]
`,
		accepts: func(c map[string]string) bool {
			if c["fn"] != "var" && c["fn"] != "var_os" {
				return false
			}
			if c["path1"] != "" || c["path2"] != "" {
				return c["path1"] == "std" && c["path2"] == "env"
			}
			return c["path"] == "env"
		},
	},
	LanguageJava: {
		load: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_java.Language()) },
		// System.getenv("KEY") and System.getenv().get("KEY")
		query: `
[
  (method_invocation
    object: (identifier) @obj
    name: (identifier) @method
    arguments: (argument_list (string_literal) @key)
  )
  (method_invocation
    object: (method_invocation
      object: (identifier) @obj
      name: (identifier) @method1
    )
    name: (identifier) @method2
    arguments: (argument_list (string_literal) @key)
  )
]
`,
		accepts: func(c map[string]string) bool {
			if c["obj"] != "System" {
				return false
			}
			if c["method"] == "getenv" {
				return true
			}
			return c["method1"] == "getenv" && c["method2"] == "get"
		},
	},
}

func init() {
	// TypeScript shares the JavaScript query; only the grammar differs.
	js := languageSpecs[LanguageJavaScript]
	languageSpecs[LanguageTypeScript] = &languageSpec{
		load:    func() *sitter.Language { return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) },
		query:   js.query,
		accepts: js.accepts,
	}
}

// trimQuotes removes surrounding quotes from a string literal.
func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '`' && s[len(s)-1] == '`') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
