// Package clean strips comments, doc comments, and import-like statements
// from source text.
//
// Strategies are registered per file suffix; new languages register without
// touching the callers. Three strategy families exist: a syntax-tree based
// stripper for Go, regex tables for script-style languages, and a hand-written
// quote/comment state machine for the C family.
package clean

import (
	"path/filepath"
	"strings"
)

// Options selects which constructs a strategy removes.
type Options struct {
	StripComments    bool
	StripDocComments bool
	StripImports     bool
}

// Enabled reports whether any construct removal is requested.
func (options Options) Enabled() bool {
	return options.StripComments || options.StripDocComments || options.StripImports
}

// Strategy removes language constructs from source text.
type Strategy interface {
	Strip(source string, options Options) string
}

// Registry maps file suffixes to cleaning strategies.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry constructs a Registry with the built-in language strategies.
func NewRegistry() *Registry {
	registry := &Registry{strategies: make(map[string]Strategy)}

	goCleaner := newGoStrategy()
	registry.Register(".go", goCleaner)

	pythonCleaner := newPythonStrategy()
	registry.Register(".py", pythonCleaner)

	hashCleaner := newHashCommentStrategy()
	for _, suffix := range []string{".sh", ".bash", ".yaml", ".yml", ".toml", ".rb"} {
		registry.Register(suffix, hashCleaner)
	}

	cFamilyCleaner := newCFamilyStrategy()
	for _, suffix := range []string{".c", ".h", ".cpp", ".hpp", ".cc", ".hh", ".js", ".jsx", ".ts", ".tsx", ".java", ".cs", ".rs"} {
		registry.Register(suffix, cFamilyCleaner)
	}

	return registry
}

// Register installs a strategy for the given suffix, replacing any previous one.
func (registry *Registry) Register(suffix string, strategy Strategy) {
	registry.strategies[strings.ToLower(suffix)] = strategy
}

// Lookup returns the strategy registered for the path's suffix.
func (registry *Registry) Lookup(path string) (Strategy, bool) {
	strategy, found := registry.strategies[strings.ToLower(filepath.Ext(path))]
	return strategy, found
}

// Apply cleans source with the strategy registered for path, returning the
// source unchanged when no strategy is registered or no removal is requested.
func (registry *Registry) Apply(path string, source string, options Options) string {
	if !options.Enabled() {
		return source
	}
	strategy, found := registry.Lookup(path)
	if !found {
		return source
	}
	return strategy.Strip(source, options)
}

// StripBlankLines removes lines that contain only whitespace.
func StripBlankLines(source string) string {
	lines := strings.Split(source, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
