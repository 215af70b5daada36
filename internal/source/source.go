// Package source finds, reads and evaluates config.php files into literal trees.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/metraction/ncconf/internal/phpliteral"
	"github.com/metraction/ncconf/pkg/extract"
	"github.com/metraction/ncconf/pkg/literal"
	"github.com/rs/zerolog"
)

var (
	ErrRead      = errors.New("cannot read config file")
	ErrNotConfig = errors.New("not a config file")
	ErrSyntax    = errors.New("config file cannot be evaluated")
	ErrPhp       = errors.New("php evaluation failed")
)

// Document is an evaluated config file, or several merged ones
type Document struct {
	Path   string            // main config file
	Files  []string          // all files in merge order
	Tree   *literal.Map      // merged tree
	Source map[string][]byte // file contents by path
	origin map[string]string // top level key -> file it was taken from
}

// FileOf returns the file a field like redis['host'] was read from
func (rx *Document) FileOf(field string) string {
	key := field
	if k := strings.Index(field, "["); k > 0 {
		key = field[:k]
	}
	if file, ok := rx.origin[key]; ok {
		return file
	}
	return rx.Path
}

type Loader struct {
	logger      *zerolog.Logger
	phpFallback bool
	php         *PhpEvaluator
}

// NewLoader returns a loader, phpFallback runs the php binary when the literal evaluator gives up
func NewLoader(logger *zerolog.Logger, phpFallback bool) *Loader {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Loader{
		logger:      logger,
		phpFallback: phpFallback,
		php:         NewPhpEvaluator(logger),
	}
}

// Load evaluates a single config file
func (rx *Loader) Load(ctx context.Context, path string) (*Document, error) {
	doc := &Document{Path: path, Source: map[string][]byte{}, origin: map[string]string{}}
	tree, err := rx.evaluate(ctx, path, doc)
	if err != nil {
		return nil, err
	}
	doc.add(path, tree)
	return doc, nil
}

// LoadGlob evaluates path and merges all *.config.php files of the same directory on top of it,
// in alphabetical order. Top level keys of later files replace earlier ones.
func (rx *Loader) LoadGlob(ctx context.Context, path string) (*Document, error) {
	doc, err := rx.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	extra, err := Siblings(path)
	if err != nil {
		return nil, err
	}
	for _, file := range extra {
		tree, err := rx.evaluate(ctx, file, doc)
		if errors.Is(err, ErrNotConfig) {
			rx.logger.Warn().Str("file", file).Msg("skipped, no $CONFIG found")
			continue
		}
		if err != nil {
			return nil, err
		}
		doc.add(file, tree)
	}
	rx.logger.Debug().Strs("files", doc.Files).Int("keys", doc.Tree.Len()).Msg("config loaded")
	return doc, nil
}

// Siblings returns the *.config.php files next to path, sorted, without path itself
func Siblings(path string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.config.php"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", path, err)
	}
	sort.Strings(matches)
	result := make([]string, 0, len(matches))
	for _, match := range matches {
		if filepath.Clean(match) != filepath.Clean(path) {
			result = append(result, match)
		}
	}
	return result, nil
}

func (rx *Document) add(file string, tree *literal.Map) {
	rx.Files = append(rx.Files, file)
	for _, entry := range tree.Entries() {
		rx.origin[entry.Key.String()] = file
	}
	if rx.Tree == nil {
		rx.Tree = tree
		return
	}
	rx.Tree = rx.Tree.Merge(tree)
}

// evaluate one file, with the php fallback if enabled
func (rx *Loader) evaluate(ctx context.Context, path string, doc *Document) (*literal.Map, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	doc.Source[path] = src

	tree, err := phpliteral.ParseConfig(src)
	switch {
	case errors.Is(err, phpliteral.ErrNoConfig):
		return nil, fmt.Errorf("%w: %s", ErrNotConfig, path)
	case err != nil:
		if !rx.phpFallback {
			return nil, fmt.Errorf("%w: %s: %w", ErrSyntax, path, err)
		}
		rx.logger.Info().Err(err).Str("file", path).Msg("literal evaluation failed, running php")
		return rx.php.Evaluate(ctx, path)
	}

	if rx.phpFallback && HasUnresolved(tree) {
		rx.logger.Info().Str("file", path).Msg("config holds expressions, running php")
		return rx.php.Evaluate(ctx, path)
	}
	return tree, nil
}

// HasUnresolved returns true if any value in the tree could not be evaluated statically,
// expressions and constants outside the known class constants
func HasUnresolved(tree *literal.Map) bool {
	for _, entry := range tree.Entries() {
		switch entry.Value.Kind {
		case literal.KindUnresolved:
			return true
		case literal.KindConstant:
			if _, ok := extract.ResolveName(entry.Value.Str); !ok {
				return true
			}
		case literal.KindMap:
			if HasUnresolved(entry.Value.Map) {
				return true
			}
		}
	}
	return false
}
