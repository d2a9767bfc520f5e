package structure

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// tsAdapter is a tree-sitter-backed Adapter for one language. Parsers are
// pooled per language since a tree_sitter.Parser is not safe for concurrent
// Parse calls, mirroring the per-extension parser map the structural parser
// this is adapted from keeps, simplified to one pool instead of one parser
// reused across goroutines under a mutex.
type tsAdapter struct {
	pool       sync.Pool
	blockKinds map[string]string // tree-sitter node kind -> reported block kind
}

func newTSAdapter(language *tree_sitter.Language, blockKinds map[string]string) *tsAdapter {
	return &tsAdapter{
		pool: sync.Pool{
			New: func() interface{} {
				p := tree_sitter.NewParser()
				_ = p.SetLanguage(language)
				return p
			},
		},
		blockKinds: blockKinds,
	}
}

// ParseBlocks walks the parse tree collecting every node whose kind is a
// recognized block type. CGO parsing can panic on malformed input; recover
// and surface a LanguageParseError-shaped failure instead of crashing the
// whole invocation, per §7.
func (a *tsAdapter) ParseBlocks(content []byte) (blocks []BlockRange, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tree-sitter panic: %v", r)
		}
	}()

	parserIface := a.pool.Get()
	parser, ok := parserIface.(*tree_sitter.Parser)
	if !ok || parser == nil {
		return nil, fmt.Errorf("no parser available")
	}
	defer a.pool.Put(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse returned nil tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, nil
	}

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if label, ok := a.blockKinds[n.Kind()]; ok {
			blocks = append(blocks, BlockRange{
				StartLine: int(n.StartPosition().Row) + 1,
				EndLine:   int(n.EndPosition().Row) + 1,
				Kind:      label,
			})
		}
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)

	return blocks, nil
}

var tokenRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Tokenize splits identifiers out of source text, lowercases them, and splits
// snake_case compounds on '_'; camelCase identifiers are not split (so
// "ConnectToDatabase" yields "connecttodatabase"). For use by the
// ranker's term-frequency statistics. Shared by every adapter: ranking does
// not need language-specific tokenization rules.
func Tokenize(text string) []string {
	var out []string
	for _, word := range tokenRe.FindAllString(text, -1) {
		out = append(out, splitCompoundWord(strings.ToLower(word))...)
	}
	return out
}

func splitCompoundWord(word string) []string {
	parts := strings.Split(word, "_")
	var out []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (a *tsAdapter) Tokenize(text string) []string { return Tokenize(text) }
