package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

const configFileName = ".blocksearch.kdl"

// Load reads configPath (an explicit path, or configFileName under
// projectRoot when empty) and overlays it onto Default(). A missing file is
// not an error: the defaults apply unmodified, matching the teacher's
// LoadKDL "no config found, use defaults" behavior.
func Load(projectRoot, configPath string) (*Config, error) {
	if configPath == "" {
		configPath = filepath.Join(projectRoot, configFileName)
	}

	cfg := Default()
	cfg.Project.Root = projectRoot

	content, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configPath, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configPath, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				if nodeName(cn) == "root" {
					if s, ok := firstStringArg(cn); ok {
						cfg.Project.Root = s
					}
				}
			}
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_results":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxResults = v
					}
				case "max_bytes":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxBytes = v
					}
				case "max_tokens":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxTokens = v
					}
				case "reranker":
					if s, ok := firstStringArg(cn); ok {
						cfg.Search.Reranker = s
					}
				case "merge_threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MergeThreshold = v
					}
				case "allow_tests":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.AllowTests = b
					}
				case "exact":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.Exact = b
					}
				}
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}
