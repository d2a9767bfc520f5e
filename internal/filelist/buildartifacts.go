package filelist

import (
	"encoding/json"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// wellKnownBuildDirs are directories that, once discovered to belong to a
// project manifest at root, are always excluded even without a matching
// ignore-file rule.
var wellKnownBuildDirs = []string{"node_modules", "dist", "build", "target", "vendor", ".next", "out"}

// detectBuildArtifactDirs inspects package.json, Cargo.toml, and go.mod at
// root and returns the subset of wellKnownBuildDirs relevant to what it
// finds. This supplements ignore-rule discovery (§4.1 rule 1) for projects
// whose manifests don't carry an explicit ignore file.
func detectBuildArtifactDirs(root string) []string {
	var found []string

	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg map[string]interface{}
		if json.Unmarshal(data, &pkg) == nil {
			found = append(found, "node_modules", "dist", "build", ".next")
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, "Cargo.toml")); err == nil {
		var cargo struct {
			Package map[string]interface{} `toml:"package"`
		}
		if toml.Unmarshal(data, &cargo) == nil {
			found = append(found, "target")
		}
	}

	if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
		found = append(found, "vendor")
	}

	return found
}
