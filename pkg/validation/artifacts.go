package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateArtifactPaths returns warnings for artifact path settings that are
// legal but probably wrong.
func ValidateArtifactPaths(scalerPath, modelPath string) []string {
	var warnings []string

	if scalerPath != "" && filepath.Clean(scalerPath) == filepath.Clean(modelPath) {
		warnings = append(warnings, fmt.Sprintf("Scaler and model artifacts share the same path (%s)", scalerPath))
	}

	for _, p := range []struct{ kind, path string }{{"scaler", scalerPath}, {"model", modelPath}} {
		if p.path == "" {
			continue
		}
		switch strings.ToLower(filepath.Ext(p.path)) {
		case ".json", ".yaml", ".yml":
		case ".pkl", ".joblib":
			warnings = append(warnings, fmt.Sprintf("The %s artifact '%s' looks like a pickled object; export it to the JSON artifact format first", p.kind, p.path))
		default:
			warnings = append(warnings, fmt.Sprintf("The %s artifact '%s' has an unrecognised extension and will be decoded as JSON", p.kind, p.path))
		}
	}

	return warnings
}
