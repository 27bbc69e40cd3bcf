package artifact

import "errors"

var (
	// ErrArtifactNotFound means the artifact path does not resolve to a regular file.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrArtifactCorrupt means the file exists but is not a valid artifact document.
	ErrArtifactCorrupt = errors.New("artifact corrupt")
	// ErrFeatureMismatch means an input matrix does not have the artifact's feature count.
	ErrFeatureMismatch = errors.New("feature count mismatch")
)
