package inference

import (
	"errors"

	"github.com/iwvelando/instax-forecast/internal/artifact"
)

var (
	// ErrArtifactNotFound is returned by LoadArtifacts when an artifact file is missing.
	ErrArtifactNotFound = artifact.ErrArtifactNotFound
	// ErrArtifactCorrupt is returned by LoadArtifacts when an artifact file cannot be decoded.
	ErrArtifactCorrupt = artifact.ErrArtifactCorrupt
	// ErrInvalidInput means a feature value lies outside its domain.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTransform means the scaler rejected the feature vector.
	ErrTransform = errors.New("feature transform failed")
	// ErrPrediction means the model failed or produced an unusable value.
	ErrPrediction = errors.New("prediction failed")
)
