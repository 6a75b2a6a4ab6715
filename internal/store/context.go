package store

import (
	"github.com/go-ports/shopctl/internal/atomicfile"
	"github.com/go-ports/shopctl/internal/models"
)

// contextYAML is the on-disk form of a ContextPointer; unset fields are null.
type contextYAML struct {
	Account   *string `yaml:"account"`
	Cluster   *string `yaml:"cluster"`
	Namespace *string `yaml:"namespace"`
}

// LoadContext reads context.yaml. A missing file is an empty pointer.
func LoadContext(path string) (models.ContextPointer, error) {
	var raw contextYAML
	if _, err := atomicfile.LoadYAML(path, &raw); err != nil {
		return models.ContextPointer{}, &models.Error{Kind: models.ErrFileLoad, Path: path, Err: err}
	}
	return models.ContextPointer{
		Account:   deref(raw.Account),
		Cluster:   deref(raw.Cluster),
		Namespace: deref(raw.Namespace),
	}, nil
}

// SaveContext atomically writes p to path.
func SaveContext(path string, p models.ContextPointer) error {
	raw := contextYAML{
		Account:   ref(p.Account),
		Cluster:   ref(p.Cluster),
		Namespace: ref(p.Namespace),
	}
	if err := atomicfile.SaveYAML(path, raw); err != nil {
		return &models.Error{Kind: models.ErrFileUpdate, Path: path, Err: err}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
