package testsupport

import (
	"context"
	"testing"

	"trimscript/internal/config"
	"trimscript/internal/project"
)

// MustOpenStore opens a project.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *project.Store {
	t.Helper()

	store, err := project.Open(cfg)
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewProject stores SampleTranscript under sourcePath.
func NewProject(t testing.TB, store *project.Store, sourcePath string) *project.Loaded {
	t.Helper()

	loaded, err := store.Create(context.Background(), sourcePath, "en", SampleTranscript(t))
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return loaded
}
