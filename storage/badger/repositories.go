package badger

import "errors"

// Repositories bundles the repositories that share one Backend.
type Repositories struct {
	Backend   *Backend
	Chunks    *ChunkRepository
	Concepts  *ConceptRepository
	Documents *DocumentRepository
}

// OpenRepositories opens the database in dir and creates every repository on it.
func OpenRepositories(dir string) (*Repositories, error) {
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, err
	}
	return newRepositories(backend)
}

func newRepositories(backend *Backend) (*Repositories, error) {
	chunks, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	concepts, err := NewConceptRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	documents, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &Repositories{
		Backend:   backend,
		Chunks:    chunks,
		Concepts:  concepts,
		Documents: documents,
	}, nil
}

// Close closes every repository and then the backend.
func (r *Repositories) Close() error {
	return errors.Join(
		r.Chunks.Close(),
		r.Concepts.Close(),
		r.Documents.Close(),
		r.Backend.Close(),
	)
}
