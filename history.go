package autoresearch

import "context"

// Run is what a finished research run leaves behind for the history store.
type Run struct {
	Topic   string
	Report  string
	Queries []string
}

// Archiver persists finished runs. Save returns the identifier of the stored run.
type Archiver interface {
	Save(ctx context.Context, run Run) (int64, error)
}
