package registry

import "github.com/roach88/recordregistry/internal/store"

func openStoreAt(path string) (*store.Store, error) {
	return store.Open(path)
}
