// Package iocache is for caching parsed logs and keeping run history.
package iocache

import (
	"sync"

	"github.com/huangsam/deadreck/internal/contract"
)

// CacheStoreManager manages the parse cache and run history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	parse        contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetParseStore returns the parse cache CacheStore.
func (mgr *CacheStoreManager) GetParseStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.parse
}

// GetRunStore returns the run history RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
