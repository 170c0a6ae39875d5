package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
	"github.com/sirupsen/logrus"
)

// currentCacheVersion defines the version of the cached SensorLog encoding.
const currentCacheVersion = 1

// LoadLog parses a log file through the parse cache. The cache key covers
// the absolute path, size and modification time, so edited files are parsed again.
// A nil store or a cache failure falls back to parsing.
func LoadLog(ctx context.Context, path string, store contract.CacheStore) (schema.SensorLog, error) {
	if err := ctx.Err(); err != nil {
		return schema.SensorLog{}, err
	}
	if store == nil {
		return ParseLogFile(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return schema.SensorLog{}, err
	}
	key := generateCacheKey(path, info)

	if log := checkCacheHit(store, key); log != nil {
		contract.LogDebug("parse cache hit", logrus.Fields{"file": path})
		return *log, nil
	}
	return parseAndStore(path, store, key)
}

// checkCacheHit attempts to retrieve and validate a cached log.
func checkCacheHit(store contract.CacheStore, key string) *schema.SensorLog {
	value, version, _, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil // Cache miss
	}
	var log schema.SensorLog
	if err := json.Unmarshal(value, &log); err != nil {
		return nil // Cache miss (corrupt entry)
	}
	if log.Streams == nil {
		log.Streams = make(map[schema.StreamKind]schema.TimeSeries)
	}
	return &log
}

// parseAndStore parses the file and stores it in the cache.
func parseAndStore(path string, store contract.CacheStore, key string) (schema.SensorLog, error) {
	log, err := ParseLogFile(path)
	if err != nil {
		return schema.SensorLog{}, err
	}
	data, err := json.Marshal(log)
	if err != nil {
		return log, nil
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("cannot store parsed log in cache", err)
	}
	return log, nil
}

// generateCacheKey creates a unique key for a file's current contents.
func generateCacheKey(path string, info os.FileInfo) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano()))
	return hex.EncodeToString(sum[:])
}
