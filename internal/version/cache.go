package version

import lru "github.com/hashicorp/golang-lru/v2"

// parseCacheSize bounds the literal -> Version cache. Manifests repeat a
// small set of literals across constraints, checks, and diffs; 4096 covers
// any realistic manifest many times over.
const parseCacheSize = 4096

var parseCache *lru.Cache[string, Version]

func init() {
	// Only errors on non-positive size.
	parseCache, _ = lru.New[string, Version](parseCacheSize)
}

func cacheGet(literal string) (Version, bool) {
	return parseCache.Get(literal)
}

func cachePut(literal string, v Version) {
	parseCache.Add(literal, v)
}
