package placeholder

import "sync"

type formatted struct {
	normalized string
	args       []string
}

var formatCache = &struct {
	sync.RWMutex
	entries map[string]formatted
}{
	entries: make(map[string]formatted),
}

// maxCacheEntries bounds the memo; the cache is dropped wholesale when full.
const maxCacheEntries = 4096

// FormatCached is Format with memoization, for hosts that see the same
// templates repeatedly. The returned slice is a private copy.
func FormatCached(text string) (string, []string) {
	formatCache.RLock()
	cached, ok := formatCache.entries[text]
	formatCache.RUnlock()
	if ok {
		return cached.normalized, copyArgs(cached.args)
	}

	normalized, args := Format(text)

	formatCache.Lock()
	if len(formatCache.entries) >= maxCacheEntries {
		formatCache.entries = make(map[string]formatted)
	}
	formatCache.entries[text] = formatted{normalized: normalized, args: args}
	formatCache.Unlock()

	return normalized, copyArgs(args)
}

func copyArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	return out
}

// ClearCache empties the FormatCached memo.
func ClearCache() {
	formatCache.Lock()
	formatCache.entries = make(map[string]formatted)
	formatCache.Unlock()
}
