package engine

import (
	"regexp"
	"sync"
)

// regexCache compiles regular expressions once per pattern string and
// shares them across every evaluation in the process, as the design
// notes require: the cache is process-wide, keyed only by pattern text,
// and internally synchronized so concurrent Evaluate calls never race.
var regexCache = struct {
	mu    sync.RWMutex
	byPat map[string]*regexp.Regexp
}{byPat: make(map[string]*regexp.Regexp)}

// compileRegex returns a compiled pattern, reusing a cached one when
// present. A pattern that fails to compile is cached as nil so repeated
// lookups don't re-attempt compilation; callers treat nil as "no match".
func compileRegex(pattern string) *regexp.Regexp {
	regexCache.mu.RLock()
	re, ok := regexCache.byPat[pattern]
	regexCache.mu.RUnlock()
	if ok {
		return re
	}

	compiled, err := regexp.Compile(pattern)
	regexCache.mu.Lock()
	if err != nil {
		regexCache.byPat[pattern] = nil
	} else {
		regexCache.byPat[pattern] = compiled
	}
	regexCache.mu.Unlock()

	if err != nil {
		return nil
	}
	return compiled
}
