// internal/common/database/health.go
package database

import (
	"context"
	"sort"
	"sync"
)

// Pinger is any backend that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckAll pings every named backend concurrently and returns the failures.
// A nil Pinger is skipped.
func CheckAll(ctx context.Context, backends map[string]Pinger) map[string]error {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures = make(map[string]error)
	)

	for name, p := range backends {
		if p == nil {
			continue
		}
		wg.Add(1)
		go func(name string, p Pinger) {
			defer wg.Done()
			if err := p.Ping(ctx); err != nil {
				mu.Lock()
				failures[name] = err
				mu.Unlock()
			}
		}(name, p)
	}
	wg.Wait()

	return failures
}

// FailureNames returns the sorted names of failed backends.
func FailureNames(failures map[string]error) []string {
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
