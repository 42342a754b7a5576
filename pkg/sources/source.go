// Package sources defines the interface the source-of-truth device feeds
// implement, and a registry of configured feeds.
//
// Example usage:
//
//	feeds := sources.NewSources()
//	feeds.Set(casperClient)
//
//	src, ok := feeds.Get(assets.FeedCasper)
//	if !ok {
//	    return fmt.Errorf("casper feed is not configured")
//	}
//	records, err := src.Fetch(ctx)
package sources

import (
	"context"
	"sort"
	"sync"

	"github.com/agentstation/assetsync/pkg/assets"
)

// Source is a device feed.
type Source interface {
	// Feed names the feed the records come from.
	Feed() assets.Feed

	// Fetch returns a full snapshot of the feed's device records.
	Fetch(ctx context.Context) ([]assets.SourceRecord, error)

	// Cleanup releases any resources (called after all Fetch operations)
	Cleanup() error
}

// Sources is a thread-safe container of configured feeds.
type Sources struct {
	mu      sync.RWMutex
	sources map[assets.Feed]Source
}

// NewSources creates a new Sources instance.
func NewSources() *Sources {
	return &Sources{
		sources: make(map[assets.Feed]Source),
	}
}

// Get returns a source by feed.
func (s *Sources) Get(feed assets.Feed) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, found := s.sources[feed]
	return src, found
}

// Set registers a source under its feed, replacing any previous one.
func (s *Sources) Set(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.Feed()] = src
}

// Delete deletes a source by feed.
func (s *Sources) Delete(feed assets.Feed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, feed)
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// Feeds returns the configured feeds in name order.
func (s *Sources) Feeds() []assets.Feed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feeds := make([]assets.Feed, 0, len(s.sources))
	for feed := range s.sources {
		feeds = append(feeds, feed)
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i] < feeds[j] })
	return feeds
}

// Cleanup calls Cleanup on every source and returns the first error.
func (s *Sources) Cleanup() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var first error
	for _, src := range s.sources {
		if err := src.Cleanup(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
