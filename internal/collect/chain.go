package collect

import (
	"context"

	"github.com/charmbracelet/log"
)

// Strategy is one named way of fetching items for a topic.
type Strategy[T any] struct {
	Name  string
	Fetch func(ctx context.Context, topic string) ([]T, error)

	// Fallback strategies run only when nothing has been gathered yet.
	Fallback bool
}

// Chain runs strategies in order until Enough items have accumulated.
// A failing strategy is logged and skipped; Run never returns an error.
type Chain[T any] struct {
	Source     string
	Strategies []Strategy[T]
	// Key, when set, drops items already returned by an earlier strategy.
	Key func(T) string
	// Enough is the accumulated count that stops the chain. Zero means the
	// first strategy yielding any item wins.
	Enough int
}

// Run executes the chain for topic.
func (c Chain[T]) Run(ctx context.Context, topic string) []T {
	enough := c.Enough
	if enough <= 0 {
		enough = 1
	}

	var out []T
	seen := make(map[string]struct{})
	for _, s := range c.Strategies {
		if s.Fallback && len(out) > 0 {
			continue
		}
		items, err := s.Fetch(ctx, topic)
		if err != nil {
			log.Warn("Strategy failed", "source", c.Source, "strategy", s.Name, "err", err)
			continue
		}
		log.Debug("Strategy finished", "source", c.Source, "strategy", s.Name, "items", len(items))

		for _, item := range items {
			if c.Key != nil {
				k := c.Key(item)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
			}
			out = append(out, item)
		}
		if len(out) >= enough {
			break
		}
	}
	return out
}
