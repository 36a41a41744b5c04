package infrahub

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// StartPeriodicRefresh starts re-fetching cached branch schemas at the given
// interval. Long-running servers pick up schema changes (new kinds, new
// attributes) without a restart.
func (c *Client) StartPeriodicRefresh(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %v", interval)
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.refreshTicker != nil {
		return fmt.Errorf("periodic schema refresh is already running")
	}

	c.refreshTicker = time.NewTicker(interval)
	c.refreshStop = make(chan struct{})

	go func(ticker *time.Ticker, stop chan struct{}) {
		for {
			select {
			case <-ticker.C:
				c.refreshCachedBranches()
			case <-stop:
				return
			}
		}
	}(c.refreshTicker, c.refreshStop)

	return nil
}

// StopPeriodicRefresh stops the periodic schema refresh
func (c *Client) StopPeriodicRefresh() error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.refreshTicker == nil {
		return fmt.Errorf("periodic schema refresh is not running")
	}

	c.refreshTicker.Stop()
	close(c.refreshStop)
	c.refreshTicker = nil
	c.refreshStop = nil
	return nil
}

// IsRefreshing reports whether the periodic schema refresh is running
func (c *Client) IsRefreshing() bool {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refreshTicker != nil
}

// refreshCachedBranches re-fetches the schema for every branch currently in
// the cache. A failed fetch keeps the previous cache entry.
func (c *Client) refreshCachedBranches() {
	c.mu.RLock()
	branches := make([]string, 0, len(c.schemaCache))
	for branch := range c.schemaCache {
		branches = append(branches, branch)
	}
	c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, branch := range branches {
		if _, err := c.fetchSchemas(ctx, branch); err != nil {
			c.logger.Warn("schema refresh failed, keeping cached schemas",
				zap.String("branch", branch), zap.Error(err))
		}
	}
}
