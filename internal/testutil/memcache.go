package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"ops-dashboard/internal/models"
)

// MemCache mirrors the Redis repository: a data version counter, JSON memo
// entries and a per-project cache.
type MemCache struct {
	mu       sync.Mutex
	version  int64
	memo     map[string][]byte
	projects map[int][]byte

	// Err, when set, is returned by every call.
	Err error
}

func NewMemCache() *MemCache {
	return &MemCache{memo: map[string][]byte{}, projects: map[int][]byte{}}
}

func (c *MemCache) DataVersion(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return c.version, nil
}

func (c *MemCache) BumpVersion(_ context.Context, projectIDs ...int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	c.version++
	for _, id := range projectIDs {
		delete(c.projects, id)
	}
	return c.version, nil
}

func (c *MemCache) GetMemo(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return false, c.Err
	}
	data, ok := c.memo[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (c *MemCache) SetMemo(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.memo[key] = data
	return nil
}

// MemoKeys lists the stored memo keys.
func (c *MemCache) MemoKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.memo))
	for k := range c.memo {
		keys = append(keys, k)
	}
	return keys
}

func (c *MemCache) GetProject(_ context.Context, id int) (*models.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	data, ok := c.projects[id]
	if !ok {
		return nil, nil
	}
	var p models.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *MemCache) SetProject(_ context.Context, p *models.Project) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	c.projects[p.ID] = data
	return nil
}
