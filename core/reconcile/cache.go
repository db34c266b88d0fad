package reconcile

import "context"

// TableChecker reports whether a destination table exists.
type TableChecker func(ctx context.Context, key TableKey) (bool, error)

// ExistenceCache memoizes table existence for the duration of one run.
// Each key is checked against the catalog at most once; later lookups are served from memory.
// It is not safe for concurrent use.
type ExistenceCache struct {
	check   TableChecker
	entries map[TableKey]bool

	// lookups counts catalog checks actually performed.
	lookups int
}

// NewExistenceCache returns an empty cache backed by check.
func NewExistenceCache(check TableChecker) *ExistenceCache {
	return &ExistenceCache{
		check:   check,
		entries: make(map[TableKey]bool),
	}
}

// Exists returns whether key names an existing table.
// Errors are returned as-is and not recorded.
func (c *ExistenceCache) Exists(ctx context.Context, key TableKey) (bool, error) {
	if exists, ok := c.entries[key]; ok {
		return exists, nil
	}

	c.lookups++
	exists, err := c.check(ctx, key)
	if err != nil {
		return false, err
	}

	c.entries[key] = exists
	return exists, nil
}

// Lookups returns the number of catalog checks performed so far.
func (c *ExistenceCache) Lookups() int {
	return c.lookups
}
