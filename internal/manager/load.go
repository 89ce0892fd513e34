package manager

import (
	"github.com/dshills/modhost/internal/cache"
)

// Load creates the module actions, from the cache if it has a fresh entry
// for the module and by discovery otherwise. A discovery refreshes the
// entry. It reports whether the cache was used.
//
// An entry is fresh if its stamp equals stamp and, when names came from
// resources, its language is the module language.
func Load(m *Manager, c *cache.Cache, stamp string) (bool, error) {
	if c != nil {
		if e, ok := c.Get(m.ModuleName()); ok && m.fresh(e, stamp) {
			err := m.LoadCache(e.Records)
			if err == nil {
				if e.Resources {
					m.SetCachedResources()
				}
				m.logger.Debug("Loaded module from cache", "actions", len(e.Records))
				return true, nil
			}
			m.logger.Warn("Discarding module cache", "error", err)
			m.reset()
		}
	}

	err := m.Discover()
	if c != nil {
		c.Set(m.ModuleName(), cache.Entry{
			Stamp:     stamp,
			Language:  m.lang.String(),
			Resources: m.CachedResources(),
			Records:   m.CacheRecords(),
		})
	}
	return false, err
}

func (m *Manager) fresh(e cache.Entry, stamp string) bool {
	if e.Stamp != stamp {
		return false
	}
	return !e.Resources || e.Language == m.lang.String()
}
