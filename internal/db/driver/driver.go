// Package driver opens a db.Store by driver name.
package driver

import (
	"fmt"

	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/umlsdex/internal/db/redis"
	dbValkey "github.com/kailas-cloud/umlsdex/internal/db/valkey"
)

// Driver names.
const (
	Redis  = "redis"
	Valkey = "valkey"
	Memory = "memory"
)

// Open creates a store for the named driver. Memory ignores cfg.
func Open(name string, cfg dbRedis.Config) (db.Store, error) {
	switch name {
	case Redis:
		s, err := dbRedis.NewStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	case Valkey:
		s, err := dbValkey.NewStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("valkey store: %w", err)
		}
		return s, nil
	case Memory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", name)
	}
}
