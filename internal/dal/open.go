package dal

import (
	"fmt"
	"strings"
)

// Open selects a store implementation by driver name
func Open(driver, dsn string) (DraftDAL, error) {
	switch strings.ToLower(driver) {
	case "", "memory":
		return NewMemoryDAL(), nil
	case "sqlite", "sqlite3":
		if dsn == "" {
			dsn = "draft.db"
		}
		return NewSQLiteDAL(dsn)
	case "postgres", "postgresql":
		if dsn == "" {
			return nil, fmt.Errorf("postgres driver requires DATABASE_URL")
		}
		return NewPostgresDAL(dsn)
	case "redis":
		if dsn == "" {
			return nil, fmt.Errorf("redis driver requires REDIS_URL")
		}
		return NewRedisDAL(dsn)
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
}
