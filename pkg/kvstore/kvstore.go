// Package kvstore provides the client-side persistence layer: a small
// key-value contract modelled on browser local storage, with pluggable
// drivers.
//
// Four drivers are available out of the box:
//   - "file"   — one file per key under a root directory (default)
//   - "memory" — process-local map; also the degradation target
//   - "redis"  — shared Redis instance
//   - "sql"    — kv_entries table via GORM (sqlite, postgres, mysql, sqlserver)
//
// Quick start:
//
//	// boot once at startup:
//	kvstore.Connect()
//
//	// default driver
//	kvstore.Put("gebeya_store_v1", data)
//	data, ok, _ := kvstore.Get("gebeya_store_v1")
//
//	// named driver
//	kvstore.Use("redis").Put("token", []byte(tok))
package kvstore

import (
	"fmt"
	"sync"

	"github.com/mestawet/gebeya/config"
)

// Store is the key-value driver interface. Every driver must implement this.
type Store interface {
	// Get returns the value stored under key. The second result reports
	// whether the key was present; an error means the backing store itself
	// failed.
	Get(key string) ([]byte, bool, error)

	// Put writes value under key, overwriting any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Exists reports whether key is present.
	Exists(key string) bool
}

// ─── Manager ──────────────────────────────────────────────────────────────────

var (
	managerMu     sync.RWMutex
	drivers       = map[string]Store{}
	defaultDriver string
)

// Connect boots the manager. Call once at application startup.
// The memory and file drivers are always available; redis and sql are
// booted lazily on first Use so a missing server does not block startup.
func Connect() {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDriver = config.StoreDriver()
	drivers["memory"] = NewMemory()
	drivers["file"] = newFileStore(config.StoreRoot())
}

// Use returns the named driver, booting redis/sql connections on demand.
func Use(name string) Store {
	managerMu.RLock()
	d, ok := drivers[name]
	managerMu.RUnlock()
	if ok {
		return d
	}

	managerMu.Lock()
	defer managerMu.Unlock()
	if d, ok := drivers[name]; ok {
		return d
	}

	var err error
	var booted Store
	switch name {
	case "redis":
		booted, err = newRedisStore()
	case "sql":
		booted, err = newSQLStore()
	default:
		panic(fmt.Sprintf("kvstore: driver %q is not configured", name))
	}
	if err != nil {
		panic(fmt.Sprintf("kvstore: boot %q: %v", name, err))
	}
	drivers[name] = booted
	return booted
}

// Register plugs in a custom Store implementation at boot time.
func Register(name string, s Store) {
	managerMu.Lock()
	drivers[name] = s
	managerMu.Unlock()
}

// Default returns the driver selected by STORE_DRIVER.
func Default() Store {
	managerMu.RLock()
	name := defaultDriver
	managerMu.RUnlock()
	if name == "" {
		Connect()
		managerMu.RLock()
		name = defaultDriver
		managerMu.RUnlock()
	}
	return Use(name)
}

// ─── Default driver helpers ───────────────────────────────────────────────────

// Get reads key from the default driver.
func Get(key string) ([]byte, bool, error) { return Default().Get(key) }

// Put writes key to the default driver.
func Put(key string, value []byte) error { return Default().Put(key, value) }

// Delete removes key from the default driver.
func Delete(key string) error { return Default().Delete(key) }

// Exists reports whether key is present on the default driver.
func Exists(key string) bool { return Default().Exists(key) }
