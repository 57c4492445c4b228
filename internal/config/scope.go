package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ScopeStore serves store-scoped settings such as payment/braintree/kount_id.
//
// The backing file looks like:
//
//	default:
//	  payment:
//	    braintree:
//	      kount_allowed_ips: "10.0.0.0/8"
//	stores:
//	  "1":
//	    payment:
//	      braintree:
//	        kount_id: "100100"
//
// Store values fall back to the default section.
type ScopeStore struct {
	current atomic.Value // holds scopeSnapshot
	log     *zap.Logger
}

type scopeSnapshot struct {
	defaults map[string]string
	stores   map[int64]map[string]string
}

func NewScopeStore(cfg Config, log *zap.Logger) (*ScopeStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	store := &ScopeStore{log: log.Named("config.scope")}

	v := viper.New()
	if cfg.ScopeConfigPath != "" {
		v.SetConfigFile(cfg.ScopeConfigPath)
	} else {
		v.SetConfigName("scope")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/fraudreview")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read scope config: %w", err)
		}
		store.log.Info("scope config not found, using empty settings")
		store.current.Store(emptySnapshot())
		return store, nil
	}

	snap, err := buildSnapshot(v)
	if err != nil {
		return nil, err
	}
	store.current.Store(snap)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := buildSnapshot(v)
		if err != nil {
			store.log.Warn("invalid scope config ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		store.current.Store(updated)
		store.log.Info("scope config reloaded", zap.String("file", e.Name))
	})

	return store, nil
}

// NewStaticScopeStore builds a store from in-memory values, keyed by slash paths.
func NewStaticScopeStore(defaults map[string]string, stores map[int64]map[string]string) *ScopeStore {
	snap := emptySnapshot()
	for k, v := range defaults {
		snap.defaults[normalizePath(k)] = v
	}
	for id, values := range stores {
		scoped := make(map[string]string, len(values))
		for k, v := range values {
			scoped[normalizePath(k)] = v
		}
		snap.stores[id] = scoped
	}
	store := &ScopeStore{log: zap.NewNop()}
	store.current.Store(snap)
	return store
}

// GetValue returns the default-scope value for path, or "" when unset.
func (s *ScopeStore) GetValue(path string) string {
	snap := s.snapshot()
	return snap.defaults[normalizePath(path)]
}

// GetStoreValue returns the store-scope value for path, falling back to the default scope.
func (s *ScopeStore) GetStoreValue(path string, storeID int64) string {
	snap := s.snapshot()
	key := normalizePath(path)
	if scoped, ok := snap.stores[storeID]; ok {
		if value, ok := scoped[key]; ok {
			return value
		}
	}
	return snap.defaults[key]
}

func (s *ScopeStore) snapshot() scopeSnapshot {
	return s.current.Load().(scopeSnapshot)
}

func emptySnapshot() scopeSnapshot {
	return scopeSnapshot{
		defaults: map[string]string{},
		stores:   map[int64]map[string]string{},
	}
}

func buildSnapshot(v *viper.Viper) (scopeSnapshot, error) {
	snap := emptySnapshot()
	snap.defaults = flatten(v.Sub("default"))

	for key := range v.GetStringMap("stores") {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return snap, fmt.Errorf("stores.%s: store id must be numeric", key)
		}
		snap.stores[id] = flatten(v.Sub("stores." + key))
	}
	return snap, nil
}

func flatten(sub *viper.Viper) map[string]string {
	out := map[string]string{}
	if sub == nil {
		return out
	}
	for _, key := range sub.AllKeys() {
		out[key] = sub.GetString(key)
	}
	return out
}

func normalizePath(path string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(path), "/", "."))
}
