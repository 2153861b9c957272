package database

import (
	"sync"

	"irigasi/pkg/config"
	"irigasi/pkg/session"
)

var (
	sessionRegistry     *session.Registry
	sessionRegistryOnce sync.Once
)

// GetSessionRegistry shared redis-backed session registry
func GetSessionRegistry() *session.Registry {
	sessionRegistryOnce.Do(func() {
		cfg := config.GetConfig()
		sessionRegistry = session.NewRegistry(&session.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	})
	return sessionRegistry
}

func CloseSessionRegistry() error {
	if sessionRegistry != nil {
		return sessionRegistry.Close()
	}
	return nil
}
