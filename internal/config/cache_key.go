package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionLockKey returns the lease key serializing writers for one access code.
func (r *CacheKeyStruct) SessionLockKey(accessCode string) string {
	return fmt.Sprintf("session:%s:lock", accessCode)
}

// SettingKey returns the cache key mirroring one app_settings row.
func (r *CacheKeyStruct) SettingKey(key string) string {
	return fmt.Sprintf("setting:%s", key)
}

var CacheKey = NewCacheKeyStruct()
