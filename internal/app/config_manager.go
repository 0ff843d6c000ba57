package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/pkg/common"
	"go.uber.org/zap"
)

const configCacheTTL = 30 * time.Second

// ConfigManager caches sys_config rows and converts values on read.
// Writes go straight to the table and invalidate the cache.
type ConfigManager struct {
	appCtx  DBProvider
	mu      sync.RWMutex
	cache   map[string]string
	loading time.Time
}

func NewConfigManager(appCtx DBProvider) *ConfigManager {
	return &ConfigManager{appCtx: appCtx, cache: map[string]string{}}
}

func (m *ConfigManager) reloadIfStale() {
	m.mu.RLock()
	stale := time.Since(m.loading) > configCacheTTL
	m.mu.RUnlock()
	if !stale {
		return
	}

	var configs []domain.SysConfig
	if err := m.appCtx.DB().Find(&configs).Error; err != nil {
		zap.L().Error("failed to load sys_config", zap.Error(err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]string, len(configs))
	for _, c := range configs {
		m.cache[c.Type+"."+c.Name] = c.Value
	}
	m.loading = time.Now()
}

func (m *ConfigManager) getValue(category, key string) string {
	m.reloadIfStale()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache[category+"."+key]
}

func (m *ConfigManager) GetString(category, key string) string {
	return m.getValue(category, key)
}

func (m *ConfigManager) GetInt64(category, key string) int64 {
	return cast.ToInt64(m.getValue(category, key))
}

func (m *ConfigManager) GetBool(category, key string) bool {
	return cast.ToBool(m.getValue(category, key))
}

// SetValue updates or creates a setting and invalidates the cache
func (m *ConfigManager) SetValue(category, key, value string) error {
	db := m.appCtx.DB()
	var cfg domain.SysConfig
	err := db.Where("type = ? AND name = ?", category, key).First(&cfg).Error
	if err != nil {
		err = db.Create(&domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  category,
			Name:  key,
			Value: value,
		}).Error
	} else {
		err = db.Model(&domain.SysConfig{}).Where("id = ?", cfg.ID).
			Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.loading = time.Time{}
	m.mu.Unlock()
	return nil
}
