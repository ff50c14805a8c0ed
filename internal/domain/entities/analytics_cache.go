package entities

import (
	"time"

	"gorm.io/datatypes"
)

// AnalyticsCache existe no schema (e nos backups), mas o cálculo de analytics
// não lê nem grava nesta tabela: cada requisição recalcula tudo.
type AnalyticsCache struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CacheKey  string         `json:"cacheKey" gorm:"column:cache_key;type:varchar(191);uniqueIndex;not null"`
	Payload   datatypes.JSON `json:"payload" gorm:"column:payload"`
	ExpiresAt time.Time      `json:"expiresAt" gorm:"column:expires_at"`
	CreatedAt time.Time      `json:"createdAt" gorm:"column:created_at"`
}

func (AnalyticsCache) TableName() string { return "analytics_cache" }
