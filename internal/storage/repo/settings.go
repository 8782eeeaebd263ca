package repo

import (
	"context"
	"time"

	"raider/internal/storage/model"

	"gorm.io/gorm"
)

// SettingsRepo 设置仓库
type SettingsRepo struct {
	BaseRepository[model.Setting]
}

// NewSettingsRepo 创建设置仓库实例
func NewSettingsRepo(db *gorm.DB) *SettingsRepo {
	return &SettingsRepo{
		BaseRepository: *NewBaseRepository[model.Setting](db),
	}
}

// Get 获取设置值
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var setting model.Setting
	result := r.Db.WithContext(ctx).Where("key = ?", key).First(&setting)
	if result.Error != nil {
		return "", result.Error
	}
	return setting.Value, nil
}

// GetWithDefault 获取设置值，不存在时返回默认值
func (r *SettingsRepo) GetWithDefault(ctx context.Context, key, defaultValue string) string {
	val, err := r.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	return val
}

// Set 设置值（存在则更新，不存在则创建）
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	setting := model.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.Db.WithContext(ctx).Save(&setting).Error
}

// DeleteByKey 根据 key 删除设置
func (r *SettingsRepo) DeleteByKey(ctx context.Context, key string) error {
	return r.Db.WithContext(ctx).Delete(&model.Setting{}, "key = ?", key).Error
}

// GetAll 获取所有设置
func (r *SettingsRepo) GetAll(ctx context.Context) (map[string]string, error) {
	var settings []model.Setting
	if err := r.Db.WithContext(ctx).Find(&settings).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, s := range settings {
		result[s.Key] = s.Value
	}
	return result, nil
}

// SetMultiple 批量设置
func (r *SettingsRepo) SetMultiple(ctx context.Context, kvs map[string]string) error {
	return r.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for key, value := range kvs {
			setting := model.Setting{
				Key:       key,
				Value:     value,
				UpdatedAt: now,
			}
			if err := tx.Save(&setting).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetAllWithDefaults 获取所有设置，缺失项用默认值补齐
func (r *SettingsRepo) GetAllWithDefaults(ctx context.Context, defaults map[string]string) (map[string]string, error) {
	stored, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(defaults))
	for key, value := range defaults {
		result[key] = value
	}
	for key, value := range stored {
		result[key] = value
	}
	return result, nil
}

// GetTheme 获取主题
func (r *SettingsRepo) GetTheme(ctx context.Context) string {
	return r.GetWithDefault(ctx, model.SettingKeyTheme, "system")
}

// SetTheme 设置主题
func (r *SettingsRepo) SetTheme(ctx context.Context, theme string) error {
	return r.Set(ctx, model.SettingKeyTheme, theme)
}

// GetConcurrency 获取攻击并发数设置
func (r *SettingsRepo) GetConcurrency(ctx context.Context) string {
	return r.GetWithDefault(ctx, model.SettingKeyConcurrency, "20")
}

// SetConcurrency 设置攻击并发数
func (r *SettingsRepo) SetConcurrency(ctx context.Context, value string) error {
	return r.Set(ctx, model.SettingKeyConcurrency, value)
}

// GetRequestTimeout 获取请求超时秒数设置
func (r *SettingsRepo) GetRequestTimeout(ctx context.Context) string {
	return r.GetWithDefault(ctx, model.SettingKeyRequestTimeout, "30")
}

// GetFollowRedirects 获取是否跟随重定向
func (r *SettingsRepo) GetFollowRedirects(ctx context.Context) bool {
	return r.GetWithDefault(ctx, model.SettingKeyFollowRedirects, "false") == "true"
}
