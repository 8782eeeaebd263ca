package repo

import (
	"context"
	"errors"
	"time"

	"raider/internal/storage/model"

	"gorm.io/gorm"
)

// 界面状态的归属模块
const (
	StateModuleIntruder = "intruder"
	StateModuleRepeater = "repeater"
	StateModuleDecoder  = "decoder"
)

// 界面状态的种类
const (
	StateKindTabs   = "tabs"
	StateKindGroups = "groups"
)

// UIStateRepo 界面状态仓库。标签页与分组的快照按 "<module>:<kind>"
// 这样的确定性键存取，启动时还原，变更时整体覆盖。
type UIStateRepo struct {
	BaseRepository[model.UIStateRecord]
}

// NewUIStateRepo 创建界面状态仓库实例
func NewUIStateRepo(db *gorm.DB) *UIStateRepo {
	return &UIStateRepo{
		BaseRepository: *NewBaseRepository[model.UIStateRecord](db),
	}
}

// stateKey 拼装存取键
func stateKey(module, kind string) string {
	return module + ":" + kind
}

// Save 保存一份状态快照（整体覆盖）
func (r *UIStateRepo) Save(ctx context.Context, module, kind, stateJSON string) error {
	record := model.UIStateRecord{
		Key:       stateKey(module, kind),
		StateJSON: stateJSON,
		UpdatedAt: time.Now(),
	}
	return r.Db.WithContext(ctx).Save(&record).Error
}

// Load 读取一份状态快照。没有保存过时返回空串，不算错误。
func (r *UIStateRepo) Load(ctx context.Context, module, kind string) (string, error) {
	var record model.UIStateRecord
	result := r.Db.WithContext(ctx).Where("key = ?", stateKey(module, kind)).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}
	return record.StateJSON, nil
}

// Clear 删除指定模块的全部状态快照
func (r *UIStateRepo) Clear(ctx context.Context, module string) error {
	return r.Db.WithContext(ctx).
		Where("key LIKE ?", module+":%").
		Delete(&model.UIStateRecord{}).Error
}
