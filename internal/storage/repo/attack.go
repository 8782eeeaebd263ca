package repo

import (
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"raider/internal/storage/model"
	"raider/pkg/errx"

	"gorm.io/gorm"
)

// AttackRepo 攻击历史仓库。写入走缓冲与后台协程批量落库，
// 攻击结束时的大结果集不会阻塞调用方。
type AttackRepo struct {
	BaseRepository[model.AttackRecord]
	buffer    []model.AttackRecord
	bufferMu  sync.Mutex
	batchSize int
	flushCh   chan struct{}
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewAttackRepo 创建攻击历史仓库实例
func NewAttackRepo(db *gorm.DB) *AttackRepo {
	r := &AttackRepo{
		BaseRepository: *NewBaseRepository[model.AttackRecord](db),
		buffer:         make([]model.AttackRecord, 0, 16),
		batchSize:      8,
		flushCh:        make(chan struct{}, 1),
		stopCh:         make(chan struct{}),
	}
	r.wg.Add(1)
	go r.asyncWriter()
	return r
}

// asyncWriter 异步批量写入协程
func (r *AttackRepo) asyncWriter() {
	defer r.wg.Done()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			// 停止前刷新剩余数据
			r.flush()
			return
		case <-ticker.C:
			r.flush()
		case <-r.flushCh:
			r.flush()
		}
	}
}

// flush 刷新缓冲区到数据库
func (r *AttackRepo) flush() {
	r.bufferMu.Lock()
	if len(r.buffer) == 0 {
		r.bufferMu.Unlock()
		return
	}
	toWrite := r.buffer
	r.buffer = make([]model.AttackRecord, 0, 16)
	r.bufferMu.Unlock()

	if err := r.Db.CreateInBatches(toWrite, 50).Error; err != nil {
		// 历史写入失败不阻塞攻击流程
		_ = err
	}
}

// Flush 立即刷新缓冲区并等待写入完成
func (r *AttackRepo) Flush() {
	r.flush()
}

// Stop 停止异步写入
func (r *AttackRepo) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

// Record 登记一次攻击（异步写入数据库）。
// ResultsJSON 传入裸结果数组，这里统一包一层带元数据的信封。
func (r *AttackRepo) Record(rec model.AttackRecord) {
	rec.ResultsJSON = wrapResults(rec)
	rec.CreatedAt = time.Now()

	r.bufferMu.Lock()
	r.buffer = append(r.buffer, rec)
	needFlush := len(r.buffer) >= r.batchSize
	r.bufferMu.Unlock()

	if needFlush {
		select {
		case r.flushCh <- struct{}{}:
		default:
		}
	}
}

// wrapResults 把裸结果数组包进带元数据的信封
func wrapResults(rec model.AttackRecord) string {
	results := rec.ResultsJSON
	if !gjson.Valid(results) || !gjson.Parse(results).IsArray() {
		results = "[]"
	}
	envelope, _ := sjson.Set(`{}`, "attackId", rec.AttackID)
	envelope, _ = sjson.Set(envelope, "attackType", rec.AttackType)
	envelope, _ = sjson.Set(envelope, "savedAt", time.Now().UnixMilli())
	envelope, _ = sjson.SetRaw(envelope, "results", results)
	return envelope
}

// Results 从记录的信封中取回裸结果数组
func Results(rec *model.AttackRecord) string {
	raw := gjson.Get(rec.ResultsJSON, "results")
	if !raw.IsArray() {
		return "[]"
	}
	return raw.Raw
}

// AttackQueryOptions 历史查询选项
type AttackQueryOptions struct {
	TabID      string
	AttackType string
	TargetURL  string // 模糊匹配
	StartTime  int64
	EndTime    int64
	Offset     int
	Limit      int
}

// Query 查询攻击历史，按开始时间倒序返回
func (r *AttackRepo) Query(opts AttackQueryOptions) ([]model.AttackRecord, int64, error) {
	query := r.Db.Model(&model.AttackRecord{})

	if opts.TabID != "" {
		query = query.Where("tab_id = ?", opts.TabID)
	}
	if opts.AttackType != "" {
		query = query.Where("attack_type = ?", opts.AttackType)
	}
	if opts.TargetURL != "" {
		query = query.Where("target_url LIKE ?", "%"+opts.TargetURL+"%")
	}
	if opts.StartTime > 0 {
		query = query.Where("start_time >= ?", opts.StartTime)
	}
	if opts.EndTime > 0 {
		query = query.Where("start_time <= ?", opts.EndTime)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errx.Wrap(errx.CodeDatabase, err, "统计攻击历史失败")
	}

	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if opts.Limit > 1000 {
		opts.Limit = 1000
	}

	var records []model.AttackRecord
	err := query.Order("start_time DESC").
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, errx.Wrap(errx.CodeDatabase, err, "查询攻击历史失败")
	}

	return records, total, nil
}

// DeleteByTab 删除指定标签页的攻击历史
func (r *AttackRepo) DeleteByTab(tabID string) error {
	return r.Db.Where("tab_id = ?", tabID).Delete(&model.AttackRecord{}).Error
}

// CleanupOld 根据保留天数清理旧记录
func (r *AttackRepo) CleanupOld(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays).UnixMilli()
	result := r.Db.Where("start_time < ?", cutoff).Delete(&model.AttackRecord{})
	if result.Error != nil {
		return 0, errx.Wrap(errx.CodeDatabase, result.Error, "清理攻击历史失败")
	}
	return result.RowsAffected, nil
}

// ClearAll 清空所有攻击历史
func (r *AttackRepo) ClearAll() error {
	return r.Db.Where("1 = 1").Delete(&model.AttackRecord{}).Error
}
