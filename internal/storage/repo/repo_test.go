package repo

import (
	"testing"

	"raider/internal/storage/db"
	"raider/internal/storage/model"

	"gorm.io/gorm"
)

// newTestDB 创建内存数据库并完成迁移
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.New(db.Options{Name: ":memory:", Prefix: "raider_"})
	if err != nil {
		t.Fatalf("创建内存数据库失败: %v", err)
	}
	if err := db.Migrate(conn, &model.Setting{}, &model.UIStateRecord{}, &model.AttackRecord{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return conn
}
