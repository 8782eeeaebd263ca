package repo

import (
	"context"
	"testing"
)

// TestSettingsSetGet 测试设置的写入与读取
func TestSettingsSetGet(t *testing.T) {
	r := NewSettingsRepo(newTestDB(t))
	ctx := context.Background()

	if err := r.Set(ctx, "language", "zh"); err != nil {
		t.Fatalf("写入设置失败: %v", err)
	}

	got, err := r.Get(ctx, "language")
	if err != nil {
		t.Fatalf("读取设置失败: %v", err)
	}
	if got != "zh" {
		t.Errorf("预期 zh，实际 %q", got)
	}

	// 覆盖写入
	if err := r.Set(ctx, "language", "en"); err != nil {
		t.Fatalf("覆盖设置失败: %v", err)
	}
	if got, _ := r.Get(ctx, "language"); got != "en" {
		t.Errorf("预期 en，实际 %q", got)
	}
}

// TestSettingsDefaults 测试未设置时的默认值
func TestSettingsDefaults(t *testing.T) {
	r := NewSettingsRepo(newTestDB(t))
	ctx := context.Background()

	if got := r.GetTheme(ctx); got != "system" {
		t.Errorf("预期默认主题 system，实际 %q", got)
	}
	if got := r.GetConcurrency(ctx); got != "20" {
		t.Errorf("预期默认并发 20，实际 %q", got)
	}
	if r.GetFollowRedirects(ctx) {
		t.Error("默认不应跟随重定向")
	}
	if got := r.GetWithDefault(ctx, "missing", "fallback"); got != "fallback" {
		t.Errorf("预期 fallback，实际 %q", got)
	}
}

// TestSettingsGetAll 测试批量写入与全量读取
func TestSettingsGetAll(t *testing.T) {
	r := NewSettingsRepo(newTestDB(t))
	ctx := context.Background()

	if err := r.SetMultiple(ctx, map[string]string{
		"theme":    "dark",
		"language": "zh",
	}); err != nil {
		t.Fatalf("批量写入失败: %v", err)
	}

	all, err := r.GetAll(ctx)
	if err != nil {
		t.Fatalf("全量读取失败: %v", err)
	}
	if len(all) != 2 || all["theme"] != "dark" || all["language"] != "zh" {
		t.Errorf("全量读取结果不符: %v", all)
	}
}

// TestSettingsDelete 测试删除设置
func TestSettingsDelete(t *testing.T) {
	r := NewSettingsRepo(newTestDB(t))
	ctx := context.Background()

	if err := r.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("写入设置失败: %v", err)
	}
	if err := r.DeleteByKey(ctx, "theme"); err != nil {
		t.Fatalf("删除设置失败: %v", err)
	}
	if got := r.GetTheme(ctx); got != "system" {
		t.Errorf("删除后应回落默认值，实际 %q", got)
	}
}
