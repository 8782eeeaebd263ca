package repo

import (
	"context"
	"testing"
)

// TestUIStateSaveLoad 测试状态快照的保存与还原
func TestUIStateSaveLoad(t *testing.T) {
	r := NewUIStateRepo(newTestDB(t))
	ctx := context.Background()

	state := `[{"id":"t1","name":"Attack 1","isActive":true}]`
	if err := r.Save(ctx, StateModuleIntruder, StateKindTabs, state); err != nil {
		t.Fatalf("保存状态失败: %v", err)
	}

	got, err := r.Load(ctx, StateModuleIntruder, StateKindTabs)
	if err != nil {
		t.Fatalf("读取状态失败: %v", err)
	}
	if got != state {
		t.Errorf("预期 %q，实际 %q", state, got)
	}

	// 整体覆盖
	if err := r.Save(ctx, StateModuleIntruder, StateKindTabs, `[]`); err != nil {
		t.Fatalf("覆盖状态失败: %v", err)
	}
	if got, _ := r.Load(ctx, StateModuleIntruder, StateKindTabs); got != `[]` {
		t.Errorf("覆盖后预期 []，实际 %q", got)
	}
}

// TestUIStateLoadMissing 测试未保存过的状态返回空串
func TestUIStateLoadMissing(t *testing.T) {
	r := NewUIStateRepo(newTestDB(t))

	got, err := r.Load(context.Background(), StateModuleDecoder, StateKindTabs)
	if err != nil {
		t.Fatalf("读取缺失状态不应报错: %v", err)
	}
	if got != "" {
		t.Errorf("缺失状态应返回空串，实际 %q", got)
	}
}

// TestUIStateModuleIsolation 测试不同模块的状态互不干扰
func TestUIStateModuleIsolation(t *testing.T) {
	r := NewUIStateRepo(newTestDB(t))
	ctx := context.Background()

	if err := r.Save(ctx, StateModuleIntruder, StateKindTabs, `["a"]`); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if err := r.Save(ctx, StateModuleRepeater, StateKindTabs, `["b"]`); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if err := r.Save(ctx, StateModuleIntruder, StateKindGroups, `["g"]`); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	if got, _ := r.Load(ctx, StateModuleRepeater, StateKindTabs); got != `["b"]` {
		t.Errorf("repeater 状态被污染: %q", got)
	}

	// 清理只影响指定模块
	if err := r.Clear(ctx, StateModuleIntruder); err != nil {
		t.Fatalf("清理失败: %v", err)
	}
	if got, _ := r.Load(ctx, StateModuleIntruder, StateKindTabs); got != "" {
		t.Error("intruder 状态应被清理")
	}
	if got, _ := r.Load(ctx, StateModuleRepeater, StateKindTabs); got != `["b"]` {
		t.Error("清理不应波及其他模块")
	}
}
