package tracker

import (
	"context"
	"testing"
	"time"

	"raider/internal/logger"
	"raider/pkg/domain"
)

// TestRegisterAndCancel 测试登记与取消
func TestRegisterAndCancel(t *testing.T) {
	tr := New(time.Minute, logger.Nop())
	defer tr.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	tr.Register("attack-1", "tab-1", cancel)

	if !tr.Running("tab-1") {
		t.Error("登记后应查询到运行中的攻击")
	}

	if !tr.Cancel("attack-1") {
		t.Error("取消已登记的攻击应返回 true")
	}
	select {
	case <-ctx.Done():
	default:
		t.Error("取消应触发上下文取消")
	}

	if tr.Cancel("attack-1") {
		t.Error("重复取消应返回 false")
	}
	if tr.Running("tab-1") {
		t.Error("取消后不应再查询到运行中的攻击")
	}
}

// TestCancelByTab 测试按标签页批量取消
func TestCancelByTab(t *testing.T) {
	tr := New(time.Minute, logger.Nop())
	defer tr.Stop()

	_, cancel1 := context.WithCancel(context.Background())
	_, cancel2 := context.WithCancel(context.Background())
	_, cancel3 := context.WithCancel(context.Background())
	tr.Register("a1", "tab-1", cancel1)
	tr.Register("a2", "tab-1", cancel2)
	tr.Register("a3", "tab-2", cancel3)

	if got := tr.CancelByTab("tab-1"); got != 2 {
		t.Errorf("预期取消 2 个攻击，实际 %d", got)
	}
	if tr.Running("tab-1") {
		t.Error("tab-1 上不应再有运行中的攻击")
	}
	if !tr.Running("tab-2") {
		t.Error("tab-2 上的攻击不应被波及")
	}
}

// TestDone 测试正常结束注销不触发取消
func TestDone(t *testing.T) {
	tr := New(time.Minute, logger.Nop())
	defer tr.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr.Register("attack-1", domain.TabID("tab-1"), cancel)

	tr.Done("attack-1")

	select {
	case <-ctx.Done():
		t.Error("正常结束注销不应触发取消")
	default:
	}
	if tr.Running("tab-1") {
		t.Error("注销后不应再查询到运行中的攻击")
	}
}

// TestStop 测试停止时取消全部在途攻击
func TestStop(t *testing.T) {
	tr := New(time.Minute, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	tr.Register("attack-1", "tab-1", cancel)

	tr.Stop()

	select {
	case <-ctx.Done():
	default:
		t.Error("停止注册表应取消全部在途攻击")
	}

	// 重复停止应安全
	tr.Stop()
}
