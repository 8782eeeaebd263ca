package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestSubmitWait 测试阻塞提交的任务全部执行
func TestSubmitWait(t *testing.T) {
	p := New(4, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	var done int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		if err := p.SubmitWait(ctx, func() {
			atomic.AddInt32(&done, 1)
			wg.Done()
		}); err != nil {
			t.Fatalf("提交失败: %v", err)
		}
	}
	wg.Wait()

	if got := atomic.LoadInt32(&done); got != 100 {
		t.Errorf("预期执行 100 个任务，实际 %d", got)
	}
}

// TestSubmitWaitCancel 测试队列满时取消上下文可解除阻塞
func TestSubmitWaitCancel(t *testing.T) {
	p := New(1, 1)
	// 不启动 worker，队列只能容纳 1 个任务
	ctx, cancel := context.WithCancel(context.Background())

	if err := p.SubmitWait(ctx, func() {}); err != nil {
		t.Fatalf("首次提交不应阻塞: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.SubmitWait(ctx, func() {})
	}()
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("预期 context.Canceled，实际 %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("取消上下文后提交应立即返回")
	}
}

// TestSubmitDrop 测试非阻塞提交在队列满时丢弃并计数
func TestSubmitDrop(t *testing.T) {
	p := New(1, 2)
	// 不启动 worker，让队列填满

	if !p.Submit(func() {}) || !p.Submit(func() {}) {
		t.Fatal("队列未满时提交应成功")
	}
	if p.Submit(func() {}) {
		t.Error("队列已满时提交应返回 false")
	}

	_, _, submit, drop := p.Stats()
	if submit != 3 || drop != 1 {
		t.Errorf("预期提交 3 丢弃 1，实际提交 %d 丢弃 %d", submit, drop)
	}
}

// TestPassthrough 测试未启用并发限制的直通池
func TestPassthrough(t *testing.T) {
	p := New(0, 0)
	if p.IsEnabled() {
		t.Error("size 为 0 时不应启用并发限制")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	if !p.Submit(func() { wg.Done() }) {
		t.Error("直通池提交应始终成功")
	}
	wg.Wait()
}
