// Package tracker 维护运行中攻击的注册表：攻击 ID 到取消函数的映射，
// 附带超时清扫，防止悬挂的攻击占着资源不放。
package tracker

import (
	"context"
	"sync"
	"time"

	"raider/internal/logger"
	"raider/pkg/domain"
)

// Entry 一次运行中攻击的登记信息
type Entry struct {
	ID        domain.AttackID
	TabID     domain.TabID
	StartTime time.Time
	Cancel    context.CancelFunc
}

// Tracker 运行中攻击注册表
type Tracker struct {
	pool    sync.Map
	timeout time.Duration
	log     logger.Logger
	done    chan struct{}
}

// New 创建注册表。timeout 是单次攻击允许的最长运行时间，
// 超时的攻击会被清扫协程强制取消。
func New(timeout time.Duration, l logger.Logger) *Tracker {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	if l == nil {
		l = logger.Nop()
	}
	t := &Tracker{
		timeout: timeout,
		log:     l,
		done:    make(chan struct{}),
	}
	go t.sweepLoop()
	return t
}

// Register 登记一次运行中的攻击
func (t *Tracker) Register(id domain.AttackID, tabID domain.TabID, cancel context.CancelFunc) {
	t.pool.Store(id, &Entry{
		ID:        id,
		TabID:     tabID,
		StartTime: time.Now(),
		Cancel:    cancel,
	})
}

// Cancel 取消并注销指定攻击，返回是否找到
func (t *Tracker) Cancel(id domain.AttackID) bool {
	val, ok := t.pool.LoadAndDelete(id)
	if !ok {
		return false
	}
	val.(*Entry).Cancel()
	return true
}

// CancelByTab 取消指定标签页上的所有攻击，返回取消的数量
func (t *Tracker) CancelByTab(tabID domain.TabID) int {
	count := 0
	t.pool.Range(func(key, value any) bool {
		entry := value.(*Entry)
		if entry.TabID == tabID {
			t.pool.Delete(key)
			entry.Cancel()
			count++
		}
		return true
	})
	return count
}

// Done 攻击正常结束后注销，不触发取消
func (t *Tracker) Done(id domain.AttackID) {
	t.pool.Delete(id)
}

// Running 查询指定标签页是否有运行中的攻击
func (t *Tracker) Running(tabID domain.TabID) bool {
	found := false
	t.pool.Range(func(_, value any) bool {
		if value.(*Entry).TabID == tabID {
			found = true
			return false
		}
		return true
	})
	return found
}

// Stop 停止注册表：取消全部在途攻击并结束清扫协程
func (t *Tracker) Stop() {
	select {
	case <-t.done:
		return
	default:
		close(t.done)
	}
	t.pool.Range(func(key, value any) bool {
		t.pool.Delete(key)
		value.(*Entry).Cancel()
		return true
	})
}

// sweepLoop 定期取消超时攻击的后台协程
func (t *Tracker) sweepLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			now := time.Now()
			t.pool.Range(func(key, value any) bool {
				entry := value.(*Entry)
				if now.Sub(entry.StartTime) > t.timeout {
					t.pool.Delete(key)
					entry.Cancel()
					t.log.Warn("攻击运行超时，强制取消", "attackId", string(entry.ID), "tabId", string(entry.TabID), "startTime", entry.StartTime)
				}
				return true
			})
		}
	}
}
