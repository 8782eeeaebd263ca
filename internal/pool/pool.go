// Package pool 提供发包用的并发工作池，限制同时在途的请求数。
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"raider/internal/logger"
)

// Pool 并发工作池。固定数量的 worker 协程从缓冲队列取任务执行，
// 队列容量决定积压上限。
type Pool struct {
	queue       chan func()
	size        int
	queueCap    int
	log         logger.Logger
	totalSubmit int64
	totalDrop   int64
	mu          sync.Mutex
	stopMonitor chan struct{}
}

// New 创建工作池。size 为最大并发数；queueCap 为缓冲队列容量，
// 0 时默认为 size 的 8 倍。size 不为正时返回直通池，不做并发限制。
func New(size int, queueCap int) *Pool {
	if size <= 0 {
		return &Pool{}
	}
	if queueCap <= 0 {
		queueCap = size * 8
	}
	return &Pool{
		queue:    make(chan func(), queueCap),
		size:     size,
		queueCap: queueCap,
	}
}

// SetLogger 设置日志记录器
func (p *Pool) SetLogger(l logger.Logger) {
	p.log = l
}

// Start 启动 worker 协程群与状态监控
func (p *Pool) Start(ctx context.Context) {
	if p.queue == nil {
		return
	}
	for i := 0; i < p.size; i++ {
		go p.worker(ctx)
	}
	p.stopMonitor = make(chan struct{})
	go p.monitor(ctx)
}

// Stop 停止状态监控
func (p *Pool) Stop() {
	if p.stopMonitor != nil {
		close(p.stopMonitor)
	}
}

// worker 从队列取任务执行，上下文取消后退出
func (p *Pool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-p.queue:
			if fn != nil {
				fn()
			}
		}
	}
}

// monitor 定期输出队列积压与丢弃统计
func (p *Pool) monitor(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopMonitor:
			return
		case <-ticker.C:
			qLen, qCap, submit, drop := p.Stats()
			if p.log != nil && submit > 0 {
				usage := float64(qLen) / float64(qCap) * 100
				p.log.Info("工作池状态", "queueLen", qLen, "queueCap", qCap, "usage", fmt.Sprintf("%.1f%%", usage), "totalSubmit", submit, "totalDrop", drop)
			}
		}
	}
}

// Submit 非阻塞提交。队列已满时丢弃任务并返回 false，
// 适合可丢失的旁路任务（如持久化写入）。
func (p *Pool) Submit(fn func()) bool {
	if p.queue == nil {
		go fn()
		return true
	}
	p.mu.Lock()
	p.totalSubmit++
	p.mu.Unlock()
	select {
	case p.queue <- fn:
		return true
	default:
		p.mu.Lock()
		p.totalDrop++
		drop := p.totalDrop
		p.mu.Unlock()
		if p.log != nil {
			p.log.Warn("工作池队列已满，任务被丢弃", "queueCap", p.queueCap, "totalDrop", drop)
		}
		return false
	}
}

// SubmitWait 阻塞提交。队列满时等待空位，上下文取消时放弃并返回错误。
// 攻击请求走这个入口，保证每个载荷组合都会被发出或攻击被取消。
func (p *Pool) SubmitWait(ctx context.Context, fn func()) error {
	if p.queue == nil {
		go fn()
		return nil
	}
	p.mu.Lock()
	p.totalSubmit++
	p.mu.Unlock()
	select {
	case p.queue <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats 返回工作池统计信息
func (p *Pool) Stats() (queueLen, queueCap, totalSubmit, totalDrop int64) {
	if p.queue == nil {
		return 0, 0, 0, 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(len(p.queue)), int64(p.queueCap), p.totalSubmit, p.totalDrop
}

// IsEnabled 检查工作池是否启用了并发限制
func (p *Pool) IsEnabled() bool {
	return p.queue != nil
}
