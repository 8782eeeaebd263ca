package intruder

import (
	"time"

	"raider/internal/logger"
	"raider/internal/payload"
	"raider/pkg/domain"
)

// defaultSetSize 载荷集为空或缺失时用于估算总量的兜底值
const defaultSetSize = 10

// Controller 攻击生命周期控制器：启动、停止、进度推进与自动完成。
// 所有状态都落在标签页上，控制器本身无状态。
type Controller struct {
	store *Store
	log   logger.Logger
	now   func() int64
}

// NewController 创建攻击控制器
func NewController(store *Store, l logger.Logger) *Controller {
	if l == nil {
		l = logger.Nop()
	}
	return &Controller{
		store: store,
		log:   l,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// findTab 按 ID 查找标签页，调用方必须持有锁
func (s *Store) findTab(id domain.TabID) *domain.AttackTab {
	for _, tab := range s.tabs {
		if tab.ID == id {
			return tab
		}
	}
	return nil
}

// setSize 单个载荷集的有效大小，空集按兜底值计
func setSize(set domain.PayloadSet) int {
	if n := payload.Count(set); n > 0 {
		return n
	}
	return defaultSetSize
}

// ComputeTotal 按攻击类型估算总请求数：
//   - sniper：位置数 × 第一个载荷集大小（位置数为 0 时按 1 计）
//   - battering-ram：第一个载荷集大小
//   - pitchfork：各载荷集大小的最小值
//   - cluster-bomb：各载荷集大小的乘积
//
// 缺失的载荷集一律按兜底值计，未知攻击类型返回兜底值。
func ComputeTotal(tab *domain.AttackTab) int64 {
	firstSet := func() int {
		if len(tab.PayloadSets) == 0 {
			return defaultSetSize
		}
		return setSize(tab.PayloadSets[0])
	}

	switch tab.AttackType {
	case domain.AttackSniper:
		positions := len(tab.PayloadPositions)
		if positions == 0 {
			positions = 1
		}
		return int64(positions) * int64(firstSet())
	case domain.AttackBatteringRam:
		return int64(firstSet())
	case domain.AttackPitchfork:
		if len(tab.PayloadSets) == 0 {
			return defaultSetSize
		}
		min := setSize(tab.PayloadSets[0])
		for _, set := range tab.PayloadSets[1:] {
			if n := setSize(set); n < min {
				min = n
			}
		}
		return int64(min)
	case domain.AttackClusterBomb:
		if len(tab.PayloadSets) == 0 {
			return defaultSetSize
		}
		total := int64(1)
		for _, set := range tab.PayloadSets {
			total *= int64(setSize(set))
		}
		return total
	default:
		return defaultSetSize
	}
}

// Start 启动攻击：清空旧结果，初始化进度并置为运行中。
// 返回估算的总请求数。标签页不存在或已在运行时返回错误。
func (c *Controller) Start(id domain.TabID) (int64, error) {
	c.store.mu.Lock()
	tab := c.store.findTab(id)
	if tab == nil {
		c.store.mu.Unlock()
		return 0, domain.ErrTabNotFound
	}
	if tab.IsRunning {
		c.store.mu.Unlock()
		return 0, domain.ErrAttackRunning
	}

	total := ComputeTotal(tab)
	tab.Results = []domain.AttackResult{}
	tab.Progress = domain.Progress{
		Total:     total,
		Current:   0,
		StartTime: c.now(),
	}
	tab.IsRunning = true
	attackType := tab.AttackType
	c.store.mu.Unlock()

	c.log.Info("攻击启动", "tabId", string(id), "attackType", string(attackType), "total", total)
	c.store.notify()
	return total, nil
}

// Stop 停止攻击。只做本地记账：置为非运行并写入结束时间，
// 不负责打断在途请求。未在运行时返回错误。
func (c *Controller) Stop(id domain.TabID) error {
	c.store.mu.Lock()
	tab := c.store.findTab(id)
	if tab == nil {
		c.store.mu.Unlock()
		return domain.ErrTabNotFound
	}
	if !tab.IsRunning {
		c.store.mu.Unlock()
		return domain.ErrAttackNotRunning
	}

	tab.IsRunning = false
	if tab.Progress.EndTime == 0 {
		tab.Progress.EndTime = c.now()
	}
	current, total := tab.Progress.Current, tab.Progress.Total
	c.store.mu.Unlock()

	c.log.Info("攻击停止", "tabId", string(id), "current", current, "total", total)
	c.store.notify()
	return nil
}

// AddResult 追加一条攻击结果并推进进度。进度达到总量时自动完成：
// 置为非运行并写入结束时间，结束时间只写一次。停止之后到达的
// 迟到结果照常追加，但不会让攻击回到运行状态。
func (c *Controller) AddResult(id domain.TabID, result domain.AttackResult) {
	c.store.mu.Lock()
	tab := c.store.findTab(id)
	if tab == nil {
		c.store.mu.Unlock()
		return
	}

	tab.Results = append(tab.Results, result)
	tab.Progress.Current++

	if tab.Progress.Total > 0 && tab.Progress.Current >= tab.Progress.Total {
		tab.IsRunning = false
		if tab.Progress.EndTime == 0 {
			tab.Progress.EndTime = c.now()
		}
	}
	c.store.mu.Unlock()
	c.store.notify()
}
