// Package intruder 实现攻击会话子系统：标签页/分组状态机、攻击生命周期
// 控制与结果规范化。
package intruder

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"raider/internal/logger"
	"raider/pkg/domain"
)

// defaultRequest 新标签页的默认 HTTP 请求模板
const defaultRequest = "GET / HTTP/1.1\n" +
	"Host: 127.0.0.1\n" +
	"User-Agent: Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36\n" +
	"Accept: text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8\n" +
	"Accept-Language: en-US,en;q=0.5\n" +
	"Accept-Encoding: gzip, deflate\n" +
	"Connection: close\n" +
	"\n"

// defaultColor 标签页与分组的默认颜色
const defaultColor = "#4f46e5"

// Store 攻击标签页与分组的唯一事实来源。
// 所有变更方法都是原子的；每次完成一个变更后通知订阅者。
type Store struct {
	mu      sync.Mutex
	log     logger.Logger
	tabs    []*domain.AttackTab
	groups  []domain.TabGroup
	counter int

	subMu sync.Mutex
	subs  []func()
}

// NewStore 创建攻击标签页存储
func NewStore(l logger.Logger) *Store {
	if l == nil {
		l = logger.Nop()
	}
	return &Store{log: l, counter: 1}
}

// Subscribe 注册状态变更回调。每个原子变更完成后调用一次，
// 回调在变更之外执行，订阅者可以安全地读取存储。
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

// notify 在变更完成后通知所有订阅者，锁外执行
func (s *Store) notify() {
	s.subMu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// defaultPayloadSet 构造一个空的 simple-list 载荷集
func defaultPayloadSet(id int) domain.PayloadSet {
	return domain.PayloadSet{
		ID:    id,
		Type:  domain.PayloadSimpleList,
		Items: []string{},
		Processing: domain.PayloadProcessing{
			Rules: []domain.ProcessingRule{},
			Encoding: domain.EncodingConfig{
				Enabled:      false,
				URLEncode:    false,
				CharacterSet: "UTF-8",
			},
		},
	}
}

// AddTab 创建并激活一个新标签页，返回新标签页 ID。
// 其余标签页全部置为非激活。
func (s *Store) AddTab() domain.TabID {
	s.mu.Lock()

	id := domain.TabID(uuid.NewString())
	name := fmt.Sprintf("Attack %d", s.counter)
	s.counter++

	for _, tab := range s.tabs {
		tab.IsActive = false
	}

	s.tabs = append(s.tabs, &domain.AttackTab{
		ID:    id,
		Name:  name,
		Color: defaultColor,
		Target: domain.Target{
			URL:         "http://127.0.0.1/",
			Method:      "GET",
			FullRequest: defaultRequest,
		},
		AttackType:       domain.AttackSniper,
		PayloadPositions: []domain.PayloadPosition{},
		PayloadSets:      []domain.PayloadSet{defaultPayloadSet(1)},
		Results:          []domain.AttackResult{},
		IsActive:         true,
	})

	s.mu.Unlock()
	s.notify()
	return id
}

// CloseTab 关闭标签页。关闭的是激活页时，激活补位到同一下标的标签页
// （越界时取最后一个）；关闭后没有标签页则没有激活页。
func (s *Store) CloseTab(id domain.TabID) {
	s.mu.Lock()

	index := -1
	for i, tab := range s.tabs {
		if tab.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		s.mu.Unlock()
		return
	}

	wasActive := s.tabs[index].IsActive
	s.tabs = append(s.tabs[:index], s.tabs[index+1:]...)

	if wasActive && len(s.tabs) > 0 {
		next := index
		if next >= len(s.tabs) {
			next = len(s.tabs) - 1
		}
		for i, tab := range s.tabs {
			tab.IsActive = i == next
		}
	}

	s.mu.Unlock()
	s.notify()
}

// ActivateTab 激活指定标签页，其余全部置为非激活。
// 任意时刻至多一个激活页。
func (s *Store) ActivateTab(id domain.TabID) {
	s.mu.Lock()
	for _, tab := range s.tabs {
		tab.IsActive = tab.ID == id
	}
	s.mu.Unlock()
	s.notify()
}

// ActiveTab 返回当前激活标签页的深拷贝快照
func (s *Store) ActiveTab() (domain.AttackTab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tab := range s.tabs {
		if tab.IsActive {
			return *tab.Clone(), true
		}
	}
	return domain.AttackTab{}, false
}

// Tabs 返回标签页的深拷贝快照（供标签页控制器与 GUI 读取）。
// 快照与存储互不影响，一切变更都必须通过 Store 的方法提交。
func (s *Store) Tabs() []*domain.AttackTab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.AttackTab, len(s.tabs))
	for i, tab := range s.tabs {
		out[i] = tab.Clone()
	}
	return out
}

// Groups 返回分组切片
func (s *Store) Groups() []domain.TabGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TabGroup, len(s.groups))
	copy(out, s.groups)
	return out
}

// withTab 在锁内对指定标签页执行变更，完成后通知订阅者。
// 标签页不存在时静默忽略：这是 UI 状态竞争（如变更晚于关闭到达），
// 不是程序错误。
func (s *Store) withTab(id domain.TabID, fn func(*domain.AttackTab)) {
	s.mu.Lock()
	var found *domain.AttackTab
	for _, tab := range s.tabs {
		if tab.ID == id {
			found = tab
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return
	}
	fn(found)
	// 任何路径把标签页置为激活后，其余标签页同步强制非激活
	if found.IsActive {
		for _, tab := range s.tabs {
			if tab.ID != id {
				tab.IsActive = false
			}
		}
	}
	s.mu.Unlock()
	s.notify()
}

// RenameTab 重命名标签页
func (s *Store) RenameTab(id domain.TabID, name string) {
	s.withTab(id, func(tab *domain.AttackTab) {
		tab.Name = name
	})
}

// ChangeTabColor 修改标签页颜色
func (s *Store) ChangeTabColor(id domain.TabID, color string) {
	s.withTab(id, func(tab *domain.AttackTab) {
		tab.Color = color
	})
}

// ReorderTabs 按给定 ID 顺序整体重排标签页。
// 顺序中缺失的标签页保持原有相对顺序附加在末尾。
func (s *Store) ReorderTabs(order []domain.TabID) {
	s.mu.Lock()

	index := make(map[domain.TabID]*domain.AttackTab, len(s.tabs))
	for _, tab := range s.tabs {
		index[tab.ID] = tab
	}

	newTabs := make([]*domain.AttackTab, 0, len(s.tabs))
	seen := make(map[domain.TabID]struct{}, len(order))
	for _, id := range order {
		if tab, ok := index[id]; ok {
			newTabs = append(newTabs, tab)
			seen[id] = struct{}{}
		}
	}
	for _, tab := range s.tabs {
		if _, ok := seen[tab.ID]; !ok {
			newTabs = append(newTabs, tab)
		}
	}
	s.tabs = newTabs
	s.enforceSingleActive()

	s.mu.Unlock()
	s.notify()
}

// enforceSingleActive 替换整个切片后重申单一激活不变量，保留首个激活页。
// 调用方必须持有锁。
func (s *Store) enforceSingleActive() {
	found := false
	for _, tab := range s.tabs {
		if tab.IsActive {
			if found {
				tab.IsActive = false
			}
			found = true
		}
	}
}

// Restore 用持久化的快照整体替换标签页与分组（启动时还原）。
// 替换后重申单一激活不变量，命名计数器跳过已有数量。
func (s *Store) Restore(tabs []*domain.AttackTab, groups []domain.TabGroup) {
	s.mu.Lock()
	s.tabs = tabs
	s.groups = groups
	s.enforceSingleActive()
	if s.counter <= len(tabs) {
		s.counter = len(tabs) + 1
	}
	s.mu.Unlock()
	s.notify()
}

// CreateGroup 创建分组并返回其 ID
func (s *Store) CreateGroup(name, color string) domain.GroupID {
	if color == "" {
		color = defaultColor
	}
	s.mu.Lock()
	id := domain.GroupID(uuid.NewString())
	s.groups = append(s.groups, domain.TabGroup{ID: id, Name: name, Color: color})
	s.mu.Unlock()
	s.notify()
	return id
}

// ChangeTabGroup 变更标签页所属分组。入组时同步分组颜色到标签页
// （纯装饰性同步，不构成所有权）；groupID 为空表示移出分组，颜色不动。
func (s *Store) ChangeTabGroup(id domain.TabID, groupID domain.GroupID) {
	s.withTab(id, func(tab *domain.AttackTab) {
		tab.GroupID = groupID
		if groupID == "" {
			return
		}
		for _, g := range s.groups {
			if g.ID == groupID {
				tab.Color = g.Color
				break
			}
		}
	})
}

// ReorderGroups 按给定 ID 顺序整体重排分组
func (s *Store) ReorderGroups(order []domain.GroupID) {
	s.mu.Lock()

	index := make(map[domain.GroupID]domain.TabGroup, len(s.groups))
	for _, g := range s.groups {
		index[g.ID] = g
	}

	newGroups := make([]domain.TabGroup, 0, len(s.groups))
	seen := make(map[domain.GroupID]struct{}, len(order))
	for _, id := range order {
		if g, ok := index[id]; ok {
			newGroups = append(newGroups, g)
			seen[id] = struct{}{}
		}
	}
	for _, g := range s.groups {
		if _, ok := seen[g.ID]; !ok {
			newGroups = append(newGroups, g)
		}
	}
	s.groups = newGroups

	s.mu.Unlock()
	s.notify()
}

// DeleteGroup 删除分组。分组下的标签页回落为未分组，标签页本身不删除。
func (s *Store) DeleteGroup(id domain.GroupID) {
	s.mu.Lock()

	index := -1
	for i, g := range s.groups {
		if g.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		s.mu.Unlock()
		return
	}

	s.groups = append(s.groups[:index], s.groups[index+1:]...)
	for _, tab := range s.tabs {
		if tab.GroupID == id {
			tab.GroupID = ""
		}
	}

	s.mu.Unlock()
	s.notify()
}

// UpdateRequest 替换标签页的原始请求文本。
// 已提取的载荷位置随之失效，调用方需要重新提取。
func (s *Store) UpdateRequest(id domain.TabID, fullRequest string) {
	s.withTab(id, func(tab *domain.AttackTab) {
		tab.Target.FullRequest = fullRequest
	})
}

// UpdatePayloadPositions 替换标签页的载荷位置
func (s *Store) UpdatePayloadPositions(id domain.TabID, positions []domain.PayloadPosition) {
	s.withTab(id, func(tab *domain.AttackTab) {
		tab.PayloadPositions = positions
	})
}

// UpdateAttackType 修改标签页的攻击类型
func (s *Store) UpdateAttackType(id domain.TabID, t domain.AttackType) {
	s.withTab(id, func(tab *domain.AttackTab) {
		tab.AttackType = t
	})
}

// SetResultColor 设置某条结果的标记颜色
func (s *Store) SetResultColor(id domain.TabID, resultID int64, color string) {
	s.withTab(id, func(tab *domain.AttackTab) {
		for i := range tab.Results {
			if tab.Results[i].ID == resultID {
				tab.Results[i].Color = color
				break
			}
		}
	})
}

// SelectResults 按给定 ID 集合置结果的选中态，未列出的结果取消选中
func (s *Store) SelectResults(id domain.TabID, resultIDs []int64) {
	set := make(map[int64]struct{}, len(resultIDs))
	for _, rid := range resultIDs {
		set[rid] = struct{}{}
	}
	s.withTab(id, func(tab *domain.AttackTab) {
		for i := range tab.Results {
			_, ok := set[tab.Results[i].ID]
			tab.Results[i].Selected = ok
		}
	})
}

// ensureSetCount 保证标签页至少拥有 n+1 个载荷集，不足时以默认空集补齐。
// 按下标寻址的写入因此永不失败——这是刻意的宽容设计，调用方不得依赖
// 异常来探测槽位是否存在。
func ensureSetCount(tab *domain.AttackTab, n int) {
	for len(tab.PayloadSets) <= n {
		tab.PayloadSets = append(tab.PayloadSets, defaultPayloadSet(len(tab.PayloadSets)+1))
	}
}

// UpdatePayloadSets 整体替换标签页的载荷集
func (s *Store) UpdatePayloadSets(id domain.TabID, sets []domain.PayloadSet) {
	s.withTab(id, func(tab *domain.AttackTab) {
		tab.PayloadSets = append([]domain.PayloadSet(nil), sets...)
	})
}

// UpdatePayloadSet 替换指定下标的载荷集，下标越界时自动扩容
func (s *Store) UpdatePayloadSet(id domain.TabID, index int, set domain.PayloadSet) {
	if index < 0 {
		return
	}
	s.withTab(id, func(tab *domain.AttackTab) {
		ensureSetCount(tab, index)
		tab.PayloadSets[index] = set
	})
}

// AddPayloadItem 向指定载荷集追加一个载荷项，下标越界时自动扩容
func (s *Store) AddPayloadItem(id domain.TabID, index int, item string) {
	if index < 0 {
		return
	}
	s.withTab(id, func(tab *domain.AttackTab) {
		ensureSetCount(tab, index)
		tab.PayloadSets[index].Items = append(tab.PayloadSets[index].Items, item)
	})
}

// ClearPayloadItems 清空指定载荷集的所有载荷项
func (s *Store) ClearPayloadItems(id domain.TabID, index int) {
	s.withTab(id, func(tab *domain.AttackTab) {
		if index < 0 || index >= len(tab.PayloadSets) {
			return
		}
		tab.PayloadSets[index].Items = []string{}
	})
}

// RemovePayloadItem 移除指定载荷集中的一个载荷项
func (s *Store) RemovePayloadItem(id domain.TabID, setIndex, itemIndex int) {
	s.withTab(id, func(tab *domain.AttackTab) {
		if setIndex < 0 || setIndex >= len(tab.PayloadSets) {
			return
		}
		items := tab.PayloadSets[setIndex].Items
		if itemIndex < 0 || itemIndex >= len(items) {
			return
		}
		tab.PayloadSets[setIndex].Items = append(items[:itemIndex], items[itemIndex+1:]...)
	})
}

// UpdatePayloadSetProcessing 更新指定载荷集的处理规则与编码配置，
// 下标越界时自动扩容
func (s *Store) UpdatePayloadSetProcessing(id domain.TabID, index int, processing domain.PayloadProcessing) {
	if index < 0 {
		return
	}
	s.withTab(id, func(tab *domain.AttackTab) {
		ensureSetCount(tab, index)
		tab.PayloadSets[index].Processing = processing
	})
}
