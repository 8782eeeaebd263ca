// Package repeater 实现重放器的标签页存储：单条请求的手工编辑与重发。
package repeater

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"raider/pkg/domain"
)

// Tab 重放器标签页
type Tab struct {
	ID       domain.TabID   `json:"id"`
	Name     string         `json:"name"`
	Color    string         `json:"color"`
	GroupID  domain.GroupID `json:"groupId,omitempty"`
	Request  string         `json:"request"`
	Response string         `json:"response"`
	IsActive bool           `json:"isActive"`
}

// TabID 标签页 ID
func (t *Tab) TabID() string { return string(t.ID) }

// TabName 标签页名称
func (t *Tab) TabName() string { return t.Name }

// SetTabName 设置标签页名称
func (t *Tab) SetTabName(name string) { t.Name = name }

// TabColor 标签页颜色
func (t *Tab) TabColor() string { return t.Color }

// SetTabColor 设置标签页颜色
func (t *Tab) SetTabColor(color string) { t.Color = color }

// ActiveTab 是否为激活页
func (t *Tab) ActiveTab() bool { return t.IsActive }

// SetActiveTab 设置激活状态
func (t *Tab) SetActiveTab(active bool) { t.IsActive = active }

// TabGroup 所属分组
func (t *Tab) TabGroup() domain.GroupID { return t.GroupID }

// SetTabGroup 设置所属分组
func (t *Tab) SetTabGroup(id domain.GroupID) { t.GroupID = id }

// Store 重放器标签页存储，激活规则与攻击标签页一致
type Store struct {
	mu      sync.Mutex
	tabs    []*Tab
	groups  []domain.TabGroup
	counter int
}

// NewStore 创建重放器标签页存储
func NewStore() *Store {
	return &Store{counter: 1}
}

// AddTab 创建并激活一个新标签页
func (s *Store) AddTab(request string) domain.TabID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := domain.TabID(uuid.NewString())
	name := fmt.Sprintf("Repeat %d", s.counter)
	s.counter++

	for _, tab := range s.tabs {
		tab.IsActive = false
	}
	s.tabs = append(s.tabs, &Tab{
		ID:       id,
		Name:     name,
		Color:    "#4f46e5",
		Request:  request,
		IsActive: true,
	})
	return id
}

// CloseTab 关闭标签页，激活补位到同一下标（越界取末位）
func (s *Store) CloseTab(id domain.TabID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1
	for i, tab := range s.tabs {
		if tab.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
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
}

// ActivateTab 激活指定标签页
func (s *Store) ActivateTab(id domain.TabID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tab := range s.tabs {
		tab.IsActive = tab.ID == id
	}
}

// UpdateRequest 更新请求文本
func (s *Store) UpdateRequest(id domain.TabID, request string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tab := range s.tabs {
		if tab.ID == id {
			tab.Request = request
			return
		}
	}
}

// SetResponse 记录最近一次重发的响应
func (s *Store) SetResponse(id domain.TabID, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tab := range s.tabs {
		if tab.ID == id {
			tab.Response = response
			return
		}
	}
}

// CreateGroup 创建分组
func (s *Store) CreateGroup(name, color string) domain.GroupID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := domain.GroupID(uuid.NewString())
	s.groups = append(s.groups, domain.TabGroup{ID: id, Name: name, Color: color})
	return id
}

// Tabs 返回标签页切片
func (s *Store) Tabs() []*Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Tab, len(s.tabs))
	copy(out, s.tabs)
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
