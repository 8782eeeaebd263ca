// Package decoder 实现编解码器：常见编码的正反向转换与标签页存储。
// 编解码标签页不支持分组。
package decoder

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"raider/pkg/domain"
)

// 编解码种类
const (
	KindBase64 = "base64"
	KindURL    = "url"
	KindHex    = "hex"
)

// Encode 正向编码
func Encode(kind, input string) (string, error) {
	switch kind {
	case KindBase64:
		return base64.StdEncoding.EncodeToString([]byte(input)), nil
	case KindURL:
		return url.QueryEscape(input), nil
	case KindHex:
		return hex.EncodeToString([]byte(input)), nil
	default:
		return "", fmt.Errorf("未知编码类型: %q", kind)
	}
}

// Decode 反向解码
func Decode(kind, input string) (string, error) {
	switch kind {
	case KindBase64:
		out, err := base64.StdEncoding.DecodeString(input)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case KindURL:
		return url.QueryUnescape(input)
	case KindHex:
		out, err := hex.DecodeString(input)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("未知编码类型: %q", kind)
	}
}

// Tab 编解码标签页
type Tab struct {
	ID       domain.TabID `json:"id"`
	Name     string       `json:"name"`
	Color    string       `json:"color"`
	Input    string       `json:"input"`
	Output   string       `json:"output"`
	IsActive bool         `json:"isActive"`
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

// Store 编解码标签页存储
type Store struct {
	mu      sync.Mutex
	tabs    []*Tab
	counter int
}

// NewStore 创建编解码标签页存储
func NewStore() *Store {
	return &Store{counter: 1}
}

// AddTab 创建并激活一个新标签页
func (s *Store) AddTab() domain.TabID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := domain.TabID(uuid.NewString())
	name := fmt.Sprintf("Decode %d", s.counter)
	s.counter++

	for _, tab := range s.tabs {
		tab.IsActive = false
	}
	s.tabs = append(s.tabs, &Tab{
		ID:       id,
		Name:     name,
		Color:    "#4f46e5",
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

// Transform 对指定标签页执行编解码并记录输入输出
func (s *Store) Transform(id domain.TabID, kind, input string, decode bool) (string, error) {
	var output string
	var err error
	if decode {
		output, err = Decode(kind, input)
	} else {
		output, err = Encode(kind, input)
	}
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tab := range s.tabs {
		if tab.ID == id {
			tab.Input = input
			tab.Output = output
			break
		}
	}
	return output, nil
}

// Tabs 返回标签页切片
func (s *Store) Tabs() []*Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Tab, len(s.tabs))
	copy(out, s.tabs)
	return out
}
