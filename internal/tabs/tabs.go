// Package tabs 提供 Intruder/Repeater/Decoder 共用的标签页管理控制器：
// 就地重命名、右键菜单模型与拖拽排序。控制器只维护纯内存的 UI 状态，
// 渲染由前端负责。
package tabs

import (
	"raider/pkg/domain"
)

// Item 通用标签页契约
type Item interface {
	TabID() string
	TabName() string
	SetTabName(name string)
	TabColor() string
	SetTabColor(color string)
	ActiveTab() bool
	SetActiveTab(active bool)
}

// Grouped 可选的分组能力，调用方通过显式能力查询判断，
// 而不是对结构做鸭子类型探测
type Grouped interface {
	Item
	TabGroup() domain.GroupID
	SetTabGroup(id domain.GroupID)
}

// ColorOption 预定义颜色选项
type ColorOption struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// DefaultColors 默认颜色选项
func DefaultColors() []ColorOption {
	return []ColorOption{
		{ID: "default", Value: "#4f46e5", Label: "Default (Purple)"},
		{ID: "red", Value: "#ef4444", Label: "Red"},
		{ID: "green", Value: "#10b981", Label: "Green"},
		{ID: "blue", Value: "#3b82f6", Label: "Blue"},
		{ID: "yellow", Value: "#f59e0b", Label: "Yellow"},
		{ID: "orange", Value: "#f97316", Label: "Orange"},
		{ID: "teal", Value: "#14b8a6", Label: "Teal"},
	}
}

// Options 控制器配置
type Options[T Item] struct {
	// EnableGroups 是否启用分组功能
	EnableGroups bool
	// Tabs 返回当前标签页切片（控制器不持有所有权）
	Tabs func() []T
	// Groups 返回当前分组切片，未启用分组时可为 nil
	Groups func() []domain.TabGroup
	// Colors 颜色选项，为空时使用默认
	Colors []ColorOption
}

// Controller 标签页管理控制器
// 所有拖拽字段都是临时 UI 状态，拖拽结束时无条件复位
type Controller[T Item] struct {
	opts Options[T]

	// 重命名状态
	editingTabID   string
	editingTabName string

	// 右键菜单状态
	menu *MenuModel

	// 拖拽状态
	draggedTabID   string
	draggedGroupID domain.GroupID
	dragOverTabID  string
	dragStartGroup domain.GroupID
	dragging       bool
	groupDragging  bool
}

// New 创建标签页管理控制器
func New[T Item](opts Options[T]) *Controller[T] {
	if len(opts.Colors) == 0 {
		opts.Colors = DefaultColors()
	}
	return &Controller[T]{opts: opts}
}

// findTab 按 ID 查找标签页
func (c *Controller[T]) findTab(id string) (T, bool) {
	var zero T
	for _, tab := range c.opts.Tabs() {
		if tab.TabID() == id {
			return tab, true
		}
	}
	return zero, false
}

// StartRename 进入就地重命名状态
func (c *Controller[T]) StartRename(tabID, currentName string) {
	c.editingTabID = tabID
	c.editingTabName = currentName
}

// EditingTab 返回正在编辑的标签页 ID 与草稿名称，未编辑时 ID 为空
func (c *Controller[T]) EditingTab() (string, string) {
	return c.editingTabID, c.editingTabName
}

// SetEditingName 更新重命名草稿
func (c *Controller[T]) SetEditingName(name string) {
	c.editingTabName = name
}

// CommitRename 提交重命名并退出编辑状态
func (c *Controller[T]) CommitRename() {
	if c.editingTabID == "" {
		return
	}
	if tab, ok := c.findTab(c.editingTabID); ok {
		tab.SetTabName(c.editingTabName)
	}
	c.editingTabID = ""
	c.editingTabName = ""
}

// CancelRename 放弃重命名
func (c *Controller[T]) CancelRename() {
	c.editingTabID = ""
	c.editingTabName = ""
}

// HandleRenameKey 处理重命名输入框的按键：Enter 提交，Escape 取消
func (c *Controller[T]) HandleRenameKey(key string) {
	switch key {
	case "Enter":
		c.CommitRename()
	case "Escape":
		c.CancelRename()
	}
}

// GroupedTabs 按分组划分标签页。未启用分组时所有标签页归入未分组。
// 空分组不出现在结果中；引用了不存在分组的标签页视为未分组。
func (c *Controller[T]) GroupedTabs() ([]T, []GroupWithTabs[T]) {
	all := c.opts.Tabs()
	if !c.opts.EnableGroups || c.opts.Groups == nil {
		return all, nil
	}

	groups := c.opts.Groups()
	known := make(map[domain.GroupID]struct{}, len(groups))
	for _, g := range groups {
		known[g.ID] = struct{}{}
	}

	noGroup := make([]T, 0)
	for _, tab := range all {
		g, ok := any(tab).(Grouped)
		if !ok || g.TabGroup() == "" {
			noGroup = append(noGroup, tab)
			continue
		}
		if _, exists := known[g.TabGroup()]; !exists {
			noGroup = append(noGroup, tab)
		}
	}

	grouped := make([]GroupWithTabs[T], 0, len(groups))
	for _, group := range groups {
		members := make([]T, 0)
		for _, tab := range all {
			if g, ok := any(tab).(Grouped); ok && g.TabGroup() == group.ID {
				members = append(members, tab)
			}
		}
		if len(members) > 0 {
			grouped = append(grouped, GroupWithTabs[T]{Group: group, Tabs: members})
		}
	}

	return noGroup, grouped
}

// GroupWithTabs 一个分组及其拥有的标签页
type GroupWithTabs[T Item] struct {
	Group domain.TabGroup
	Tabs  []T
}

// DragStartTab 开始拖动标签页
func (c *Controller[T]) DragStartTab(tabID string) {
	c.draggedTabID = tabID
	c.dragging = true
	if tab, ok := c.findTab(tabID); ok {
		if g, isGrouped := any(tab).(Grouped); isGrouped {
			c.dragStartGroup = g.TabGroup()
		}
	}
}

// DragStartGroup 开始拖动分组
func (c *Controller[T]) DragStartGroup(groupID domain.GroupID) {
	if !c.opts.EnableGroups {
		return
	}
	c.draggedGroupID = groupID
	c.groupDragging = true
}

// DragEnterTab 拖拽经过目标标签页，返回是否为跨分组拖拽
func (c *Controller[T]) DragEnterTab(tabID string) bool {
	if c.draggedTabID == "" || c.draggedTabID == tabID {
		return false
	}
	c.dragOverTabID = tabID

	if !c.opts.EnableGroups {
		return false
	}
	target, ok := c.findTab(tabID)
	if !ok {
		return false
	}
	tg, ok := any(target).(Grouped)
	if !ok {
		return false
	}
	return tg.TabGroup() != c.dragStartGroup
}

// Dragging 返回当前是否处于标签页拖拽中
func (c *Controller[T]) Dragging() bool { return c.dragging }

// DraggedTab 返回正在拖拽的标签页 ID
func (c *Controller[T]) DraggedTab() string { return c.draggedTabID }

// DragOverTab 返回拖拽悬停的标签页 ID
func (c *Controller[T]) DragOverTab() string { return c.dragOverTabID }

// DropOnTab 将拖动中的标签页放到目标标签页上：从数组移除后插入目标下标。
// 跨分组时先更新分组再排序。reorder 回调收到重排后的完整切片。
func (c *Controller[T]) DropOnTab(targetID string, reorder func([]T)) {
	defer c.resetTabDrag()

	if c.draggedTabID == "" || c.draggedTabID == targetID {
		return
	}

	all := c.opts.Tabs()
	draggedIndex, targetIndex := -1, -1
	for i, tab := range all {
		switch tab.TabID() {
		case c.draggedTabID:
			draggedIndex = i
		case targetID:
			targetIndex = i
		}
	}
	if draggedIndex == -1 || targetIndex == -1 {
		return
	}

	dragged := all[draggedIndex]
	// 跨分组拖拽先落分组
	if c.opts.EnableGroups {
		dg, dok := any(dragged).(Grouped)
		tg, tok := any(all[targetIndex]).(Grouped)
		if dok && tok && dg.TabGroup() != tg.TabGroup() {
			dg.SetTabGroup(tg.TabGroup())
		}
	}

	newTabs := make([]T, 0, len(all))
	newTabs = append(newTabs, all[:draggedIndex]...)
	newTabs = append(newTabs, all[draggedIndex+1:]...)

	insertAt := targetIndex
	if insertAt > len(newTabs) {
		insertAt = len(newTabs)
	}
	newTabs = append(newTabs[:insertAt], append([]T{dragged}, newTabs[insertAt:]...)...)

	reorder(newTabs)
}

// DropOnGroup 处理落到分组标题上的两种情况：
// 标签页入组，或分组之间重排
func (c *Controller[T]) DropOnGroup(targetGroupID domain.GroupID, reorderGroups func([]domain.TabGroup)) {
	if !c.opts.EnableGroups {
		return
	}

	// 标签页拖到分组上
	if c.draggedTabID != "" {
		defer c.resetTabDrag()
		tab, ok := c.findTab(c.draggedTabID)
		if !ok {
			return
		}
		if g, isGrouped := any(tab).(Grouped); isGrouped && g.TabGroup() != targetGroupID {
			g.SetTabGroup(targetGroupID)
		}
		return
	}

	// 分组拖到分组上
	if c.draggedGroupID == "" || c.draggedGroupID == targetGroupID {
		c.resetGroupDrag()
		return
	}
	defer c.resetGroupDrag()

	groups := c.opts.Groups()
	draggedIndex, targetIndex := -1, -1
	for i, g := range groups {
		switch g.ID {
		case c.draggedGroupID:
			draggedIndex = i
		case targetGroupID:
			targetIndex = i
		}
	}
	if draggedIndex == -1 || targetIndex == -1 {
		return
	}

	newGroups := make([]domain.TabGroup, 0, len(groups))
	newGroups = append(newGroups, groups[:draggedIndex]...)
	newGroups = append(newGroups, groups[draggedIndex+1:]...)
	dragged := groups[draggedIndex]

	insertAt := targetIndex
	if insertAt > len(newGroups) {
		insertAt = len(newGroups)
	}
	newGroups = append(newGroups[:insertAt], append([]domain.TabGroup{dragged}, newGroups[insertAt:]...)...)

	reorderGroups(newGroups)
}

// DropOnNoGroupArea 将拖动中的标签页移出分组，返回是否发生了移动
func (c *Controller[T]) DropOnNoGroupArea() bool {
	if c.draggedTabID == "" {
		return false
	}
	defer c.resetTabDrag()

	tab, ok := c.findTab(c.draggedTabID)
	if !ok {
		return false
	}
	g, isGrouped := any(tab).(Grouped)
	if !isGrouped || g.TabGroup() == "" {
		return false
	}
	g.SetTabGroup("")
	return true
}

// DragEnd 拖拽结束，无论是否成功落点都复位全部临时状态
func (c *Controller[T]) DragEnd() {
	c.resetTabDrag()
	c.resetGroupDrag()
}

func (c *Controller[T]) resetTabDrag() {
	c.draggedTabID = ""
	c.dragOverTabID = ""
	c.dragStartGroup = ""
	c.dragging = false
}

func (c *Controller[T]) resetGroupDrag() {
	c.draggedGroupID = ""
	c.groupDragging = false
}
