package tabs

import "raider/pkg/domain"

// 菜单布局常量
const (
	menuWidth          = 190
	menuHeight         = 400
	safetyMargin       = 20
	maxGroupNameLength = 12
)

// 菜单项类型
const (
	MenuCreateGroup = "create-group"
	MenuChangeGroup = "change-group"
	MenuChangeColor = "change-color"
)

// MenuItem 右键菜单项
type MenuItem struct {
	Kind    string         `json:"kind"`
	Label   string         `json:"label"`
	GroupID domain.GroupID `json:"groupId,omitempty"`
	Color   string         `json:"color,omitempty"`
}

// MenuSection 右键菜单分区
type MenuSection struct {
	Header string     `json:"header"`
	Items  []MenuItem `json:"items"`
}

// MenuModel 右键菜单的展示模型，坐标已做视口夹取
type MenuModel struct {
	TabID    string        `json:"tabId"`
	X        int           `json:"x"`
	Y        int           `json:"y"`
	Sections []MenuSection `json:"sections"`
}

// OpenMenu 为指定标签页构建右键菜单模型。
// 位置按固定安全边距夹取在视口内；分组分区仅在启用分组时出现。
func (c *Controller[T]) OpenMenu(tabID string, x, y, viewportW, viewportH int) *MenuModel {
	// 已打开的菜单先关闭
	c.CloseMenu()

	if x+menuWidth+safetyMargin > viewportW {
		x = x - menuWidth
		if x < safetyMargin {
			x = safetyMargin
		}
	}
	if y+menuHeight+safetyMargin > viewportH {
		y = viewportH - menuHeight - safetyMargin
		if y < safetyMargin {
			y = safetyMargin
		}
	}

	m := &MenuModel{TabID: tabID, X: x, Y: y}

	if c.opts.EnableGroups && c.opts.Groups != nil {
		section := MenuSection{Header: "分组"}
		section.Items = append(section.Items,
			MenuItem{Kind: MenuCreateGroup, Label: "创建新分组"},
			MenuItem{Kind: MenuChangeGroup, Label: "无分组", GroupID: ""},
		)
		for _, g := range c.opts.Groups() {
			section.Items = append(section.Items, MenuItem{
				Kind:    MenuChangeGroup,
				Label:   truncateName(g.Name),
				GroupID: g.ID,
				Color:   g.Color,
			})
		}
		m.Sections = append(m.Sections, section)
	}

	colorSection := MenuSection{Header: "颜色"}
	for _, opt := range c.opts.Colors {
		colorSection.Items = append(colorSection.Items, MenuItem{
			Kind:  MenuChangeColor,
			Label: opt.Label,
			Color: opt.Value,
		})
	}
	m.Sections = append(m.Sections, colorSection)

	c.menu = m
	return m
}

// Menu 返回当前打开的菜单模型，未打开时为 nil
func (c *Controller[T]) Menu() *MenuModel { return c.menu }

// CloseMenu 关闭右键菜单（外部点击、Escape 或选中菜单项后调用）
func (c *Controller[T]) CloseMenu() { c.menu = nil }

// SelectColor 应用菜单中选中的颜色并关闭菜单
func (c *Controller[T]) SelectColor(color string) {
	if c.menu == nil {
		return
	}
	if tab, ok := c.findTab(c.menu.TabID); ok {
		tab.SetTabColor(color)
	}
	c.CloseMenu()
}

// SelectGroup 应用菜单中选中的分组并关闭菜单。
// groupID 为空表示移出分组。
func (c *Controller[T]) SelectGroup(groupID domain.GroupID) {
	if c.menu == nil {
		return
	}
	if tab, ok := c.findTab(c.menu.TabID); ok {
		if g, isGrouped := any(tab).(Grouped); isGrouped {
			g.SetTabGroup(groupID)
		}
	}
	c.CloseMenu()
}

// truncateName 过长的分组名截断加省略号
func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxGroupNameLength {
		return name
	}
	return string(runes[:maxGroupNameLength]) + "..."
}
