package domain

// AttackTab 的通用标签页访问方法，满足标签页控制器的 Item/Grouped 契约

// TabID 返回标签页 ID
func (t *AttackTab) TabID() string { return string(t.ID) }

// TabName 返回标签页名称
func (t *AttackTab) TabName() string { return t.Name }

// SetTabName 设置标签页名称
func (t *AttackTab) SetTabName(name string) { t.Name = name }

// TabColor 返回标签页颜色
func (t *AttackTab) TabColor() string { return t.Color }

// SetTabColor 设置标签页颜色
func (t *AttackTab) SetTabColor(color string) { t.Color = color }

// ActiveTab 返回标签页是否处于激活状态
func (t *AttackTab) ActiveTab() bool { return t.IsActive }

// SetActiveTab 设置标签页激活状态
func (t *AttackTab) SetActiveTab(active bool) { t.IsActive = active }

// TabGroup 返回标签页所属分组，空表示未分组
func (t *AttackTab) TabGroup() GroupID { return t.GroupID }

// SetTabGroup 设置标签页所属分组
func (t *AttackTab) SetTabGroup(id GroupID) { t.GroupID = id }
