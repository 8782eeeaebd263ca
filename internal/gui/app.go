// Package gui 是 Wails 绑定层：把攻击、标签页、设置与历史能力
// 以统一响应格式暴露给前端。
package gui

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"raider/internal/config"
	"raider/internal/decoder"
	"raider/internal/executor"
	"raider/internal/intruder"
	"raider/internal/logger"
	"raider/internal/marker"
	"raider/internal/pool"
	"raider/internal/repeater"
	"raider/internal/storage/db"
	"raider/internal/storage/model"
	"raider/internal/storage/repo"
	"raider/internal/tabs"
	"raider/internal/tracker"
	"raider/internal/viewer"
	"raider/pkg/api"
	"raider/pkg/domain"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"gorm.io/gorm"
	gl "gorm.io/gorm/logger"
)

// App 汇聚全部后端组件，供前端调用。
type App struct {
	ctx context.Context
	cfg *config.Config
	log logger.Logger

	store    *intruder.Store
	attack   *intruder.Controller
	tabsCtl  *tabs.Controller[*domain.AttackTab]
	repeater *repeater.Store
	decoder  *decoder.Store

	pool     *pool.Pool
	tracker  *tracker.Tracker
	executor *executor.Executor

	gdb          *gorm.DB
	settingsRepo *repo.SettingsRepo
	uiStateRepo  *repo.UIStateRepo
	attackRepo   *repo.AttackRepo

	isDirty    bool
	cancelPool context.CancelFunc
}

// NewApp 创建并返回一个新的 App 实例。
func NewApp() *App {
	cfg := config.NewConfig()
	log := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Writers: cfg.Log.Writer,
	})

	store := intruder.NewStore(log)
	a := &App{
		cfg:      cfg,
		log:      log,
		store:    store,
		attack:   intruder.NewController(store, log),
		repeater: repeater.NewStore(),
		decoder:  decoder.NewStore(),
	}
	a.tabsCtl = tabs.New(tabs.Options[*domain.AttackTab]{
		EnableGroups: true,
		Tabs:         store.Tabs,
		Groups:       store.Groups,
	})
	return a
}

// Startup 初始化持久化层与攻击执行组件，并还原上次的界面状态。
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.log.Info("应用启动")

	gormLogger := db.NewLogger(a.log).LogMode(gl.Warn)
	gdb, err := db.New(db.Options{
		Name:   a.cfg.Sqlite.Db,
		Prefix: a.cfg.Sqlite.Prefix,
		Logger: gormLogger,
	})
	if err != nil {
		a.log.Err(err, "数据库初始化失败")
		return
	}

	err = db.Migrate(gdb,
		&model.Setting{},
		&model.UIStateRecord{},
		&model.AttackRecord{},
	)
	if err != nil {
		a.log.Err(err, "数据库迁移失败")
		return
	}

	a.gdb = gdb
	a.settingsRepo = repo.NewSettingsRepo(gdb)
	a.uiStateRepo = repo.NewUIStateRepo(gdb)
	a.attackRepo = repo.NewAttackRepo(gdb)
	a.log.Debug("数据持久化层初始化完成")

	concurrency := a.cfg.Attack.Concurrency
	if v, err := strconv.Atoi(a.settingsRepo.GetConcurrency(ctx)); err == nil && v > 0 {
		concurrency = v
	}
	timeout := time.Duration(a.cfg.Attack.TimeoutSec) * time.Second
	if v, err := strconv.Atoi(a.settingsRepo.GetRequestTimeout(ctx)); err == nil && v > 0 {
		timeout = time.Duration(v) * time.Second
	}

	poolCtx, poolCancel := context.WithCancel(context.Background())
	a.cancelPool = poolCancel
	a.pool = pool.New(concurrency, 0)
	a.pool.SetLogger(a.log)
	a.pool.Start(poolCtx)

	a.tracker = tracker.New(30*time.Minute, a.log)
	sender := executor.NewHTTPSender(executor.HTTPSenderOptions{
		Timeout:         timeout,
		FollowRedirects: a.settingsRepo.GetFollowRedirects(ctx),
	})
	a.executor = executor.New(a.pool, a.tracker, sender, a.log)

	a.restoreUIState(ctx)
	a.store.Subscribe(func() {
		a.emit("intruder:state-changed", nil)
	})
}

// Shutdown 负责清理资源。
func (a *App) Shutdown(ctx context.Context) {
	a.log.Info("应用关闭中...")

	if a.tracker != nil {
		a.tracker.Stop()
	}
	if a.cancelPool != nil {
		a.cancelPool()
	}
	if a.pool != nil {
		a.pool.Stop()
	}

	a.persistUIState()

	if a.attackRepo != nil {
		a.attackRepo.Stop()
	}
	if a.gdb != nil {
		if sqlDB, err := a.gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	a.log.Info("应用已关闭")
}

// SetDirty 标记是否存在未保存的修改
func (a *App) SetDirty(dirty bool) {
	a.isDirty = dirty
}

// BeforeClose 在窗口关闭前调用，如果有未保存更改则弹出确认框
func (a *App) BeforeClose(ctx context.Context) bool {
	if !a.isDirty {
		return false
	}

	result, err := runtime.MessageDialog(ctx, runtime.MessageDialogOptions{
		Type:          runtime.QuestionDialog,
		Title:         "Warning",
		Message:       "You have unsaved changes. Are you sure you want to exit?",
		DefaultButton: "No",
		Buttons:       []string{"Yes", "No"},
	})

	if err != nil {
		a.log.Warn("关闭确认对话框出错", "error", err)
		return true
	}

	a.log.Debug("用户选择", "result", result)
	return result == "No"
}

// emit 向前端广播事件，窗口未就绪时静默跳过
func (a *App) emit(event string, payload any) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, event, payload)
}

// notifyUser 向前端推送一条用户可见的瞬时通知
func (a *App) notifyUser(level, message string) {
	a.emit("notification", map[string]string{
		"level":   level,
		"message": message,
	})
}

// restoreUIState 从数据库还原攻击标签页与分组
func (a *App) restoreUIState(ctx context.Context) {
	tabsJSON, err := a.uiStateRepo.Load(ctx, repo.StateModuleIntruder, repo.StateKindTabs)
	if err != nil || tabsJSON == "" {
		return
	}
	groupsJSON, _ := a.uiStateRepo.Load(ctx, repo.StateModuleIntruder, repo.StateKindGroups)

	var storedTabs []*domain.AttackTab
	if err := json.Unmarshal([]byte(tabsJSON), &storedTabs); err != nil {
		a.log.Warn("标签页快照解析失败，放弃还原", "error", err.Error())
		return
	}
	var storedGroups []domain.TabGroup
	if groupsJSON != "" {
		if err := json.Unmarshal([]byte(groupsJSON), &storedGroups); err != nil {
			a.log.Warn("分组快照解析失败", "error", err.Error())
		}
	}

	// 运行状态不跨启动保留
	for _, tab := range storedTabs {
		tab.IsRunning = false
	}
	a.store.Restore(storedTabs, storedGroups)
	a.log.Info("界面状态已还原", "tabs", len(storedTabs), "groups", len(storedGroups))
}

// persistUIState 把当前标签页与分组快照写入数据库
func (a *App) persistUIState() {
	if a.uiStateRepo == nil {
		return
	}
	ctx := context.Background()

	if data, err := json.Marshal(a.store.Tabs()); err == nil {
		_ = a.uiStateRepo.Save(ctx, repo.StateModuleIntruder, repo.StateKindTabs, string(data))
	}
	if data, err := json.Marshal(a.store.Groups()); err == nil {
		_ = a.uiStateRepo.Save(ctx, repo.StateModuleIntruder, repo.StateKindGroups, string(data))
	}
}

// ---------------------------------------------------------------------------
// 标签页与分组
// ---------------------------------------------------------------------------

// AddAttackTab 新建攻击标签页
func (a *App) AddAttackTab() api.Response[TabData] {
	id := a.store.AddTab()
	a.persistUIState()
	for _, tab := range a.store.Tabs() {
		if tab.ID == id {
			return api.OK(TabData{Tab: tab})
		}
	}
	code, msg := a.translateError(domain.ErrTabNotFound)
	return api.Fail[TabData](code, msg)
}

// CloseAttackTab 关闭攻击标签页，同时取消其在途攻击
func (a *App) CloseAttackTab(tabID string) api.Response[api.EmptyData] {
	id := domain.TabID(tabID)
	if a.tracker != nil {
		a.tracker.CancelByTab(id)
	}
	a.store.CloseTab(id)
	a.persistUIState()
	return api.OKEmpty()
}

// ActivateAttackTab 激活攻击标签页
func (a *App) ActivateAttackTab(tabID string) api.Response[api.EmptyData] {
	a.store.ActivateTab(domain.TabID(tabID))
	a.persistUIState()
	return api.OKEmpty()
}

// GetAttackTabs 获取标签页与分组的全量快照
func (a *App) GetAttackTabs() api.Response[TabListData] {
	return api.OK(TabListData{Tabs: a.store.Tabs(), Groups: a.store.Groups()})
}

// RenameAttackTab 重命名攻击标签页
func (a *App) RenameAttackTab(tabID, name string) api.Response[api.EmptyData] {
	a.store.RenameTab(domain.TabID(tabID), name)
	a.persistUIState()
	return api.OKEmpty()
}

// ChangeAttackTabColor 修改攻击标签页颜色
func (a *App) ChangeAttackTabColor(tabID, color string) api.Response[api.EmptyData] {
	a.store.ChangeTabColor(domain.TabID(tabID), color)
	a.persistUIState()
	return api.OKEmpty()
}

// ReorderAttackTabs 按给定顺序重排攻击标签页
func (a *App) ReorderAttackTabs(tabIDs []string) api.Response[api.EmptyData] {
	order := make([]domain.TabID, len(tabIDs))
	for i, id := range tabIDs {
		order[i] = domain.TabID(id)
	}
	a.store.ReorderTabs(order)
	a.persistUIState()
	return api.OKEmpty()
}

// CreateTabGroup 创建分组
func (a *App) CreateTabGroup(name, color string) api.Response[GroupData] {
	id := a.store.CreateGroup(name, color)
	a.persistUIState()
	for _, g := range a.store.Groups() {
		if g.ID == id {
			return api.OK(GroupData{Group: g})
		}
	}
	code, msg := a.translateError(domain.ErrGroupNotFound)
	return api.Fail[GroupData](code, msg)
}

// ChangeAttackTabGroup 变更标签页所属分组，空分组 ID 表示移出分组
func (a *App) ChangeAttackTabGroup(tabID, groupID string) api.Response[api.EmptyData] {
	a.store.ChangeTabGroup(domain.TabID(tabID), domain.GroupID(groupID))
	a.persistUIState()
	return api.OKEmpty()
}

// ReorderTabGroups 按给定顺序重排分组
func (a *App) ReorderTabGroups(groupIDs []string) api.Response[api.EmptyData] {
	order := make([]domain.GroupID, len(groupIDs))
	for i, id := range groupIDs {
		order[i] = domain.GroupID(id)
	}
	a.store.ReorderGroups(order)
	a.persistUIState()
	return api.OKEmpty()
}

// DeleteTabGroup 删除分组，组内标签页回落为未分组
func (a *App) DeleteTabGroup(groupID string) api.Response[api.EmptyData] {
	a.store.DeleteGroup(domain.GroupID(groupID))
	a.persistUIState()
	return api.OKEmpty()
}

// GetTabColors 获取预定义颜色选项
func (a *App) GetTabColors() api.Response[ColorsData] {
	return api.OK(ColorsData{Colors: tabs.DefaultColors()})
}

// OpenTabMenu 打开标签页右键菜单，坐标已做视口夹取
func (a *App) OpenTabMenu(tabID string, x, y, viewportW, viewportH int) api.Response[*tabs.MenuModel] {
	return api.OK(a.tabsCtl.OpenMenu(tabID, x, y, viewportW, viewportH))
}

// CloseTabMenu 关闭标签页右键菜单
func (a *App) CloseTabMenu() api.Response[api.EmptyData] {
	a.tabsCtl.CloseMenu()
	return api.OKEmpty()
}

// SelectMenuColor 应用菜单中选中的颜色。
// 控制器操作的是存储快照，实际变更通过存储提交。
func (a *App) SelectMenuColor(color string) api.Response[api.EmptyData] {
	menu := a.tabsCtl.Menu()
	a.tabsCtl.SelectColor(color)
	if menu != nil {
		a.store.ChangeTabColor(domain.TabID(menu.TabID), color)
	}
	a.persistUIState()
	return api.OKEmpty()
}

// SelectMenuGroup 应用菜单中选中的分组
func (a *App) SelectMenuGroup(groupID string) api.Response[api.EmptyData] {
	menu := a.tabsCtl.Menu()
	a.tabsCtl.SelectGroup(domain.GroupID(groupID))
	if menu != nil {
		a.store.ChangeTabGroup(domain.TabID(menu.TabID), domain.GroupID(groupID))
	}
	a.persistUIState()
	return api.OKEmpty()
}

// StartTabRename 进入标签页就地重命名状态
func (a *App) StartTabRename(tabID, currentName string) api.Response[api.EmptyData] {
	a.tabsCtl.StartRename(tabID, currentName)
	return api.OKEmpty()
}

// UpdateTabRename 更新重命名编辑框内容
func (a *App) UpdateTabRename(name string) api.Response[api.EmptyData] {
	a.tabsCtl.SetEditingName(name)
	return api.OKEmpty()
}

// HandleTabRenameKey 处理重命名编辑框按键，Enter 提交、Escape 取消
func (a *App) HandleTabRenameKey(key string) api.Response[api.EmptyData] {
	editingID, editingName := a.tabsCtl.EditingTab()
	a.tabsCtl.HandleRenameKey(key)
	if key == "Enter" && editingID != "" {
		a.store.RenameTab(domain.TabID(editingID), editingName)
		a.persistUIState()
	}
	return api.OKEmpty()
}

// DragStartTab 开始拖动标签页
func (a *App) DragStartTab(tabID string) api.Response[api.EmptyData] {
	a.tabsCtl.DragStartTab(tabID)
	return api.OKEmpty()
}

// DragEnterTab 拖拽经过目标标签页，返回是否为跨分组拖拽
func (a *App) DragEnterTab(tabID string) api.Response[bool] {
	return api.OK(a.tabsCtl.DragEnterTab(tabID))
}

// tabGroupOf 返回标签页当前所属分组，标签页不存在时为空
func (a *App) tabGroupOf(id domain.TabID) domain.GroupID {
	for _, tab := range a.store.Tabs() {
		if tab.ID == id {
			return tab.GroupID
		}
	}
	return ""
}

// DropOnTab 把拖动中的标签页放到目标标签页上。
// 跨分组落点时先提交分组变更，再提交整体顺序。
func (a *App) DropOnTab(targetID string) api.Response[api.EmptyData] {
	draggedID := domain.TabID(a.tabsCtl.DraggedTab())
	prevGroup := a.tabGroupOf(draggedID)
	a.tabsCtl.DropOnTab(targetID, func(newTabs []*domain.AttackTab) {
		for _, tab := range newTabs {
			if tab.ID == draggedID && tab.GroupID != prevGroup {
				a.store.ChangeTabGroup(tab.ID, tab.GroupID)
				break
			}
		}
		order := make([]domain.TabID, len(newTabs))
		for i, tab := range newTabs {
			order[i] = tab.ID
		}
		a.store.ReorderTabs(order)
	})
	a.persistUIState()
	return api.OKEmpty()
}

// DropOnGroup 把拖动中的标签页或分组放到目标分组上
func (a *App) DropOnGroup(groupID string) api.Response[api.EmptyData] {
	gid := domain.GroupID(groupID)
	draggedID := domain.TabID(a.tabsCtl.DraggedTab())
	a.tabsCtl.DropOnGroup(gid, func(newGroups []domain.TabGroup) {
		order := make([]domain.GroupID, len(newGroups))
		for i, g := range newGroups {
			order[i] = g.ID
		}
		a.store.ReorderGroups(order)
	})
	if draggedID != "" && a.tabGroupOf(draggedID) != gid {
		a.store.ChangeTabGroup(draggedID, gid)
	}
	a.persistUIState()
	return api.OKEmpty()
}

// DropOnNoGroupArea 把拖动中的标签页移出分组
func (a *App) DropOnNoGroupArea() api.Response[bool] {
	draggedID := domain.TabID(a.tabsCtl.DraggedTab())
	moved := a.tabsCtl.DropOnNoGroupArea()
	if moved {
		a.store.ChangeTabGroup(draggedID, "")
		a.persistUIState()
	}
	return api.OK(moved)
}

// DragEnd 拖拽结束，复位全部临时状态
func (a *App) DragEnd() api.Response[api.EmptyData] {
	a.tabsCtl.DragEnd()
	return api.OKEmpty()
}

// ---------------------------------------------------------------------------
// 请求模板与载荷
// ---------------------------------------------------------------------------

// UpdateAttackRequest 替换标签页的原始请求文本
func (a *App) UpdateAttackRequest(tabID, fullRequest string) api.Response[api.EmptyData] {
	a.store.UpdateRequest(domain.TabID(tabID), fullRequest)
	return api.OKEmpty()
}

// ExtractPayloadPositions 从当前请求模板提取载荷位置并保存到标签页。
// payloadMarker 为空时使用默认标记。
func (a *App) ExtractPayloadPositions(tabID, payloadMarker string) api.Response[PositionsData] {
	id := domain.TabID(tabID)
	var positions []domain.PayloadPosition
	found := false
	for _, tab := range a.store.Tabs() {
		if tab.ID == id {
			positions = marker.ExtractPositions(tab.Target.FullRequest, payloadMarker)
			found = true
			break
		}
	}
	if !found {
		code, msg := a.translateError(domain.ErrTabNotFound)
		return api.Fail[PositionsData](code, msg)
	}

	a.store.UpdatePayloadPositions(id, positions)
	return api.OK(PositionsData{Positions: positions})
}

// WrapSelection 给选中文本包上载荷标记，返回更新后的模板
func (a *App) WrapSelection(tabID, selection string) api.Response[RequestData] {
	id := domain.TabID(tabID)
	for _, tab := range a.store.Tabs() {
		if tab.ID == id {
			updated := marker.WrapSelection(tab.Target.FullRequest, selection)
			a.store.UpdateRequest(id, updated)
			return api.OK(RequestData{FullRequest: updated})
		}
	}
	code, msg := a.translateError(domain.ErrTabNotFound)
	return api.Fail[RequestData](code, msg)
}

// ClearAllMarkers 移除模板中的全部载荷标记
func (a *App) ClearAllMarkers(tabID string) api.Response[RequestData] {
	id := domain.TabID(tabID)
	for _, tab := range a.store.Tabs() {
		if tab.ID == id {
			updated := marker.ClearMarkers(tab.Target.FullRequest)
			a.store.UpdateRequest(id, updated)
			a.store.UpdatePayloadPositions(id, []domain.PayloadPosition{})
			return api.OK(RequestData{FullRequest: updated})
		}
	}
	code, msg := a.translateError(domain.ErrTabNotFound)
	return api.Fail[RequestData](code, msg)
}

// UpdateAttackType 修改攻击类型
func (a *App) UpdateAttackType(tabID, attackType string) api.Response[api.EmptyData] {
	a.store.UpdateAttackType(domain.TabID(tabID), domain.AttackType(attackType))
	return api.OKEmpty()
}

// UpdatePayloadSets 整体替换标签页的载荷集
func (a *App) UpdatePayloadSets(tabID, setsJSON string) api.Response[api.EmptyData] {
	var sets []domain.PayloadSet
	if err := json.Unmarshal([]byte(setsJSON), &sets); err != nil {
		code, msg := a.translateError(err)
		return api.Fail[api.EmptyData](code, msg)
	}
	a.store.UpdatePayloadSets(domain.TabID(tabID), sets)
	return api.OKEmpty()
}

// UpdatePayloadSet 替换指定下标的载荷集
func (a *App) UpdatePayloadSet(tabID string, index int, setJSON string) api.Response[api.EmptyData] {
	var set domain.PayloadSet
	if err := json.Unmarshal([]byte(setJSON), &set); err != nil {
		code, msg := a.translateError(err)
		return api.Fail[api.EmptyData](code, msg)
	}
	a.store.UpdatePayloadSet(domain.TabID(tabID), index, set)
	return api.OKEmpty()
}

// AddPayloadItem 向指定载荷集追加载荷项
func (a *App) AddPayloadItem(tabID string, index int, item string) api.Response[api.EmptyData] {
	a.store.AddPayloadItem(domain.TabID(tabID), index, item)
	return api.OKEmpty()
}

// RemovePayloadItem 移除指定载荷项
func (a *App) RemovePayloadItem(tabID string, setIndex, itemIndex int) api.Response[api.EmptyData] {
	a.store.RemovePayloadItem(domain.TabID(tabID), setIndex, itemIndex)
	return api.OKEmpty()
}

// UpdatePayloadSetProcessing 更新指定载荷集的处理规则与编码配置
func (a *App) UpdatePayloadSetProcessing(tabID string, index int, processingJSON string) api.Response[api.EmptyData] {
	var processing domain.PayloadProcessing
	if err := json.Unmarshal([]byte(processingJSON), &processing); err != nil {
		code, msg := a.translateError(err)
		return api.Fail[api.EmptyData](code, msg)
	}
	a.store.UpdatePayloadSetProcessing(domain.TabID(tabID), index, processing)
	return api.OKEmpty()
}

// ClearPayloadItems 清空指定载荷集
func (a *App) ClearPayloadItems(tabID string, index int) api.Response[api.EmptyData] {
	a.store.ClearPayloadItems(domain.TabID(tabID), index)
	return api.OKEmpty()
}

// ---------------------------------------------------------------------------
// 攻击生命周期
// ---------------------------------------------------------------------------

// StartAttack 启动攻击：清空旧结果、初始化进度并开始发包。
// 结果通过 attack-result 事件推送，结束时发出 attack-done。
func (a *App) StartAttack(tabID string) api.Response[AttackData] {
	id := domain.TabID(tabID)
	a.log.Info("启动攻击", "tabId", tabID)

	total, err := a.attack.Start(id)
	if err != nil {
		code, msg := a.translateError(err)
		return api.Fail[AttackData](code, msg)
	}

	var snapshot *domain.AttackTab
	for _, tab := range a.store.Tabs() {
		if tab.ID == id {
			snapshot = tab
			break
		}
	}
	if snapshot == nil {
		code, msg := a.translateError(domain.ErrTabNotFound)
		return api.Fail[AttackData](code, msg)
	}

	spec := &domain.AttackSpec{
		Tab:        id,
		Target:     snapshot.Target,
		Template:   snapshot.Target.FullRequest,
		AttackType: snapshot.AttackType,
		Positions:  snapshot.PayloadPositions,
		Sets:       snapshot.PayloadSets,
	}

	attackID, err := a.executor.Run(a.ctx, spec, a.onAttackEvent)
	if err != nil {
		// 启动失败回滚运行状态
		_ = a.attack.Stop(id)
		code, msg := a.translateError(err)
		return api.Fail[AttackData](code, msg)
	}

	return api.OK(AttackData{AttackID: string(attackID), Total: total})
}

// onAttackEvent 攻击执行事件回调，在发包协程上运行
func (a *App) onAttackEvent(ev executor.Event) {
	if ev.Result != nil {
		a.attack.AddResult(ev.TabID, *ev.Result)
		a.emit("attack-result", map[string]any{
			"tabId":  string(ev.TabID),
			"result": ev.Result,
		})
		return
	}

	if !ev.Done {
		return
	}

	// 结束：补记停止状态并落历史
	if err := a.attack.Stop(ev.TabID); err != nil && err != domain.ErrAttackNotRunning && err != domain.ErrTabNotFound {
		a.log.Err(err, "攻击收尾失败", "tabId", string(ev.TabID))
	}
	a.recordHistory(ev.AttackID, ev.TabID)
	a.persistUIState()

	if ev.Err != nil {
		a.emit("attack-error", map[string]any{
			"tabId": string(ev.TabID),
			"error": ev.Err.Error(),
		})
		a.notifyUser("error", "Attack interrupted: "+ev.Err.Error())
		return
	}
	a.emit("attack-done", map[string]any{"tabId": string(ev.TabID)})
}

// recordHistory 把一次攻击的结果快照写入历史仓库
func (a *App) recordHistory(attackID domain.AttackID, tabID domain.TabID) {
	if a.attackRepo == nil {
		return
	}
	for _, tab := range a.store.Tabs() {
		if tab.ID != tabID {
			continue
		}
		resultsJSON, err := json.Marshal(tab.Results)
		if err != nil {
			a.log.Err(err, "结果序列化失败", "tabId", string(tabID))
			return
		}
		a.attackRepo.Record(model.AttackRecord{
			AttackID:    string(attackID),
			TabID:       string(tab.ID),
			TabName:     tab.Name,
			AttackType:  string(tab.AttackType),
			TargetURL:   tab.Target.URL,
			Total:       tab.Progress.Total,
			Current:     tab.Progress.Current,
			ResultsJSON: string(resultsJSON),
			StartTime:   tab.Progress.StartTime,
			EndTime:     tab.Progress.EndTime,
		})
		return
	}
}

// StopAttack 停止攻击：取消在途请求并写入结束时间
func (a *App) StopAttack(tabID string) api.Response[api.EmptyData] {
	id := domain.TabID(tabID)
	a.log.Info("停止攻击", "tabId", tabID)

	if a.tracker != nil {
		a.tracker.CancelByTab(id)
	}
	if err := a.attack.Stop(id); err != nil {
		code, msg := a.translateError(err)
		return api.Fail[api.EmptyData](code, msg)
	}
	return api.OKEmpty()
}

// GetAttackResults 获取标签页的全部结果与进度
func (a *App) GetAttackResults(tabID string) api.Response[ResultsData] {
	id := domain.TabID(tabID)
	for _, tab := range a.store.Tabs() {
		if tab.ID == id {
			return api.OK(ResultsData{
				Results:  tab.Results,
				Progress: tab.Progress,
				Running:  tab.IsRunning,
			})
		}
	}
	code, msg := a.translateError(domain.ErrTabNotFound)
	return api.Fail[ResultsData](code, msg)
}

// GrepAttackResults 按正则筛选结果，命中的结果被置为选中态
func (a *App) GrepAttackResults(tabID, pattern string) api.Response[GrepData] {
	id := domain.TabID(tabID)
	for _, tab := range a.store.Tabs() {
		if tab.ID != id {
			continue
		}
		matched, err := intruder.MatchResults(tab.Results, pattern)
		if err != nil {
			code, msg := a.translateError(err)
			return api.Fail[GrepData](code, msg)
		}
		a.store.SelectResults(id, matched)
		return api.OK(GrepData{Matched: matched})
	}
	code, msg := a.translateError(domain.ErrTabNotFound)
	return api.Fail[GrepData](code, msg)
}

// SetResultColor 设置结果的标记颜色
func (a *App) SetResultColor(tabID string, resultID int64, color string) api.Response[api.EmptyData] {
	a.store.SetResultColor(domain.TabID(tabID), resultID, color)
	return api.OKEmpty()
}

// SelectResult 选中一条结果，返回拆好的请求与响应报文
func (a *App) SelectResult(tabID string, resultID int64) api.Response[ResultViewData] {
	id := domain.TabID(tabID)
	for _, tab := range a.store.Tabs() {
		if tab.ID != id {
			continue
		}
		for _, result := range tab.Results {
			if result.ID == resultID {
				reqHeaders, reqBody := intruder.SplitResponse(result.Request)
				respHeaders, respBody := intruder.SplitResponse(result.Response)
				return api.OK(ResultViewData{
					Result:   result,
					Request:  viewer.FromParts(reqHeaders, reqBody),
					Response: viewer.FromParts(respHeaders, respBody),
				})
			}
		}
		code, msg := a.translateError(domain.ErrAttackNotFound)
		return api.Fail[ResultViewData](code, msg)
	}
	code, msg := a.translateError(domain.ErrTabNotFound)
	return api.Fail[ResultViewData](code, msg)
}

// ---------------------------------------------------------------------------
// 攻击历史
// ---------------------------------------------------------------------------

// QueryAttackHistory 查询攻击历史
func (a *App) QueryAttackHistory(tabID, attackType, url string, startTime, endTime int64, offset, limit int) api.Response[HistoryData] {
	if a.attackRepo == nil {
		code, msg := a.translateError(domain.ErrDatabaseNotInitialized)
		return api.Fail[HistoryData](code, msg)
	}

	a.attackRepo.Flush()
	records, total, err := a.attackRepo.Query(repo.AttackQueryOptions{
		TabID:      tabID,
		AttackType: attackType,
		TargetURL:  url,
		StartTime:  startTime,
		EndTime:    endTime,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		code, msg := a.translateError(err)
		return api.Fail[HistoryData](code, msg)
	}
	return api.OK(HistoryData{Records: records, Total: total})
}

// GetHistoryResults 读取一条历史记录的结果集，宽松解析后返回规范结果
func (a *App) GetHistoryResults(attackID string) api.Response[ResultsData] {
	if a.attackRepo == nil {
		code, msg := a.translateError(domain.ErrDatabaseNotInitialized)
		return api.Fail[ResultsData](code, msg)
	}

	a.attackRepo.Flush()
	rec, err := a.attackRepo.FindOne(context.Background(), map[string]any{"attack_id": attackID})
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			err = domain.ErrAttackNotFound
		}
		code, msg := a.translateError(err)
		return api.Fail[ResultsData](code, msg)
	}

	results := intruder.FormatResults(repo.Results(rec))
	return api.OK(ResultsData{
		Results: results,
		Progress: domain.Progress{
			Total:     rec.Total,
			Current:   rec.Current,
			StartTime: rec.StartTime,
			EndTime:   rec.EndTime,
		},
	})
}

// CleanupAttackHistory 按保留天数清理攻击历史
func (a *App) CleanupAttackHistory(retentionDays int) api.Response[api.EmptyData] {
	if a.attackRepo == nil {
		code, msg := a.translateError(domain.ErrDatabaseNotInitialized)
		return api.Fail[api.EmptyData](code, msg)
	}
	deleted, err := a.attackRepo.CleanupOld(retentionDays)
	if err != nil {
		code, msg := a.translateError(err)
		return api.Fail[api.EmptyData](code, msg)
	}
	a.log.Info("攻击历史清理完成", "deleted", deleted, "retentionDays", retentionDays)
	return api.OKEmpty()
}

// ---------------------------------------------------------------------------
// Repeater / Decoder
// ---------------------------------------------------------------------------

// AddRepeaterTab 新建重放器标签页
func (a *App) AddRepeaterTab(request string) api.Response[TabIDData] {
	id := a.repeater.AddTab(request)
	return api.OK(TabIDData{TabID: string(id)})
}

// SendRepeaterRequest 重发标签页上的请求并记录响应
func (a *App) SendRepeaterRequest(tabID string) api.Response[MessageData] {
	id := domain.TabID(tabID)
	var request string
	found := false
	for _, tab := range a.repeater.Tabs() {
		if tab.ID == id {
			request = tab.Request
			found = true
			break
		}
	}
	if !found {
		code, msg := a.translateError(domain.ErrTabNotFound)
		return api.Fail[MessageData](code, msg)
	}

	spec, err := executor.ParseTemplate(request, "")
	if err != nil {
		code, msg := a.translateError(err)
		return api.Fail[MessageData](code, msg)
	}

	timeout := time.Duration(a.cfg.Attack.TimeoutSec) * time.Second
	sender := executor.NewHTTPSender(executor.HTTPSenderOptions{Timeout: timeout})
	res, err := sender.Send(a.ctx, spec)
	if err != nil {
		code, msg := a.translateError(err)
		return api.Fail[MessageData](code, msg)
	}

	a.repeater.SetResponse(id, res.Raw)
	return api.OK(MessageData{Message: viewer.Split(res.Raw)})
}

// TransformDecoder 对编解码标签页执行转换
func (a *App) TransformDecoder(tabID, kind, input string, decode bool) api.Response[TransformData] {
	output, err := a.decoder.Transform(domain.TabID(tabID), kind, input, decode)
	if err != nil {
		code, msg := a.translateError(err)
		return api.Fail[TransformData](code, msg)
	}
	return api.OK(TransformData{Output: output})
}

// AddDecoderTab 新建编解码标签页
func (a *App) AddDecoderTab() api.Response[TabIDData] {
	return api.OK(TabIDData{TabID: string(a.decoder.AddTab())})
}

// ---------------------------------------------------------------------------
// 设置与杂项
// ---------------------------------------------------------------------------

// defaultSettingsMap 默认设置的键值表
func defaultSettingsMap() map[string]string {
	defaults := config.GetDefaultSettings()
	return map[string]string{
		model.SettingKeyLanguage:        defaults.Language,
		model.SettingKeyTheme:           defaults.Theme,
		model.SettingKeyConcurrency:     defaults.AttackConcurrency,
		model.SettingKeyRequestTimeout:  defaults.RequestTimeout,
		model.SettingKeyFollowRedirects: defaults.FollowRedirects,
	}
}

// GetSettings 获取所有设置（带默认值）
func (a *App) GetSettings() api.Response[SettingsData] {
	if a.settingsRepo == nil {
		code, msg := a.translateError(domain.ErrDatabaseNotInitialized)
		return api.Fail[SettingsData](code, msg)
	}
	settings, err := a.settingsRepo.GetAllWithDefaults(context.Background(), defaultSettingsMap())
	if err != nil {
		return api.Fail[SettingsData]("GET_SETTINGS_FAILED", "")
	}
	return api.OK(SettingsData{Settings: settings})
}

// GetSetting 获取单个设置
func (a *App) GetSetting(key string) api.Response[SettingData] {
	if a.settingsRepo == nil {
		code, msg := a.translateError(domain.ErrDatabaseNotInitialized)
		return api.Fail[SettingData](code, msg)
	}
	value := a.settingsRepo.GetWithDefault(context.Background(), key, defaultSettingsMap()[key])
	return api.OK(SettingData{Value: value})
}

// SetSetting 设置单个配置项的值
func (a *App) SetSetting(key, value string) api.Response[api.EmptyData] {
	if a.settingsRepo == nil {
		code, msg := a.translateError(domain.ErrDatabaseNotInitialized)
		return api.Fail[api.EmptyData](code, msg)
	}
	if err := a.settingsRepo.Set(context.Background(), key, value); err != nil {
		code, msg := a.translateError(err)
		return api.Fail[api.EmptyData](code, msg)
	}
	return api.OKEmpty()
}

// SaveSettings 保存设置
func (a *App) SaveSettings(settings map[string]string) api.Response[api.EmptyData] {
	if a.settingsRepo == nil {
		code, msg := a.translateError(domain.ErrDatabaseNotInitialized)
		return api.Fail[api.EmptyData](code, msg)
	}
	if err := a.settingsRepo.SetMultiple(context.Background(), settings); err != nil {
		return api.Fail[api.EmptyData]("SAVE_SETTINGS_FAILED", "")
	}
	return api.OKEmpty()
}

// ResetSettings 恢复默认设置
func (a *App) ResetSettings() api.Response[SettingsData] {
	if a.settingsRepo == nil {
		code, msg := a.translateError(domain.ErrDatabaseNotInitialized)
		return api.Fail[SettingsData](code, msg)
	}
	defaults := defaultSettingsMap()
	if err := a.settingsRepo.SetMultiple(context.Background(), defaults); err != nil {
		return api.Fail[SettingsData]("RESET_SETTINGS_FAILED", "")
	}
	return api.OK(SettingsData{Settings: defaults})
}

// SaveUIState 保存任意模块的界面状态快照
func (a *App) SaveUIState(module, kind, stateJSON string) api.Response[api.EmptyData] {
	if a.uiStateRepo == nil {
		code, msg := a.translateError(domain.ErrDatabaseNotInitialized)
		return api.Fail[api.EmptyData](code, msg)
	}
	if err := a.uiStateRepo.Save(context.Background(), module, kind, stateJSON); err != nil {
		code, msg := a.translateError(err)
		return api.Fail[api.EmptyData](code, msg)
	}
	return api.OKEmpty()
}

// LoadUIState 读取界面状态快照，不存在时返回空串
func (a *App) LoadUIState(module, kind string) api.Response[StateData] {
	if a.uiStateRepo == nil {
		code, msg := a.translateError(domain.ErrDatabaseNotInitialized)
		return api.Fail[StateData](code, msg)
	}
	state, err := a.uiStateRepo.Load(context.Background(), module, kind)
	if err != nil {
		code, msg := a.translateError(err)
		return api.Fail[StateData](code, msg)
	}
	return api.OK(StateData{StateJSON: state})
}

// GetVersion 获取版本号
func (a *App) GetVersion() api.Response[VersionData] {
	return api.OK(VersionData{Version: a.cfg.Version})
}

// GetDataDirectory 获取数据目录路径
func (a *App) GetDataDirectory() api.Response[SettingData] {
	dataDir, err := db.GetDefaultDir()
	if err != nil {
		return api.Fail[SettingData]("GET_DATA_DIR_FAILED", "")
	}
	return api.OK(SettingData{Value: dataDir})
}

// GetLogDirectory 获取日志目录路径
func (a *App) GetLogDirectory() api.Response[SettingData] {
	logDir, err := logger.GetDefaultLogDir()
	if err != nil {
		return api.Fail[SettingData]("GET_LOG_DIR_FAILED", "")
	}
	return api.OK(SettingData{Value: logDir})
}

// FormatHTTPMessage 拆分并美化一段原始 HTTP 报文
func (a *App) FormatHTTPMessage(raw string) api.Response[MessageData] {
	return api.OK(MessageData{Message: viewer.Split(raw)})
}
