// Package retengine 是前向链接产生式规则推理引擎的对外入口：工作内存、
// 嵌入 API 与 recognize-act 循环。判别网络本体在 rete 包，规则语法在
// production 包，冲突消解在 agenda 包，声明式规则文件在 ruleset 包。
package retengine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ihewe/retengine/agenda"
	"github.com/ihewe/retengine/production"
	"github.com/ihewe/retengine/rete"
	"github.com/ihewe/retengine/ruleset"
	"github.com/ihewe/retengine/wme"
)

// Engine 汇聚判别网络、冲突消解策略与工作内存，驱动 recognize-act 循环。
type Engine struct {
	logger           *zap.Logger
	network          *rete.Network
	strategy         agenda.Strategy
	defaultMaxCycles int
	clock            Clock

	// fired 记录已经执行过的 (production, token) 对。冲突集合每个周期
	// 无条件重建，已触发的匹配仍会出现在其中；不做去重的话同一个匹配
	// 会被无限重复触发。token 被撤回后再断言会生成新的 token 对象，
	// 所以按指针记录天然满足"撤回再断言后重新可触发"。
	fired map[agenda.Entry]struct{}
}

// New 构造一个引擎。默认使用 no-op logger、Default 冲突消解策略、
// 从 1 开始的单调计数器时钟，循环不设上限。
func New(opts ...Option) *Engine {
	e := &Engine{
		strategy: agenda.NewDefault(),
		clock:    sequentialClock(),
		fired:    make(map[agenda.Entry]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.network = rete.New(e.logger)
	return e
}

// AddProduction 注册一条规则并立即编译进网络：既有事实会被回填，规则
// 注册完成时其匹配集已反映当前工作内存。warnings 是畸形规则检查结果
// （孤立变量），规则仍被接受并按字面匹配。
func (e *Engine) AddProduction(name string, conditions []production.Condition, actions []production.Action) (*production.Production, []error) {
	p, warnings := production.New(name, conditions, actions)
	e.network.AddProduction(p)
	for _, w := range warnings {
		e.logger.Warn("malformed rule accepted", zap.String("rule", name), zap.Error(w))
	}
	return p, warnings
}

// LoadProductions 把（通常来自 ruleset.Load 的）一批已编译规则注册进
// 网络，返回每条规则构造期的畸形规则警告。
func (e *Engine) LoadProductions(productions ...*production.Production) []error {
	var warnings []error
	for _, p := range productions {
		e.network.AddProduction(p)
		warnings = append(warnings, p.Warnings()...)
	}
	return warnings
}

// LoadRuleFile 读取 YAML 规则文件，按 registry 解析动作引用并注册全部
// 规则，是 ruleset 包与引擎之间的粘合入口。
func (e *Engine) LoadRuleFile(path string, registry *ruleset.ActionRegistry) ([]error, error) {
	productions, warnings, err := ruleset.LoadFile(path, registry)
	if err != nil {
		return nil, err
	}
	// LoadFile 已经带回了每条规则构造期的警告，LoadProductions 再算一遍的
	// 结果与之相同，不重复追加。
	e.LoadProductions(productions...)
	return warnings, nil
}

// AssertWME 向工作内存断言一条事实三元组，分配断言序号并推入判别网络。
// 重复断言同一三元组是静默无操作，返回最初断言的那条 WME（原始序号
// 不变，LEX/MEA 的时近性不受重复断言干扰）。
func (e *Engine) AssertWME(id, attr, val wme.Value) wme.WME {
	if existing, ok := e.network.Lookup(id, attr, val); ok {
		return existing
	}
	w := wme.New(id, attr, val, e.clock())
	e.network.AddWME(w)
	return w
}

// RetractWME 从工作内存撤回一条事实：其所在的每个 alpha memory、引用它
// 的每个 token（含级联的全部子孙）、以及相应的生产匹配项都被移除。
// 撤回不存在的 WME 是静默无操作。
func (e *Engine) RetractWME(w wme.WME) {
	e.network.RemoveWME(w)
}

// SetConflictResolutionStrategy 切换冲突消解策略。策略在两次动作执行
// 之间被调用，永远不会在一次传播的中途被调用。
func (e *Engine) SetConflictResolutionStrategy(s agenda.Strategy) {
	e.strategy = s
}

// ProvideFeedback 把一次触发的外部评价（successFactor ∈ [-1,1]）转交给
// 当前策略；非学习型策略会忽略它。
func (e *Engine) ProvideFeedback(p *production.Production, successFactor float64) {
	e.strategy.ProvideFeedback(p, successFactor)
}

// buildConflictSet 把每个生产节点当前的匹配集平铺成冲突集合，再滤掉
// 已经触发过的匹配。token 一经撤回即被销毁、不会复用，所以不再出现在
// 完整冲突集合里的已触发记录永远不可能复活，可以顺手清掉，避免 fired
// 表拖着死 token 无限增长。
func (e *Engine) buildConflictSet() []agenda.Entry {
	all := agenda.Build(e.network.Productions())
	live := make(map[agenda.Entry]struct{}, len(e.fired))
	entries := all[:0]
	for _, entry := range all {
		if _, done := e.fired[entry]; done {
			live[entry] = struct{}{}
		} else {
			entries = append(entries, entry)
		}
	}
	if len(live) < len(e.fired) {
		for k := range e.fired {
			if _, ok := live[k]; !ok {
				delete(e.fired, k)
			}
		}
	}
	return entries
}

// Run 驱动 recognize-act 循环：重建冲突集合 → 策略选择 → 执行动作，
// 直到冲突集合为空或触发次数达到 maxCycles（0 表示使用构造期的
// WithMaxCycles 值，二者都为 0 表示不设上限）。返回实际执行的周期数。
//
// 动作回调里允许重入地调用 AssertWME/RetractWME，变更在回调返回前就已
// 在网络里传播完毕；下一轮的无条件重建让循环对这类中途变更保持健壮。
// 动作 panic 会被恢复并包装成 *ErrActionFailed 返回，此前已完成的工作
// 内存与网络变更全部保留。
func (e *Engine) Run(maxCycles int) (int, error) {
	if e.strategy == nil {
		return 0, ErrNoStrategy
	}
	if maxCycles == 0 {
		maxCycles = e.defaultMaxCycles
	}
	runLogger := e.logger.With(zap.String("run_id", uuid.NewString()))
	cycles := 0
	for {
		entries := e.buildConflictSet()
		if len(entries) == 0 {
			runLogger.Debug("agenda empty, run terminating", zap.Int("cycles", cycles))
			return cycles, nil
		}
		entry, ok := e.strategy.Select(entries)
		if !ok {
			return cycles, nil
		}
		e.fired[entry] = struct{}{}
		runLogger.Debug("rule selected",
			zap.String("rule", entry.Production.Name),
			zap.Int("depth", entry.Token.Depth()),
			zap.Int("agenda", len(entries)))
		if err := e.fire(entry); err != nil {
			return cycles + 1, err
		}
		cycles++
		if maxCycles > 0 && cycles >= maxCycles {
			runLogger.Debug("cycle bound reached", zap.Int("cycles", cycles))
			return cycles, nil
		}
	}
}

func (e *Engine) fire(entry agenda.Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ErrActionFailed{Rule: entry.Production.Name, Cause: r}
		}
	}()
	entry.Production.Execute(entry.Token.Chain(), e)
	return nil
}

// Agenda 返回当前冲突集合的快照（已滤掉触发过的匹配），供测试与
// dump 使用。
func (e *Engine) Agenda() []agenda.Entry {
	return e.buildConflictSet()
}

// WorkingMemory 按断言顺序返回当前存活的全部 WME。
func (e *Engine) WorkingMemory() []wme.WME {
	return e.network.WorkingMemory()
}

// Network 暴露底层判别网络，供调试与结构性断言（例如共享链计数）使用。
func (e *Engine) Network() *rete.Network { return e.network }

// DumpState 生成调试用文本快照：工作内存、alpha/beta 网络、每条规则的
// 匹配集，最后是当前冲突集合。只用于人工排查，格式不构成兼容性承诺。
func (e *Engine) DumpState() string {
	var b strings.Builder
	b.WriteString(e.network.Dump())
	entries := e.buildConflictSet()
	fmt.Fprintf(&b, "agenda: %d entries\n", len(entries))
	for _, entry := range entries {
		fmt.Fprintf(&b, "  %s %s\n", entry.Production.Name, entry.Token)
	}
	return b.String()
}
