package production

import (
	"errors"
	"fmt"

	"github.com/ihewe/retengine/wme"
)

// Bindings 是变量名到取值的映射，由 Production.Bind 从匹配的 token 链
// 计算得出，传给动作回调。
type Bindings map[string]wme.Value

// Get 返回变量 name 的绑定值；ok 为 false 表示该变量未出现在匹配中。
func (b Bindings) Get(name string) (wme.Value, bool) {
	v, ok := b[name]
	return v, ok
}

// Engine 是动作回调可以调用的引擎子集——只暴露变更型操作，避免
// production 包反向依赖持有完整引擎的根包。
type Engine interface {
	AssertWME(id, attr, val wme.Value) wme.WME
	RetractWME(w wme.WME)
}

// Action 是一条规则触发时执行的动作回调：(bindings, engine) -> void。
type Action func(bindings Bindings, engine Engine)

// Production 是一条规则的完整语法表示：名字、有序条件列表（固定了网络里
// 从左到右的连接顺序）、有序动作列表。
type Production struct {
	Name       string
	Conditions []Condition
	Actions    []Action

	// Salience 被接受并存储，但没有任何冲突消解策略读取它，DumpState
	// 也不展示它——触发顺序只由策略决定。
	Salience int
}

// New 构造一条生产式规则，并在构造期做"畸形规则"静态检查：条件里
// 出现的变量若在其余条件中从未复现，就发出警告——规则仍然被接受，
// 按字面匹配。
func New(name string, conditions []Condition, actions []Action) (*Production, []error) {
	p := &Production{Name: name, Conditions: conditions, Actions: actions}
	return p, p.checkUnboundVariables()
}

// ErrUnboundVariable 标记一个变量在规则的其余条件中从未复现。
var ErrUnboundVariable = errors.New("production: variable never joins any other condition")

// BindingWarning 描述一次畸形规则检查的结果；它不会阻止规则被接受。
type BindingWarning struct {
	Rule     string
	Variable string
}

func (w *BindingWarning) Error() string {
	return fmt.Sprintf("production %q: variable ?%s appears in exactly one condition", w.Rule, w.Variable)
}

func (w *BindingWarning) Unwrap() error { return ErrUnboundVariable }

// Warnings 重新运行畸形规则检查并返回结果，供在 New 之外的场合（批量
// 加载后）汇总警告。
func (p *Production) Warnings() []error { return p.checkUnboundVariables() }

func (p *Production) checkUnboundVariables() []error {
	counts := map[string]int{}
	for _, c := range p.Conditions {
		for _, f := range c.Fields() {
			if f.IsVariable() {
				counts[f.Variable]++
			}
		}
	}
	var warnings []error
	order := make([]string, 0, len(counts))
	for name := range counts {
		order = append(order, name)
	}
	// 固定警告顺序，避免 map 迭代的不确定性渗入结果
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if order[j] < order[i] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	for _, name := range order {
		if counts[name] == 1 {
			warnings = append(warnings, &BindingWarning{Rule: p.Name, Variable: name})
		}
	}
	return warnings
}

// Bind 按条件顺序（祖先→叶子）遍历 WME 链，把每层条件的三个字段与对应
// WME 的三元组逐位配对：字段是变量时，把变量名绑定到 WME 在该位置的取
// 值，后出现的同名绑定直接覆盖——join 已保证同名变量取值一致，覆盖是
// 幂等的。
func (p *Production) Bind(chain []wme.WME) Bindings {
	bindings := make(Bindings, len(p.Conditions))
	for i, cond := range chain {
		if i >= len(p.Conditions) {
			break
		}
		c := p.Conditions[i]
		bindField(bindings, c.ID, cond.Identifier)
		bindField(bindings, c.Attr, cond.Attribute)
		bindField(bindings, c.Value, cond.Value)
	}
	return bindings
}

func bindField(b Bindings, f Field, val wme.Value) {
	if f.IsVariable() {
		b[f.Variable] = val
	}
}

// Execute 先从匹配链提取变量绑定，再按声明顺序依次调用每个动作。
func (p *Production) Execute(chain []wme.WME, engine Engine) {
	bindings := p.Bind(chain)
	for _, action := range p.Actions {
		action(bindings, engine)
	}
}
