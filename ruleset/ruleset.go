// Package ruleset 从 YAML 文件加载声明式规则定义，编译成
// production.Production。条件写成 [id, attr, value] 三元组，任一位置
// 都可以用 "?var" 变量语法；id 与 attr 位置的常量是符号（与 AssertWME
// 用 wme.Symbol 断言的事实对齐），value 位置的常量按字面量类型解析。
// 动作通过 ActionRegistry 按名字解析成回调，参数从 with: 下取。
package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ihewe/retengine/production"
	"github.com/ihewe/retengine/wme"
)

// Document 是一份规则文件的顶层结构。
type Document struct {
	Rules []RuleDef `yaml:"rules"`
}

// RuleDef 是单条规则的声明式定义。
type RuleDef struct {
	Name       string          `yaml:"name"`
	Salience   int             `yaml:"salience,omitempty"`
	When       [][]interface{} `yaml:"when"`
	Then       []ActionDef     `yaml:"then"`
}

// ActionDef 引用一个已在 ActionRegistry 注册的动作，附带传给它的参数。
type ActionDef struct {
	Do   string                 `yaml:"do"`
	With map[string]interface{} `yaml:"with,omitempty"`
}

// ActionRegistry 把 YAML 里 "do:" 引用的名字解析成真正的
// production.Action。嵌入方在加载规则文件之前注册好全部具名动作。
type ActionRegistry struct {
	factories map[string]func(with map[string]interface{}) production.Action
}

// NewActionRegistry 构造一个空的动作注册表。
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{factories: make(map[string]func(with map[string]interface{}) production.Action)}
}

// Register 登记一个名为 name 的动作工厂：加载规则文件时，每条引用了
// name 的 ActionDef 都会调用一次 factory，把 YAML 里 with: 下的参数
// 传进去，换回一个绑定好的 production.Action。
func (r *ActionRegistry) Register(name string, factory func(with map[string]interface{}) production.Action) {
	r.factories[name] = factory
}

// ErrUnknownAction 在规则引用了未注册的动作名时返回。
type ErrUnknownAction struct {
	Rule   string
	Action string
}

func (e *ErrUnknownAction) Error() string {
	return fmt.Sprintf("ruleset: rule %q references unregistered action %q", e.Rule, e.Action)
}

// LoadFile 读取并解析 path 处的 YAML 规则文件，用 registry 解析动作
// 引用，编译出全部 production.Production。warnings 汇总了每条规则在
// 构造期产生的畸形规则警告（见 production.New），不会阻止加载成功。
func LoadFile(path string, registry *ActionRegistry) (productions []*production.Production, warnings []error, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ruleset: read %s: %w", path, err)
	}
	return Load(data, registry)
}

// Load 解析 YAML 字节内容，用 registry 解析动作引用，编译出全部
// production.Production。
func Load(data []byte, registry *ActionRegistry) (productions []*production.Production, warnings []error, err error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("ruleset: parse yaml: %w", err)
	}

	productions = make([]*production.Production, 0, len(doc.Rules))
	for _, rd := range doc.Rules {
		p, ws, err := compileRule(rd, registry)
		if err != nil {
			return nil, nil, err
		}
		productions = append(productions, p)
		warnings = append(warnings, ws...)
	}
	return productions, warnings, nil
}

func compileRule(rd RuleDef, registry *ActionRegistry) (*production.Production, []error, error) {
	conditions := make([]production.Condition, 0, len(rd.When))
	for i, triple := range rd.When {
		if len(triple) != 3 {
			return nil, nil, fmt.Errorf("ruleset: rule %q: condition %d has %d fields, want 3", rd.Name, i, len(triple))
		}
		idField, err := production.ParseSymbolField(triple[0])
		if err != nil {
			return nil, nil, fmt.Errorf("ruleset: rule %q: identifier field: %w", rd.Name, err)
		}
		attrField, err := production.ParseSymbolField(triple[1])
		if err != nil {
			return nil, nil, fmt.Errorf("ruleset: rule %q: attribute field: %w", rd.Name, err)
		}
		valField, err := production.ParseField(triple[2])
		if err != nil {
			return nil, nil, fmt.Errorf("ruleset: rule %q: value field: %w", rd.Name, err)
		}
		conditions = append(conditions, production.NewCondition(idField, attrField, valField))
	}

	actions := make([]production.Action, 0, len(rd.Then))
	for _, ad := range rd.Then {
		factory, ok := registry.factories[ad.Do]
		if !ok {
			return nil, nil, &ErrUnknownAction{Rule: rd.Name, Action: ad.Do}
		}
		actions = append(actions, factory(ad.With))
	}

	p, warnings := production.New(rd.Name, conditions, actions)
	p.Salience = rd.Salience
	return p, warnings, nil
}

// AssertLiteral 是给具名动作用的小工具：把 YAML 解出来的字面量参数
// （字符串/数字/布尔）转换成 wme.Value，供动作里手工构造断言用。
func AssertLiteral(raw interface{}) (wme.Value, error) {
	return wme.FromAny(raw)
}
