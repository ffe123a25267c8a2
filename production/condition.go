// Package production 描述规则的语法侧表示：条件、变量绑定、动作签名。
// 条件是 (identifier, attribute, value) 三元组，每个位置要么是常量，
// 要么是变量（表层语法以 "?" 开头）。
package production

import (
	"fmt"
	"strings"

	"github.com/ihewe/retengine/wme"
)

// FieldKind 标记一个条件字段是常量还是变量。
type FieldKind int

const (
	FieldConstant FieldKind = iota
	FieldVariable
)

// Field 是条件三元组里的一个位置：标识符、属性或取值位置。常量位置携带
// 具体的 wme.Value；变量位置携带变量名（规范书写形式以 "?" 开头，但
// 数据层只关心名字本身）。
type Field struct {
	Kind     FieldKind
	Constant wme.Value
	Variable string
}

// Const 构造一个常量字段。
func Const(v wme.Value) Field { return Field{Kind: FieldConstant, Constant: v} }

// Var 构造一个变量字段，name 不含前导 "?"。
func Var(name string) Field { return Field{Kind: FieldVariable, Variable: name} }

// IsVariable 是否为变量字段。
func (f Field) IsVariable() bool { return f.Kind == FieldVariable }

func (f Field) String() string {
	if f.Kind == FieldVariable {
		return "?" + f.Variable
	}
	return f.Constant.String()
}

// ParseField 按表层语法解析取值位置的字段：前导 "?" 记号表示变量，
// 否则是常量，类型由 raw 的动态类型决定（ruleset YAML 加载器据此构造
// 字段）。
func ParseField(raw any) (Field, error) {
	if s, ok := raw.(string); ok && strings.HasPrefix(s, "?") {
		return Var(strings.TrimPrefix(s, "?")), nil
	}
	v, err := wme.FromAny(raw)
	if err != nil {
		return Field{}, err
	}
	return Const(v), nil
}

// ParseSymbolField 解析标识符/属性位置的字段：前导 "?" 表示变量，其余
// 字符串是符号常量。标识符与属性位置只承载符号，常量必须是字符串字面
// 量——断言事实时这两个位置同样以 wme.Symbol 构造，二者的判等才对得上。
func ParseSymbolField(raw any) (Field, error) {
	s, ok := raw.(string)
	if !ok {
		return Field{}, fmt.Errorf("production: identifier/attribute must be a symbol, got %T(%v)", raw, raw)
	}
	if strings.HasPrefix(s, "?") {
		return Var(strings.TrimPrefix(s, "?")), nil
	}
	return Const(wme.Symbol(s)), nil
}

// Condition 是单个条件：(id-field, attr-field, value-field)。
type Condition struct {
	ID    Field
	Attr  Field
	Value Field
}

// NewCondition 构造一个条件。
func NewCondition(id, attr, value Field) Condition {
	return Condition{ID: id, Attr: attr, Value: value}
}

// Fields 按 (id, attr, value) 顺序返回条件的三个字段，供 alpha trie
// 构建与 join test 推导遍历使用。
func (c Condition) Fields() [3]Field { return [3]Field{c.ID, c.Attr, c.Value} }

func (c Condition) String() string {
	return "(" + c.ID.String() + " " + c.Attr.String() + " " + c.Value.String() + ")"
}
