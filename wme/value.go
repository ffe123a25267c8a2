// Package wme 定义 WME 三元组中可出现的取值类型。
//
// 值是"任意可判等的数据"，而非 Go 的 any：用带标签的小结构体代替接口，
// 这样 WME 的判等与哈希不依赖反射，也不依赖具体值的可比较性假设。
package wme

import (
	"fmt"
	"strconv"
)

// Kind 标记 Value 当前持有的具体类型。
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindSymbol
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Value 是 WME 字段可以携带的数据：字符串、整数、浮点数、布尔值，或者
// 符号（标识符/属性位置上的不透明字符串）。两个 Value 只有 Kind 与底层
// 数据都相同时才相等——不同 Kind 的同名数据永不相等，避免 1 == "1" 一类
// 跨类型误判。
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// String 构造一个字符串取值。
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int 构造一个整数取值。
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float 构造一个浮点数取值。
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool 构造一个布尔取值。
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Symbol 构造一个符号取值，用于标识符/属性位置上的不透明字符串。
func Symbol(s string) Value { return Value{kind: KindSymbol, s: s} }

// Kind 返回取值的标签。
func (v Value) Kind() Kind { return v.kind }

// Equal 判断两个取值在标准相等意义下是否相同，供 JoinNode 的一致性测试
// 与 AlphaMemory/BetaMemory 的去重复用。
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString, KindSymbol:
		return v.s == other.s
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	default:
		return false
	}
}

// AsString 返回底层字符串/符号数据，ok 为 false 表示取值不是该类型。
func (v Value) AsString() (string, bool) {
	if v.kind == KindString || v.kind == KindSymbol {
		return v.s, true
	}
	return "", false
}

// AsInt 返回底层整数，ok 为 false 表示取值不是该类型。
func (v Value) AsInt() (int64, bool) {
	if v.kind == KindInt {
		return v.i, true
	}
	return 0, false
}

// AsFloat 返回底层浮点数，ok 为 false 表示取值不是该类型。
func (v Value) AsFloat() (float64, bool) {
	if v.kind == KindFloat {
		return v.f, true
	}
	return 0, false
}

// AsBool 返回底层布尔值，ok 为 false 表示取值不是该类型。
func (v Value) AsBool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

// Raw 将取值解包为一个 any，主要用于绑定映射对外的展示与测试断言。
func (v Value) Raw() any {
	switch v.kind {
	case KindString, KindSymbol:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// key 返回一个稳定的字符串表示，用作 map key（AlphaMemory/BetaMemory 的
// 去重与哈希都基于它），带类型前缀以避免不同 Kind 的字符串化结果互相冲突。
func (v Value) key() string {
	switch v.kind {
	case KindString:
		return "s:" + v.s
	case KindSymbol:
		return "y:" + v.s
	case KindInt:
		return "i:" + strconv.FormatInt(v.i, 10)
	case KindFloat:
		return "f:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	default:
		return "?"
	}
}

// Key 导出 key，供包外代码（join test 调试、状态快照）复用同一套
// 字符串化规则。
func (v Value) Key() string { return v.key() }

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.s)
	case KindSymbol:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return fmt.Sprintf("<invalid:%d>", v.kind)
	}
}

// FromAny 尝试从一个反序列化得到的 any（典型来源：YAML/JSON 规则文件）
// 构造 Value。字符串以 "?" 开头的情况由调用方在更早阶段识别为变量，
// 不会走到这里。
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case string:
		return String(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float64:
		// 整数值的 YAML/JSON 数字常常被解码为 float64；保留原类型会让
		// 规则文件里写 18 却要和 Int(18) 做类型相等比较时处处不一致，
		// 所以在这里收窄成 Int。
		if x == float64(int64(x)) {
			return Int(int64(x)), nil
		}
		return Float(x), nil
	case bool:
		return Bool(x), nil
	default:
		return Value{}, fmt.Errorf("wme: unsupported value literal %T(%v)", raw, raw)
	}
}
