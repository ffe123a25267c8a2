package wme

import "fmt"

// WME 是一条工作内存元素：有序三元组 (identifier, attribute, value)。
// 标识符与属性是符号（不透明字符串），value 则是任意可判等的数据
// （见 Value）。WME 一经创建即视为不可变；相等性与哈希完全由三元组内容
// 决定。
//
// 按照设计说明，跨引用（WME 属于哪些 AlphaMemory、哪些 Token）不作为
// WME 自身的字段存放，而是由 rete.Network 用旁路表维护——这样 wme 包
// 不需要知道 rete 包的存在，避免循环依赖，也避免数据值携带图节点指针。
type WME struct {
	Identifier Value
	Attribute  Value
	Value      Value

	// Timestamp 是断言时刻分配的单调递增序号，供 LEX/MEA 冲突消解
	// 按时近性排序使用。
	Timestamp int64
}

// New 构造一条 WME；Timestamp 由调用方（通常是 engine 的计数器）赋值。
func New(id, attr, val Value, timestamp int64) WME {
	return WME{Identifier: id, Attribute: attr, Value: val, Timestamp: timestamp}
}

// Equal 判断两条 WME 的三元组内容是否相同（Timestamp 不参与比较：
// 两次断言同一三元组必须判等，才能让重复断言成为静默的无操作）。
func (w WME) Equal(other WME) bool {
	return w.Identifier.Equal(other.Identifier) &&
		w.Attribute.Equal(other.Attribute) &&
		w.Value.Equal(other.Value)
}

// Key 返回三元组内容的稳定字符串表示，用作 map key。
func (w WME) Key() string {
	return w.Identifier.Key() + "\x1f" + w.Attribute.Key() + "\x1f" + w.Value.Key()
}

func (w WME) String() string {
	return fmt.Sprintf("(%s %s %s)", w.Identifier, w.Attribute, w.Value)
}
