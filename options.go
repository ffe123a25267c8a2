package retengine

import (
	"go.uber.org/zap"

	"github.com/ihewe/retengine/agenda"
)

// Option 是构造 Engine 时的 functional-option：日志、冲突消解策略、
// 循环上限、时间戳来源都在构造期注入，引擎不读任何文件或环境变量。
type Option func(*Engine)

// WithLogger 注入一个 zap.Logger，替换掉默认的 no-op logger。Engine
// 把它原样转发给内部的 rete.Network。
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithStrategy 设置冲突消解策略；默认是 agenda.DefaultStrategy。
func WithStrategy(s agenda.Strategy) Option {
	return func(e *Engine) { e.strategy = s }
}

// WithMaxCycles 设置 Run 的默认循环上限（Run 也接受显式覆盖该值的参数）。
// 零值表示不限制，直到 agenda 为空才停止。
func WithMaxCycles(n int) Option {
	return func(e *Engine) { e.defaultMaxCycles = n }
}

// Clock 产生单调递增的断言序号，供每条新 WME 的 Timestamp 字段使用。
// 默认实现是一个从 1 开始的整型计数器，与墙钟时间无关——冲突消解策略
// 只关心相对先后顺序,不关心真实时间。
type Clock func() int64

// WithClock 替换默认的单调计数器时钟，主要用于测试里需要把时间戳钉死
// 在某些特定值上的场景。
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func sequentialClock() Clock {
	var next int64
	return func() int64 {
		next++
		return next
	}
}
