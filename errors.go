package retengine

import (
	"errors"
	"fmt"
)

// ErrActionFailed 包装一次动作回调执行期间恢复到的 panic，让
// recognize-act 循环可以把规则内部的意外崩溃转成一个普通 error 返回给
// 调用方，而不是让整个进程退出。
type ErrActionFailed struct {
	Rule  string
	Cause any
}

func (e *ErrActionFailed) Error() string {
	return fmt.Sprintf("retengine: action of rule %q panicked: %v", e.Rule, e.Cause)
}

// ErrNoStrategy 在冲突消解策略被设成 nil 后调用 Run 时返回（New 默认
// 装好 Default 策略）。
var ErrNoStrategy = errors.New("retengine: no conflict resolution strategy configured")
