package summarize

import (
	"context"
	"errors"
)

// WithFallback 先调用 primary，失败时调用且仅调用一次 fallback；
// 两者都失败时返回合并后的错误，errors.Is 对两个原因都成立
func WithFallback[T any](ctx context.Context, primary, fallback func(context.Context) (T, error), onFallback func(error)) (T, error) {
	v, err := primary(ctx)
	if err == nil {
		return v, nil
	}
	if onFallback != nil {
		onFallback(err)
	}
	v, ferr := fallback(ctx)
	if ferr != nil {
		var zero T
		return zero, errors.Join(err, ferr)
	}
	return v, nil
}
