package engine

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// safeGroup is an errgroup whose goroutines turn panics into errors.
type safeGroup struct {
	group  *errgroup.Group
	logger *zap.Logger
}

func newSafeGroup(ctx context.Context, logger *zap.Logger) (*safeGroup, context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	return &safeGroup{group: g, logger: logger}, ctx
}

// Go runs fn in a new goroutine. A panic is logged with its stack and
// returned from Wait as an error.
func (sg *safeGroup) Go(fn func() error) {
	sg.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				sg.logger.Error("goroutine panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = fmt.Errorf("goroutine panic: %v", r)
			}
		}()
		return fn()
	})
}

func (sg *safeGroup) SetLimit(n int) {
	sg.group.SetLimit(n)
}

func (sg *safeGroup) Wait() error {
	return sg.group.Wait()
}
