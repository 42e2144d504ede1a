// Package saga 编排"本地事务 + 外部调用"的步骤与补偿
//
// 下单时支付意图的创建发生在数据库事务之内:
// 某一步失败时,已完成的步骤按逆序补偿;
// 全部步骤成功但外层事务提交失败时,调用方再通过Compensate撤销外部副作用。
package saga

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/metrics"
)

// Step Saga中的一个步骤
// Action和Compensate都可以为nil;Compensate需要可重入
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 一次编排
// 同一个Saga实例只能Execute一次
type Saga struct {
	mu       sync.Mutex
	steps    []Step
	executed []Step
	timeout  time.Duration
}

// NewSaga timeout<=0表示不额外限制时长
func NewSaga(timeout time.Duration) *Saga {
	return &Saga{
		steps:   make([]Step, 0, 4),
		timeout: timeout,
	}
}

// AddStep 追加步骤,执行顺序即添加顺序
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
	return s
}

// Execute 顺序执行全部步骤
// 返回的错误包装了失败步骤的原始错误,可用errors.Is/As判断
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			s.compensateQuietly(ctx)
			return fmt.Errorf("saga超时: %w", err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				logger.FromContext(ctx).Warn("saga步骤失败,开始补偿",
					zap.Int("index", i),
					zap.String("step", step.Name),
					zap.Error(err),
				)
				s.compensateQuietly(ctx)
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
			}
		}

		s.mu.Lock()
		s.executed = append(s.executed, step)
		s.mu.Unlock()
	}
	return nil
}

// Compensate 逆序补偿已完成的步骤
// 用于Execute成功之后外层事务仍然失败的情况。补偿后已完成列表清空,重复调用无副作用。
func (s *Saga) Compensate(ctx context.Context) error {
	return s.compensate(context.WithoutCancel(ctx))
}

// Completed 已完成步骤的名称(按执行顺序)
func (s *Saga) Completed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.executed))
	for _, step := range s.executed {
		names = append(names, step.Name)
	}
	return names
}

func (s *Saga) compensateQuietly(ctx context.Context) {
	// 补偿不受原ctx的超时/取消影响,但保留其中的logger和trace
	_ = s.compensate(context.WithoutCancel(ctx))
}

// 某一步补偿失败不会中断后续补偿,所有失败合并返回
func (s *Saga) compensate(ctx context.Context) error {
	s.mu.Lock()
	executed := s.executed
	s.executed = nil
	s.mu.Unlock()

	log := logger.FromContext(ctx)
	var errs []error
	for i := len(executed) - 1; i >= 0; i-- {
		step := executed[i]
		if step.Compensate == nil {
			continue
		}
		err := step.Compensate(ctx)
		metrics.RecordCompensation(step.Name, err)
		if err != nil {
			log.Error("saga补偿失败,需人工介入", zap.String("step", step.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("补偿[%s]失败: %w", step.Name, err))
			continue
		}
		log.Info("saga补偿完成", zap.String("step", step.Name))
	}
	return errors.Join(errs...)
}
