package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ calls []string }

func (r *recorder) step(name string, err error) func(context.Context) error {
	return func(context.Context) error {
		r.calls = append(r.calls, name)
		return err
	}
}

func TestSaga_Execute(t *testing.T) {
	t.Run("全部成功不触发补偿", func(t *testing.T) {
		rec := &recorder{}
		s := NewSaga(5*time.Second).
			AddStep("创建支付", rec.step("创建支付", nil), rec.step("撤销支付", nil)).
			AddStep("保存支付记录", rec.step("保存支付记录", nil), nil)

		require.NoError(t, s.Execute(context.Background()))
		assert.Equal(t, []string{"创建支付", "保存支付记录"}, rec.calls)
		assert.Equal(t, []string{"创建支付", "保存支付记录"}, s.Completed())
	})

	t.Run("失败时逆序补偿已完成步骤", func(t *testing.T) {
		rec := &recorder{}
		errSave := errors.New("duplicate entry")
		s := NewSaga(0).
			AddStep("A", rec.step("A", nil), rec.step("undo A", nil)).
			AddStep("B", rec.step("B", nil), rec.step("undo B", nil)).
			AddStep("C", rec.step("C", errSave), rec.step("undo C", nil))

		err := s.Execute(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, errSave)
		assert.Equal(t, []string{"A", "B", "C", "undo B", "undo A"}, rec.calls)
		assert.Empty(t, s.Completed())
	})

	t.Run("补偿失败不影响其余补偿", func(t *testing.T) {
		rec := &recorder{}
		s := NewSaga(0).
			AddStep("A", rec.step("A", nil), rec.step("undo A", nil)).
			AddStep("B", rec.step("B", nil), rec.step("undo B", errors.New("void failed"))).
			AddStep("C", rec.step("C", errors.New("boom")), nil)

		require.Error(t, s.Execute(context.Background()))
		assert.Equal(t, []string{"A", "B", "C", "undo B", "undo A"}, rec.calls)
	})

	t.Run("ctx已取消时不执行后续步骤", func(t *testing.T) {
		rec := &recorder{}
		ctx, cancel := context.WithCancel(context.Background())
		s := NewSaga(0).
			AddStep("A", func(context.Context) error { rec.calls = append(rec.calls, "A"); cancel(); return nil }, rec.step("undo A", nil)).
			AddStep("B", rec.step("B", nil), nil)

		err := s.Execute(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{"A", "undo A"}, rec.calls)
	})
}

func TestSaga_Compensate(t *testing.T) {
	rec := &recorder{}
	s := NewSaga(0).
		AddStep("创建支付", rec.step("创建支付", nil), rec.step("撤销支付", nil)).
		AddStep("保存支付记录", rec.step("保存支付记录", nil), nil)
	require.NoError(t, s.Execute(context.Background()))

	t.Run("事务提交失败后补偿", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, s.Compensate(ctx))
		assert.Equal(t, []string{"创建支付", "保存支付记录", "撤销支付"}, rec.calls)
	})

	t.Run("重复补偿无副作用", func(t *testing.T) {
		require.NoError(t, s.Compensate(context.Background()))
		assert.Len(t, rec.calls, 3)
	})

	t.Run("补偿错误被合并返回", func(t *testing.T) {
		errVoid := errors.New("void failed")
		s := NewSaga(0).AddStep("A", nil, func(context.Context) error { return errVoid })
		require.NoError(t, s.Execute(context.Background()))
		assert.ErrorIs(t, s.Compensate(context.Background()), errVoid)
	})
}
