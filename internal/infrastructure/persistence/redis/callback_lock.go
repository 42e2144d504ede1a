package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// releaseScript 只删除自己持有的锁,避免锁过期后误删别人的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CallbackLock 支付回调去重锁
// 同一交易号的回调(买家重复点击、PayPal重试)同一时刻只允许一个在处理,
// 配合支付状态检查实现幂等
type CallbackLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCallbackLock ttl应大于一次支付平台调用的超时时间
func NewCallbackLock(client *redis.Client, ttl time.Duration) *CallbackLock {
	return &CallbackLock{client: client, ttl: ttl}
}

// Acquire SET key token NX PX ttl
// 已被占用返回ErrCallbackInProgress;成功时返回release函数
func (l *CallbackLock) Acquire(ctx context.Context, transactionID string) (func(), error) {
	key := "payment:callback:" + transactionID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, apperrors.ErrRedisError.WithCause(err)
	}
	if !ok {
		return nil, apperrors.ErrCallbackInProgress
	}

	release := func() {
		// 请求ctx可能已取消,释放锁不受影响
		_ = releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{key}, token).Err()
	}
	return release, nil
}
