package cache

import (
	"context"
	"fmt"
	"time"
)

// CartKey 用户购物车缓存键
func CartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

// GetCartPayload 读取购物车序列化内容
func GetCartPayload(ctx context.Context, userID uint) (string, bool, error) {
	if userID == 0 {
		return "", false, nil
	}
	raw, ok, err := getRaw(ctx, CartKey(userID))
	return string(raw), ok, err
}

// SetCartPayload 缓存购物车序列化内容
func SetCartPayload(ctx context.Context, userID uint, payload string, ttl time.Duration) error {
	if userID == 0 {
		return nil
	}
	return setRaw(ctx, CartKey(userID), []byte(payload), ttl)
}

// DelCart 删除购物车缓存
func DelCart(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, CartKey(userID))
}
