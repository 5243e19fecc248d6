package router

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求中取限流维度，空串时退回客户端 IP
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流；首次超限时把封禁期延长到 BlockSeconds
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	Message       string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// KEYS[1] 计数键；ARGV 窗口秒数、上限、封禁秒数。返回 {计数, 剩余秒数}
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local block = tonumber(ARGV[3])
if count == tonumber(ARGV[2]) + 1 and block > tonumber(ARGV[1]) then
	redis.call("EXPIRE", KEYS[1], block)
end
return {count, redis.call("TTL", KEYS[1])}
`)

// retryAfter 超限时返回客户端需等待的秒数，未超限返回 0
func (r RateLimitRule) retryAfter(count, ttl int64) int {
	if count <= int64(r.MaxRequests) {
		return 0
	}
	if ttl > 0 {
		return int(ttl)
	}
	if r.WindowSeconds > 0 {
		return r.WindowSeconds
	}
	return 1
}

func (r RateLimitRule) message(wait int) string {
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "too many requests"
	}
	return msg + ", retry in " + strconv.Itoa(wait) + " seconds"
}

// RateLimitMiddleware Redis 固定窗口限流，Redis 不可用时放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}
		key := rateLimitKey(c, rule.Prefix, keyFunc)

		values, err := fixedWindowScript.Run(c.Request.Context(), client, []string{key},
			rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Int64Slice()
		if err != nil || len(values) < 2 {
			logger.Warnw("rate_limit_unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		if wait := rule.retryAfter(values[0], values[1]); wait > 0 {
			c.Header("Retry-After", strconv.Itoa(wait))
			response.AbortWithError(c, response.CodeTooManyRequests, rule.message(wait))
			return
		}
		c.Next()
	}
}

func rateLimitKey(c *gin.Context, prefix string, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// KeyByIP 按客户端 IP
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByUserOrIP 下单限流：登录用户按 ID，游客按 IP
func KeyByUserOrIP(c *gin.Context) string {
	if id := c.GetUint(handlershared.UserIDKey); id > 0 {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	return "ip:" + c.ClientIP()
}

// KeyByIPAndJSONField 登录限流：请求体中的账号（小写）加 IP
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(peekJSONStringField(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

// peekJSONStringField 读取请求体中的字符串字段，读完后恢复 Body 供后续绑定
func peekJSONStringField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var text string
	if err := json.Unmarshal(payload[field], &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
