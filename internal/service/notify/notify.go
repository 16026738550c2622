// Package notify 通过 Redis pub/sub 向前端推送实时更新
package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis channel 前缀
	channelPrefix = "inkwell:conversation:"
	// 发布操作的超时
	publishTimeout = 2 * time.Second
)

// TurnEvent 某个会话新增了一条消息
type TurnEvent struct {
	ConversationID string    `json:"conversation_id"`
	TurnID         string    `json:"turn_id"`
	Role           string    `json:"role"`
	ModelUsed      string    `json:"model_used,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Notifier 实时通知器
// 所有通知都是尽力而为：失败只记日志，绝不影响调用方
type Notifier struct {
	redis *redis.Client
}

// NewNotifier 创建通知器，redisClient 可为 nil（通知被禁用）
func NewNotifier(redisClient *redis.Client) *Notifier {
	return &Notifier{redis: redisClient}
}

// TurnAdded 发布消息新增事件
func (n *Notifier) TurnAdded(ctx context.Context, evt *TurnEvent) {
	if n == nil || n.redis == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("notify: failed to encode turn event: %v", err)
		return
	}

	// 独立超时，不复用请求的 ctx：请求可能已被客户端断开
	pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := n.redis.Publish(pubCtx, channelPrefix+evt.ConversationID, payload).Err(); err != nil {
		log.Printf("notify: failed to publish turn event for conversation %s: %v", evt.ConversationID, err)
	}
}
