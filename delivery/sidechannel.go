package delivery

import (
	"context"
	"time"

	"github.com/studyhub/collab/concurrency"
	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/consts"
	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/data/metrics"
	"github.com/studyhub/collab/logging/logger"
)

const defaultTypingConcurrency = 8

// SideChannel writes read receipts and typing status. Every failure is logged
// and swallowed; nothing here affects message delivery.
type SideChannel struct {
	store     data.DocumentStore
	limiter   *concurrency.Manager
	collector metrics.Collector
	now       func() time.Time
}

// NewSideChannel creates a side channel allowing at most
// cfg.TypingConcurrency typing updates in flight. A nil cfg allows 8.
func NewSideChannel(store data.DocumentStore, cfg *config.Delivery) *SideChannel {
	limit := int32(defaultTypingConcurrency)
	if cfg != nil && cfg.TypingConcurrency > 0 {
		limit = int32(cfg.TypingConcurrency)
	}
	limiter, _ := concurrency.NewManager(limit)
	return &SideChannel{store: store, limiter: limiter, collector: metrics.NoOpCollector{}, now: time.Now}
}

// MarkRead records that userID has read messageID in chatID.
func (c *SideChannel) MarkRead(ctx context.Context, chatID, messageID, userID string) {
	id := chatID + "_" + messageID + "_" + userID
	err := c.store.Set(ctx, consts.ReceiptsCollection, id, map[string]any{
		consts.FieldChatID: chatID,
		"messageId":        messageID,
		consts.FieldUserID: userID,
		"readAt":           c.now().UTC(),
	})
	c.collector.StoreOperation("sidechannel", "read_receipt", err)
	if err != nil {
		logger.Warnf(ctx, "read receipt for %s failed: %v", messageID, err)
	}
}

// SetTyping records whether userID is typing in chatID. The update is dropped
// when too many are already in flight; a newer one will follow.
func (c *SideChannel) SetTyping(ctx context.Context, chatID, userID string, typing bool) {
	if !c.limiter.TryAcquire() {
		logger.Debugf(ctx, "typing update for %s dropped, limiter saturated", chatID)
		return
	}
	defer func() {
		if err := c.limiter.Release(); err != nil {
			logger.Errorf(ctx, "typing limiter: %v", err)
		}
	}()

	err := c.store.Set(ctx, consts.TypingCollection, chatID+"_"+userID, map[string]any{
		consts.FieldChatID: chatID,
		consts.FieldUserID: userID,
		"typing":           typing,
		"updatedAt":        c.now().UTC(),
	})
	c.collector.StoreOperation("sidechannel", "typing", err)
	if err != nil {
		logger.Warnf(ctx, "typing update for %s failed: %v", chatID, err)
	}
}

// SetCollector records side channel writes on m.
func (c *SideChannel) SetCollector(m metrics.Collector) {
	c.collector = m
}
