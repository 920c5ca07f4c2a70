package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/glotree/pbb-ledger/internal/logger"
	"github.com/glotree/pbb-ledger/internal/queue"
	"github.com/glotree/pbb-ledger/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 队列任务消费者
type Consumer struct {
	SettlementService *service.SettlementService
}

// NewConsumer 创建队列任务消费者
func NewConsumer(settlementSvc *service.SettlementService) *Consumer {
	return &Consumer{SettlementService: settlementSvc}
}

// Register 注册任务处理器
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc(queue.TaskOrderSettle, c.handleOrderSettle)
}

// handleOrderSettle 处理兑换结算任务，失败返回错误让 asynq 重试
func (c *Consumer) handleOrderSettle(ctx context.Context, task *asynq.Task) error {
	var payload queue.OrderSettlePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal order settle payload: %w", err)
	}
	if payload.OrderID == 0 {
		logger.Warnw("worker_order_settle_invalid_payload", "payload", string(task.Payload()))
		return nil
	}
	if c.SettlementService == nil {
		return fmt.Errorf("settlement service not initialized")
	}
	if err := c.SettlementService.HandleOrderPaid(ctx, payload.OrderID); err != nil {
		logger.Warnw("worker_order_settle_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}
