package queue

import (
	"encoding/json"

	"github.com/glotree/pbb-ledger/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderSettle 订单支付后兑换结算任务
	TaskOrderSettle = constants.TaskOrderSettle
)

// OrderSettlePayload 兑换结算任务载荷
type OrderSettlePayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderSettleTask 创建兑换结算任务
func NewOrderSettleTask(payload OrderSettlePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderSettle, body), nil
}
