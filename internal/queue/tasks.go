package queue

import (
	"encoding/json"

	"github.com/grabhealth-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCommissionSettle 佣金结算任务
	TaskCommissionSettle = constants.TaskCommissionSettle
	// TaskBookingReminder 预约提醒任务
	TaskBookingReminder = constants.TaskBookingReminder
	// TaskOrderTimeoutCancel 超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
)

// CommissionSettlePayload 佣金结算任务载荷
type CommissionSettlePayload struct {
	OrderID uint `json:"order_id"`
}

// BookingReminderPayload 预约提醒任务载荷
type BookingReminderPayload struct {
	BookingID uint `json:"booking_id"`
}

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// NewCommissionSettleTask 创建佣金结算任务
func NewCommissionSettleTask(payload CommissionSettlePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommissionSettle, body), nil
}

// NewBookingReminderTask 创建预约提醒任务
func NewBookingReminderTask(payload BookingReminderPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingReminder, body), nil
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}
