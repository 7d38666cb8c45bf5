package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/grabhealth-next/internal/logger"
	"github.com/grabhealth-next/internal/provider"
	"github.com/grabhealth-next/internal/queue"
	"github.com/grabhealth-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCommissionSettle, c.handleCommissionSettle)
	mux.HandleFunc(queue.TaskBookingReminder, c.handleBookingReminder)
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
}

func (c *Consumer) handleCommissionSettle(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_commission_settle_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CommissionSettlePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_commission_settle_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_commission_settle_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.CommissionService == nil {
		logger.Warnw("worker_commission_settle_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	created, err := c.CommissionService.CalculateForOrder(payload.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Debugw("worker_commission_settle_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_commission_settle_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	logger.Debugw("worker_commission_settle_done", "order_id", payload.OrderID, "records", created)
	return nil
}

func (c *Consumer) handleBookingReminder(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_booking_reminder_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.BookingReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_booking_reminder_unmarshal_failed", "error", err)
		return err
	}
	if payload.BookingID == 0 {
		logger.Debugw("worker_booking_reminder_skip_invalid_payload", "booking_id", payload.BookingID)
		return nil
	}
	if c.BookingService == nil {
		logger.Warnw("worker_booking_reminder_skip_service_nil", "booking_id", payload.BookingID)
		return nil
	}
	if err := c.BookingService.SendReminder(payload.BookingID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Debugw("worker_booking_reminder_skip_not_found", "booking_id", payload.BookingID)
			return nil
		}
		logger.Warnw("worker_booking_reminder_failed", "booking_id", payload.BookingID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if _, err := c.OrderService.CancelExpiredOrder(payload.OrderID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}
