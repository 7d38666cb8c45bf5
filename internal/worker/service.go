package worker

import (
	"context"
	"errors"
	"time"

	"github.com/grabhealth-next/internal/config"
	"github.com/grabhealth-next/internal/logger"
	"github.com/grabhealth-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	expiredOrderSweepInterval = time.Minute
	expiredOrderSweepBatch    = 200
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.OrderService != nil {
		go s.runExpiredOrderSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runExpiredOrderSweepLoop 兜底扫描超时未支付订单。
// 延迟任务丢失时由该循环补偿取消。
func (s *Service) runExpiredOrderSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OrderService == nil {
		return
	}
	runOnce := func() {
		cancelled, err := s.consumer.OrderService.SweepExpiredOrders(expiredOrderSweepBatch)
		if err != nil {
			logger.Warnw("worker_expired_order_sweep_failed", "error", err)
			return
		}
		if cancelled > 0 {
			logger.Infow("worker_expired_order_sweep_done", "cancelled", cancelled)
		}
	}
	runOnce()

	ticker := time.NewTicker(expiredOrderSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
