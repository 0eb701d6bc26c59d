package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
	"github.com/terminusgps/terminusgps-notifications/internal/remote"
	"github.com/terminusgps/terminusgps-notifications/internal/repository"
	"github.com/terminusgps/terminusgps-notifications/internal/wire"
	redispkg "github.com/terminusgps/terminusgps-notifications/pkg/redis"
)

// RemoteAPI 远程平台客户端接口（便于测试替换）
type RemoteAPI interface {
	Login(ctx context.Context, token string) (*remote.Session, error)
	Logout(ctx context.Context, sess *remote.Session)
	ResolveResource(ctx context.Context, sess *remote.Session, name string) (*remote.Resource, error)
	SearchUnits(ctx context.Context, sess *remote.Session) ([]remote.Unit, error)
	UpdateNotification(ctx context.Context, sess *remote.Session, payload *wire.Payload) (int64, error)
}

// 确保实现了接口
var _ RemoteAPI = (*remote.Client)(nil)

// 生命周期事件名
const (
	EventCreated  = "created"
	EventUpdated  = "updated"
	EventDeleted  = "deleted"
	EventEnabled  = "enabled"
	EventDisabled = "disabled"
)

// NotificationService 通知同步服务
// 职责：
// 1. 本地与远程的双写顺序（远程成功后才落地/删除本地记录）
// 2. 派生字段重算（text/actions 随模板与投递方式变化）
// 3. 远程资源解析与缓存（customer.resource_id）
// 4. 生命周期事件发布（Redis Streams）
//
// 远程与本地之间没有事务耦合：create 先远程后本地，失败的 create
// 不留本地记录；update/delete 先远程后本地，失败时本地保持原样。
// 远程失败一律上抛，不自动重试。
type NotificationService struct {
	notificationsRepo repository.NotificationsRepository
	customersRepo     repository.CustomersRepository
	remote            RemoteAPI
	redisClient       *redispkg.Client
	eventStream       string
	callbackURL       string
	resourceName      string
	logger            *zap.Logger
}

// NewNotificationService 创建通知同步服务
func NewNotificationService(
	notificationsRepo repository.NotificationsRepository,
	customersRepo repository.CustomersRepository,
	remoteAPI RemoteAPI,
	redisClient *redispkg.Client,
	eventStream string,
	callbackURL string,
	resourceName string,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationsRepo: notificationsRepo,
		customersRepo:     customersRepo,
		remote:            remoteAPI,
		redisClient:       redisClient,
		eventStream:       eventStream,
		callbackURL:       callbackURL,
		resourceName:      resourceName,
		logger:            logger,
	}
}

// login 取客户凭据并登录远程平台
func (s *NotificationService) login(ctx context.Context, customer *domain.Customer) (*remote.Session, error) {
	if !customer.HasCredential() {
		return nil, remote.ErrMissingCredential
	}
	sess, err := s.remote.Login(ctx, customer.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to login to remote platform: %w", err)
	}
	return sess, nil
}

// resolveResourceID 返回客户的通知资源标识，必要时远程解析并回写
func (s *NotificationService) resolveResourceID(ctx context.Context, sess *remote.Session, customer *domain.Customer) (int64, error) {
	if customer.ResourceID != 0 {
		return customer.ResourceID, nil
	}

	res, err := s.remote.ResolveResource(ctx, sess, s.resourceName)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve notification resource: %w", err)
	}

	if err := s.customersRepo.UpdateResourceID(ctx, customer.ID, res.ID); err != nil {
		// 解析结果下次仍可重新获取，回写失败只记日志
		s.logger.Warn("failed to persist resolved resource id",
			zap.String("customer_id", customer.ID),
			zap.Int64("resource_id", res.ID),
			zap.Error(err),
		)
	}
	customer.ResourceID = res.ID

	return res.ID, nil
}

// publishEvent 发布生命周期事件，失败只记日志不影响主流程
func (s *NotificationService) publishEvent(ctx context.Context, event string, n *domain.Notification) {
	if s.redisClient == nil || s.eventStream == "" {
		return
	}
	_, err := redispkg.PublishToStream(ctx, s.redisClient, s.eventStream, map[string]interface{}{
		"event":           event,
		"notification_id": n.ID,
		"customer_id":     n.CustomerID,
		"remote_id":       n.RemoteID,
		"trigger_kind":    n.TriggerKind.String(),
	})
	if err != nil {
		s.logger.Warn("failed to publish lifecycle event",
			zap.String("event", event),
			zap.String("notification_id", n.ID),
			zap.Error(err),
		)
	}
}

// render 重算派生字段
func (s *NotificationService) render(n *domain.Notification) error {
	n.Text = wire.RenderText(n.Message)
	actions, err := wire.RenderActions(n.Method, s.callbackURL)
	if err != nil {
		return err
	}
	n.Actions = actions
	return nil
}

// CreateNotification 创建通知：先远程后本地
// 远程创建失败不留任何本地记录；远程成功后本地落地失败时执行
// 补偿删除，避免远程残留孤儿通知
func (s *NotificationService) CreateNotification(ctx context.Context, customerID string, n *domain.Notification) (*domain.Notification, error) {
	customer, err := s.customersRepo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CustomerID = customerID
	n.Enabled = true
	n.RemoteID = 0

	if err := s.render(n); err != nil {
		return nil, err
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}

	sess, err := s.login(ctx, customer)
	if err != nil {
		return nil, err
	}
	defer s.remote.Logout(ctx, sess)

	resourceID, err := s.resolveResourceID(ctx, sess, customer)
	if err != nil {
		return nil, err
	}

	remoteID, err := s.remote.UpdateNotification(ctx, sess, wire.EncodeCreate(resourceID, n))
	if err != nil {
		return nil, fmt.Errorf("failed to create remote notification: %w", err)
	}

	// 远程标识只在此处赋值一次，之后不可变
	n.RemoteID = remoteID

	if err := s.notificationsRepo.CreateNotification(ctx, n); err != nil {
		s.logger.Error("local insert failed after remote create, compensating",
			zap.String("notification_id", n.ID),
			zap.Int64("remote_id", remoteID),
			zap.Error(err),
		)
		if _, derr := s.remote.UpdateNotification(ctx, sess, wire.EncodeDelete(resourceID, n)); derr != nil {
			s.logger.Error("compensating remote delete failed, orphan remote notification",
				zap.Int64("remote_id", remoteID),
				zap.Error(derr),
			)
		}
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	s.logger.Info("notification created",
		zap.String("notification_id", n.ID),
		zap.String("customer_id", customerID),
		zap.Int64("remote_id", remoteID),
		zap.String("trigger_kind", n.TriggerKind.String()),
	)
	s.publishEvent(ctx, EventCreated, n)

	return n, nil
}

// UpdateNotification 更新通知：先远程后本地，失败时本地保持原样
// 可变字段以传入实体为准；remote_id 以库中记录为准，不接受外部修改
func (s *NotificationService) UpdateNotification(ctx context.Context, customerID string, n *domain.Notification) (*domain.Notification, error) {
	customer, err := s.customersRepo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	existing, err := s.notificationsRepo.GetNotification(ctx, customerID, n.ID)
	if err != nil {
		return nil, err
	}
	n.CustomerID = customerID
	n.RemoteID = existing.RemoteID
	n.Enabled = existing.Enabled
	n.CreatedAt = existing.CreatedAt

	if err := s.render(n); err != nil {
		return nil, err
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}

	// 远程可见状态未变化的重复提交既不发远程调用也不落库
	if wire.SameRemoteState(existing, n) {
		s.logger.Debug("notification unchanged, skipping remote update",
			zap.String("notification_id", n.ID),
		)
		return existing, nil
	}

	sess, err := s.login(ctx, customer)
	if err != nil {
		return nil, err
	}
	defer s.remote.Logout(ctx, sess)

	resourceID, err := s.resolveResourceID(ctx, sess, customer)
	if err != nil {
		return nil, err
	}

	if _, err := s.remote.UpdateNotification(ctx, sess, wire.EncodeUpdate(resourceID, n)); err != nil {
		return nil, fmt.Errorf("failed to update remote notification: %w", err)
	}

	if err := s.notificationsRepo.UpdateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to store notification update: %w", err)
	}

	s.logger.Info("notification updated",
		zap.String("notification_id", n.ID),
		zap.Int64("remote_id", n.RemoteID),
	)
	s.publishEvent(ctx, EventUpdated, n)

	return n, nil
}

// DeleteNotification 删除通知：先远程后本地
// 远程删除失败时本地记录原样保留
func (s *NotificationService) DeleteNotification(ctx context.Context, customerID, id string) error {
	customer, err := s.customersRepo.GetCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to get customer: %w", err)
	}

	n, err := s.notificationsRepo.GetNotification(ctx, customerID, id)
	if err != nil {
		return err
	}

	// 远程从未创建成功的记录直接本地删除
	if n.RemoteID != 0 {
		sess, err := s.login(ctx, customer)
		if err != nil {
			return err
		}
		defer s.remote.Logout(ctx, sess)

		resourceID, err := s.resolveResourceID(ctx, sess, customer)
		if err != nil {
			return err
		}

		if _, err := s.remote.UpdateNotification(ctx, sess, wire.EncodeDelete(resourceID, n)); err != nil {
			return fmt.Errorf("failed to delete remote notification: %w", err)
		}
	}

	if err := s.notificationsRepo.DeleteNotification(ctx, customerID, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	s.logger.Info("notification deleted",
		zap.String("notification_id", id),
		zap.Int64("remote_id", n.RemoteID),
	)
	s.publishEvent(ctx, EventDeleted, n)

	return nil
}

// SetEnabled 启用/禁用通知
// 目标状态与当前状态一致时为幂等空操作，不发起任何远程调用
func (s *NotificationService) SetEnabled(ctx context.Context, customerID, id string, enabled bool) (*domain.Notification, error) {
	customer, err := s.customersRepo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	n, err := s.notificationsRepo.GetNotification(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	if n.Enabled == enabled {
		return n, nil
	}

	sess, err := s.login(ctx, customer)
	if err != nil {
		return nil, err
	}
	defer s.remote.Logout(ctx, sess)

	resourceID, err := s.resolveResourceID(ctx, sess, customer)
	if err != nil {
		return nil, err
	}

	n.Enabled = enabled
	if _, err := s.remote.UpdateNotification(ctx, sess, wire.EncodeUpdate(resourceID, n)); err != nil {
		return nil, fmt.Errorf("failed to update remote notification: %w", err)
	}

	if err := s.notificationsRepo.SetEnabled(ctx, customerID, id, enabled); err != nil {
		return nil, fmt.Errorf("failed to store enabled flag: %w", err)
	}

	event := EventDisabled
	if enabled {
		event = EventEnabled
	}
	s.logger.Info("notification "+event,
		zap.String("notification_id", id),
		zap.Int64("remote_id", n.RemoteID),
	)
	s.publishEvent(ctx, event, n)

	return n, nil
}

// GetNotification 获取单个通知
func (s *NotificationService) GetNotification(ctx context.Context, customerID, id string) (*domain.Notification, error) {
	if customerID == "" {
		return nil, fmt.Errorf("customer_id is required")
	}
	if id == "" {
		return nil, fmt.Errorf("notification id is required")
	}
	return s.notificationsRepo.GetNotification(ctx, customerID, id)
}

// ListNotifications 查询通知列表
func (s *NotificationService) ListNotifications(ctx context.Context, customerID string, page, size int) ([]*domain.Notification, int, error) {
	if customerID == "" {
		return nil, 0, fmt.Errorf("customer_id is required")
	}
	return s.notificationsRepo.ListNotifications(ctx, customerID, page, size)
}

// ListUnits 列出客户可见的车辆单元（向导第一步的数据源）
func (s *NotificationService) ListUnits(ctx context.Context, customerID string) ([]remote.Unit, error) {
	customer, err := s.customersRepo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	sess, err := s.login(ctx, customer)
	if err != nil {
		return nil, err
	}
	defer s.remote.Logout(ctx, sess)

	units, err := s.remote.SearchUnits(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to search units: %w", err)
	}

	return units, nil
}
