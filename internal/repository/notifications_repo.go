package repository

import (
	"context"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
)

// NotificationsRepository 通知Repository接口
// 使用强类型领域模型；远程同步顺序由Service层负责，
// Repository层只做数据访问
type NotificationsRepository interface {
	// GetNotification 按客户与主键获取通知
	GetNotification(ctx context.Context, customerID, id string) (*domain.Notification, error)

	// ListNotifications 查询客户的通知列表（支持分页）
	ListNotifications(ctx context.Context, customerID string, page, size int) ([]*domain.Notification, int, error)

	// CreateNotification 插入通知
	// 仅在远程创建成功、RemoteID 已赋值后调用
	CreateNotification(ctx context.Context, n *domain.Notification) error

	// UpdateNotification 更新可变字段（RemoteID 不可变）
	UpdateNotification(ctx context.Context, n *domain.Notification) error

	// SetEnabled 更新启用标记
	SetEnabled(ctx context.Context, customerID, id string, enabled bool) error

	// DeleteNotification 删除通知
	// 仅在远程删除成功后调用
	DeleteNotification(ctx context.Context, customerID, id string) error
}

// CustomersRepository 客户Repository接口
type CustomersRepository interface {
	// GetCustomer 按主键获取客户
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)

	// GetCustomerByUsername 按登录名获取客户
	GetCustomerByUsername(ctx context.Context, username string) (*domain.Customer, error)

	// CreateCustomer 插入客户
	CreateCustomer(ctx context.Context, c *domain.Customer) error

	// UpdateResourceID 记录已解析的远程资源标识
	UpdateResourceID(ctx context.Context, id string, resourceID int64) error

	// UpdateToken 更新远程访问令牌
	UpdateToken(ctx context.Context, id, token string) error
}
