package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
)

// PostgresCustomersRepository 客户Repository实现
type PostgresCustomersRepository struct {
	db *sql.DB
}

// NewPostgresCustomersRepository 创建客户Repository
func NewPostgresCustomersRepository(db *sql.DB) *PostgresCustomersRepository {
	return &PostgresCustomersRepository{db: db}
}

// 确保实现了接口
var _ CustomersRepository = (*PostgresCustomersRepository)(nil)

const customerColumns = `
	id::text,
	username,
	resource_id,
	token,
	created_at,
	updated_at
`

func scanCustomer(s scanner) (*domain.Customer, error) {
	var c domain.Customer
	err := s.Scan(
		&c.ID,
		&c.Username,
		&c.ResourceID,
		&c.Token,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCustomer 按主键获取客户
func (r *PostgresCustomersRepository) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	if id == "" {
		return nil, sql.ErrNoRows
	}

	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("customer not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return c, nil
}

// GetCustomerByUsername 按登录名获取客户
func (r *PostgresCustomersRepository) GetCustomerByUsername(ctx context.Context, username string) (*domain.Customer, error) {
	if username == "" {
		return nil, sql.ErrNoRows
	}

	query := fmt.Sprintf(`SELECT %s FROM customers WHERE username = $1`, customerColumns)

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("customer not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return c, nil
}

// CreateCustomer 插入客户
func (r *PostgresCustomersRepository) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	query := `
		INSERT INTO customers (id, username, resource_id, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query, c.ID, c.Username, c.ResourceID, c.Token)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// UpdateResourceID 记录已解析的远程资源标识
func (r *PostgresCustomersRepository) UpdateResourceID(ctx context.Context, id string, resourceID int64) error {
	query := `UPDATE customers SET resource_id = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, resourceID)
	if err != nil {
		return fmt.Errorf("failed to update resource id: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("customer not found: %w", sql.ErrNoRows)
	}

	return nil
}

// UpdateToken 更新远程访问令牌
func (r *PostgresCustomersRepository) UpdateToken(ctx context.Context, id, token string) error {
	query := `UPDATE customers SET token = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("customer not found: %w", sql.ErrNoRows)
	}

	return nil
}
