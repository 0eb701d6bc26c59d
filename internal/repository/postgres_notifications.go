package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
	"github.com/terminusgps/terminusgps-notifications/internal/trigger"
)

// PostgresNotificationsRepository 通知Repository实现
type PostgresNotificationsRepository struct {
	db *sql.DB
}

// NewPostgresNotificationsRepository 创建通知Repository
func NewPostgresNotificationsRepository(db *sql.DB) *PostgresNotificationsRepository {
	return &PostgresNotificationsRepository{db: db}
}

// 确保实现了接口
var _ NotificationsRepository = (*PostgresNotificationsRepository)(nil)

const notificationColumns = `
	id::text,
	customer_id::text,
	remote_id,
	name,
	message,
	method,
	trigger_kind,
	trigger_params,
	unit_list,
	schedule,
	control_schedule,
	activation_time,
	deactivation_time,
	max_alarms,
	max_message_interval,
	alarm_timeout,
	min_duration_alarm,
	min_duration_prev,
	control_period,
	flags,
	language,
	timezone,
	enabled,
	text,
	actions,
	created_at,
	updated_at
`

// scanner 兼容 *sql.Row 和 *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// scanNotification 扫描一行并还原 JSONB 字段
func scanNotification(s scanner) (*domain.Notification, error) {
	var (
		n          domain.Notification
		kind       string
		params     []byte
		unitList   []byte
		sch        []byte
		ctrlSch    []byte
		actionsRaw []byte
	)
	err := s.Scan(
		&n.ID,
		&n.CustomerID,
		&n.RemoteID,
		&n.Name,
		&n.Message,
		&n.Method,
		&kind,
		&params,
		&unitList,
		&sch,
		&ctrlSch,
		&n.ActivationTime,
		&n.DeactivationTime,
		&n.MaxAlarms,
		&n.MaxMessageInterval,
		&n.AlarmTimeout,
		&n.MinDurationAlarm,
		&n.MinDurationPrev,
		&n.ControlPeriod,
		&n.Flags,
		&n.Language,
		&n.Timezone,
		&n.Enabled,
		&n.Text,
		&actionsRaw,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	k, err := trigger.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trigger kind: %w", err)
	}
	n.TriggerKind = k

	p, err := trigger.Decode(k, params)
	if err != nil {
		return nil, fmt.Errorf("failed to decode trigger params: %w", err)
	}
	n.TriggerParams = p

	if err := json.Unmarshal(unitList, &n.UnitIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal unit list: %w", err)
	}
	if err := json.Unmarshal(sch, &n.Schedule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}
	if err := json.Unmarshal(ctrlSch, &n.ControlSchedule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal control schedule: %w", err)
	}
	n.Actions = json.RawMessage(actionsRaw)

	return &n, nil
}

// marshalJSONB 序列化 JSONB 列，nil 切片写为空数组
func marshalJSONB(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jsonb column: %w", err)
	}
	return raw, nil
}

// GetNotification 按客户与主键获取通知
func (r *PostgresNotificationsRepository) GetNotification(ctx context.Context, customerID, id string) (*domain.Notification, error) {
	if customerID == "" || id == "" {
		return nil, sql.ErrNoRows
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE customer_id = $1 AND id = $2
	`, notificationColumns)

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, customerID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("notification not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// ListNotifications 查询客户的通知列表（按创建时间倒序）
func (r *PostgresNotificationsRepository) ListNotifications(ctx context.Context, customerID string, page, size int) ([]*domain.Notification, int, error) {
	if customerID == "" {
		return nil, 0, fmt.Errorf("customer_id is required")
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 50
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM notifications WHERE customer_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, customerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, notificationColumns)

	rows, err := r.db.QueryContext(ctx, query, customerID, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var list []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return list, total, nil
}

// CreateNotification 插入通知
func (r *PostgresNotificationsRepository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	params, err := marshalJSONB(n.TriggerParams)
	if err != nil {
		return err
	}
	units := n.UnitIDs
	if units == nil {
		units = []int64{}
	}
	unitList, err := marshalJSONB(units)
	if err != nil {
		return err
	}
	sch, err := marshalJSONB(n.Schedule)
	if err != nil {
		return err
	}
	ctrlSch, err := marshalJSONB(n.ControlSchedule)
	if err != nil {
		return err
	}
	actions := n.Actions
	if len(actions) == 0 {
		actions = json.RawMessage("[]")
	}

	query := `
		INSERT INTO notifications (
			id, customer_id, remote_id, name, message, method,
			trigger_kind, trigger_params, unit_list, schedule, control_schedule,
			activation_time, deactivation_time, max_alarms, max_message_interval,
			alarm_timeout, min_duration_alarm, min_duration_prev, control_period,
			flags, language, timezone, enabled, text, actions,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25,
			NOW(), NOW()
		)
	`

	_, err = r.db.ExecContext(ctx, query,
		n.ID, n.CustomerID, n.RemoteID, n.Name, n.Message, n.Method,
		n.TriggerKind.String(), params, unitList, sch, ctrlSch,
		n.ActivationTime, n.DeactivationTime, n.MaxAlarms, n.MaxMessageInterval,
		n.AlarmTimeout, n.MinDurationAlarm, n.MinDurationPrev, n.ControlPeriod,
		n.Flags, n.Language, n.Timezone, n.Enabled, n.Text, []byte(actions),
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// UpdateNotification 更新可变字段；remote_id 创建后不可变，不在更新列中
func (r *PostgresNotificationsRepository) UpdateNotification(ctx context.Context, n *domain.Notification) error {
	params, err := marshalJSONB(n.TriggerParams)
	if err != nil {
		return err
	}
	units := n.UnitIDs
	if units == nil {
		units = []int64{}
	}
	unitList, err := marshalJSONB(units)
	if err != nil {
		return err
	}
	sch, err := marshalJSONB(n.Schedule)
	if err != nil {
		return err
	}
	ctrlSch, err := marshalJSONB(n.ControlSchedule)
	if err != nil {
		return err
	}
	actions := n.Actions
	if len(actions) == 0 {
		actions = json.RawMessage("[]")
	}

	query := `
		UPDATE notifications SET
			name = $3,
			message = $4,
			method = $5,
			trigger_kind = $6,
			trigger_params = $7,
			unit_list = $8,
			schedule = $9,
			control_schedule = $10,
			activation_time = $11,
			deactivation_time = $12,
			max_alarms = $13,
			max_message_interval = $14,
			alarm_timeout = $15,
			min_duration_alarm = $16,
			min_duration_prev = $17,
			control_period = $18,
			flags = $19,
			language = $20,
			timezone = $21,
			enabled = $22,
			text = $23,
			actions = $24,
			updated_at = NOW()
		WHERE customer_id = $1 AND id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		n.CustomerID, n.ID,
		n.Name, n.Message, n.Method,
		n.TriggerKind.String(), params, unitList, sch, ctrlSch,
		n.ActivationTime, n.DeactivationTime, n.MaxAlarms, n.MaxMessageInterval,
		n.AlarmTimeout, n.MinDurationAlarm, n.MinDurationPrev, n.ControlPeriod,
		n.Flags, n.Language, n.Timezone, n.Enabled, n.Text, []byte(actions),
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification not found: %w", sql.ErrNoRows)
	}

	return nil
}

// SetEnabled 更新启用标记
func (r *PostgresNotificationsRepository) SetEnabled(ctx context.Context, customerID, id string, enabled bool) error {
	query := `
		UPDATE notifications SET enabled = $3, updated_at = NOW()
		WHERE customer_id = $1 AND id = $2
	`

	result, err := r.db.ExecContext(ctx, query, customerID, id, enabled)
	if err != nil {
		return fmt.Errorf("failed to set enabled: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification not found: %w", sql.ErrNoRows)
	}

	return nil
}

// DeleteNotification 删除通知
func (r *PostgresNotificationsRepository) DeleteNotification(ctx context.Context, customerID, id string) error {
	query := `DELETE FROM notifications WHERE customer_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, customerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification not found: %w", sql.ErrNoRows)
	}

	return nil
}
