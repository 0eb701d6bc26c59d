package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
	"github.com/terminusgps/terminusgps-notifications/internal/store"
	"github.com/terminusgps/terminusgps-notifications/internal/trigger"
)

// ErrStepOrder 步骤乱序：当前草稿不允许执行该操作
var ErrStepOrder = errors.New("workflow step out of order")

// CommitRequest 向导最后一步提交的通知级字段
type CommitRequest struct {
	Name               string                `json:"name"`
	Message            string                `json:"message"`
	Method             domain.DeliveryMethod `json:"method"`
	Schedule           domain.Schedule       `json:"schedule"`
	ControlSchedule    domain.Schedule       `json:"control_schedule"`
	ActivationTime     int64                 `json:"activation_time"`
	DeactivationTime   int64                 `json:"deactivation_time"`
	MaxAlarms          int                   `json:"max_alarms"`
	MaxMessageInterval int                   `json:"max_message_interval"`
	AlarmTimeout       int                   `json:"alarm_timeout"`
	MinDurationAlarm   int                   `json:"min_duration_alarm"`
	MinDurationPrev    int                   `json:"min_duration_prev"`
	ControlPeriod      int                   `json:"control_period"`
	Flags              int                   `json:"flags"`
	Language           string                `json:"language"`
	Timezone           int                   `json:"timezone"`
}

// WorkflowService 通知创建向导
// 步骤：选单元 → 选触发器类型 → 配参数 → 复核提交
// 草稿以不透明 token 存于 Redis，提交前对远程平台零副作用，
// 任意步骤放弃（或 TTL 过期）都不产生远程调用
type WorkflowService struct {
	drafts        store.DraftStore
	notifications *NotificationService
	logger        *zap.Logger
}

// NewWorkflowService 创建向导服务
func NewWorkflowService(drafts store.DraftStore, notifications *NotificationService, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{
		drafts:        drafts,
		notifications: notifications,
		logger:        logger,
	}
}

// Start 开始向导，返回处于选单元步骤的新草稿
func (s *WorkflowService) Start(ctx context.Context, customerID string) (*domain.NotificationDraft, error) {
	if customerID == "" {
		return nil, fmt.Errorf("customer_id is required")
	}

	draft := &domain.NotificationDraft{
		Token:      uuid.New().String(),
		CustomerID: customerID,
		Step:       domain.StepSelectUnits,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}

	s.logger.Info("workflow started",
		zap.String("customer_id", customerID),
		zap.String("token", draft.Token),
	)

	return draft, nil
}

// SelectUnits 记录单元选择，首次选择后推进到选触发器类型步骤
// 任意步骤都可以回头改单元：单元集合与触发器配置相互独立，
// 重选单元不清空已配置的触发器，也不回退已到达的步骤
func (s *WorkflowService) SelectUnits(ctx context.Context, token string, unitIDs []int64) (*domain.NotificationDraft, error) {
	draft, err := s.drafts.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(unitIDs) == 0 {
		v := &trigger.ValidationError{}
		v.Add("unit_ids", trigger.CodeRequired, "at least one unit is required")
		return nil, v
	}

	draft.UnitIDs = unitIDs
	if draft.Step == domain.StepSelectUnits {
		draft.Step = domain.StepSelectTrigger
	}

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

// SelectTriggerKind 记录触发器类型，推进到配参数步骤
// kind 来自上一步的外部输入，必须经过封闭枚举校验；
// 重选类型会清空已配置的参数
func (s *WorkflowService) SelectTriggerKind(ctx context.Context, token, kind string) (*domain.NotificationDraft, error) {
	draft, err := s.drafts.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if draft.Step != domain.StepSelectTrigger && draft.Step != domain.StepConfigureParams && draft.Step != domain.StepReview {
		return nil, fmt.Errorf("%w: cannot select trigger kind at step %s", ErrStepOrder, draft.Step)
	}

	k, err := trigger.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	draft.TriggerKind = k
	draft.TriggerParams = nil
	draft.Step = domain.StepConfigureParams

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

// ConfigureParameters 校验并记录触发器参数，推进到复核步骤
// 草稿中保存的是应用默认值后的完整参数，复核页展示与最终提交
// 编码的是同一份数据
func (s *WorkflowService) ConfigureParameters(ctx context.Context, token string, raw json.RawMessage) (*domain.NotificationDraft, error) {
	draft, err := s.drafts.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if draft.Step != domain.StepConfigureParams && draft.Step != domain.StepReview {
		return nil, fmt.Errorf("%w: cannot configure parameters at step %s", ErrStepOrder, draft.Step)
	}

	params, err := trigger.Decode(draft.TriggerKind, raw)
	if err != nil {
		return nil, err
	}

	full, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger params: %w", err)
	}

	draft.TriggerParams = full
	draft.Step = domain.StepReview

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

// Commit 复核提交：组装通知实体并执行远程创建
// 远程创建成功后草稿即作废；远程失败时草稿保留，
// 操作员可修正后重新提交
func (s *WorkflowService) Commit(ctx context.Context, token string, req *CommitRequest) (*domain.Notification, error) {
	draft, err := s.drafts.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if draft.Step != domain.StepReview {
		return nil, fmt.Errorf("%w: cannot commit at step %s", ErrStepOrder, draft.Step)
	}

	params, err := trigger.Decode(draft.TriggerKind, draft.TriggerParams)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	n := &domain.Notification{
		Name:               req.Name,
		Message:            req.Message,
		Method:             req.Method,
		TriggerKind:        draft.TriggerKind,
		TriggerParams:      params,
		UnitIDs:            draft.UnitIDs,
		Schedule:           req.Schedule,
		ControlSchedule:    req.ControlSchedule,
		ActivationTime:     req.ActivationTime,
		DeactivationTime:   req.DeactivationTime,
		MaxAlarms:          req.MaxAlarms,
		MaxMessageInterval: req.MaxMessageInterval,
		AlarmTimeout:       req.AlarmTimeout,
		MinDurationAlarm:   req.MinDurationAlarm,
		MinDurationPrev:    req.MinDurationPrev,
		ControlPeriod:      req.ControlPeriod,
		Flags:              req.Flags,
		Language:           language,
		Timezone:           req.Timezone,
	}

	created, err := s.notifications.CreateNotification(ctx, draft.CustomerID, n)
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, token); err != nil {
		// 通知已创建成功，残留草稿等待 TTL 回收即可
		s.logger.Warn("failed to delete committed draft",
			zap.String("token", token),
			zap.Error(err),
		)
	}

	return created, nil
}

// Abort 放弃向导，丢弃草稿；提交前对远程平台零副作用
func (s *WorkflowService) Abort(ctx context.Context, token string) error {
	return s.drafts.Delete(ctx, token)
}
