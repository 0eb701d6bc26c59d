package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/terminusgps/terminusgps-notifications/internal/metrics"
	"github.com/terminusgps/terminusgps-notifications/internal/wire"
)

// Session 远程登录会话
type Session struct {
	SID    string `json:"eid"`
	UserID int64  `json:"-"`
}

// Unit 远程车辆单元
type Unit struct {
	ID   int64  `json:"id"`
	Name string `json:"nm"`
}

// Resource 远程通知资源（通知挂载其下）
type Resource struct {
	ID   int64  `json:"id"`
	Name string `json:"nm"`
}

// Client 远程车辆遥测平台 API 客户端
// 所有变更调用（create/update/delete）不设重试：失败即上抛，
// 由操作员决定是否重新提交
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient 创建远程平台客户端
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// call 远程 RPC 统一入口：svc 走查询串，params/sid 走表单
func (c *Client) call(ctx context.Context, svc, sid string, params any) (json.RawMessage, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params for %s: %w", svc, err)
	}

	form := map[string]string{"params": string(raw)}
	if sid != "" {
		form["sid"] = sid
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("svc", svc).
		SetFormData(form).
		Post("/wialon/ajax.html")
	if err != nil {
		metrics.RemoteCallStatus.WithLabelValues(svc, "error").Inc()
		return nil, fmt.Errorf("failed to call %s: %w", svc, err)
	}

	body := resp.Body()

	// 错误响应为对象 {error, reason}；成功响应可能是对象或数组
	var apiErr struct {
		Error  int    `json:"error"`
		Reason string `json:"reason"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != 0 {
		c.logger.Error("remote API returned error",
			zap.String("svc", svc),
			zap.Int("code", apiErr.Error),
			zap.String("reason", apiErr.Reason),
		)
		metrics.RemoteCallStatus.WithLabelValues(svc, "error").Inc()
		return nil, &APIError{Service: svc, Code: apiErr.Error, Message: apiErr.Reason}
	}

	metrics.RemoteCallStatus.WithLabelValues(svc, "ok").Inc()
	return body, nil
}

// Login 以客户令牌换取会话
func (c *Client) Login(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}

	body, err := c.call(ctx, "token/login", "", map[string]any{
		"token": token,
		"fl":    1,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		EID  string `json:"eid"`
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal login response: %w", err)
	}
	if result.EID == "" {
		return nil, &APIError{Service: "token/login", Message: "no session id in response"}
	}

	return &Session{SID: result.EID, UserID: result.User.ID}, nil
}

// Logout 注销会话，失败只记日志不上抛
func (c *Client) Logout(ctx context.Context, sess *Session) {
	if sess == nil || sess.SID == "" {
		return
	}
	if _, err := c.call(ctx, "core/logout", sess.SID, map[string]any{}); err != nil {
		c.logger.Warn("remote logout failed", zap.Error(err))
	}
}

// ResolveResource 按名称查找通知资源；未命中时在会话用户名下创建同名资源
// 首次接入的客户走创建分支，之后查找总能命中
func (c *Client) ResolveResource(ctx context.Context, sess *Session, name string) (*Resource, error) {
	body, err := c.call(ctx, "core/search_items", sess.SID, map[string]any{
		"spec": map[string]any{
			"itemsType":     "avl_resource",
			"propName":      "sys_name",
			"propValueMask": name,
			"sortType":      "sys_name",
			"propType":      "property",
		},
		"force": 0,
		"flags": 1,
		"from":  0,
		"to":    0,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Items []Resource `json:"items"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resource search response: %w", err)
	}
	if len(result.Items) == 0 {
		return c.createResource(ctx, sess, name)
	}

	return &result.Items[0], nil
}

// createResource 创建通知资源，归属会话用户
func (c *Client) createResource(ctx context.Context, sess *Session, name string) (*Resource, error) {
	body, err := c.call(ctx, "core/create_resource", sess.SID, map[string]any{
		"creatorId":        sess.UserID,
		"name":             name,
		"dataFlags":        1,
		"skipCreatorCheck": 1,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Item Resource `json:"item"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resource create response: %w", err)
	}
	if result.Item.ID == 0 {
		return nil, &APIError{Service: "core/create_resource", Message: fmt.Sprintf("resource %q not created", name)}
	}

	return &result.Item, nil
}

// SearchUnits 列出会话可见的全部车辆单元
func (c *Client) SearchUnits(ctx context.Context, sess *Session) ([]Unit, error) {
	body, err := c.call(ctx, "core/search_items", sess.SID, map[string]any{
		"spec": map[string]any{
			"itemsType":     "avl_unit",
			"propName":      "sys_name",
			"propValueMask": "*",
			"sortType":      "sys_name",
			"propType":      "property",
		},
		"force": 0,
		"flags": 1,
		"from":  0,
		"to":    0,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Items []Unit `json:"items"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal unit search response: %w", err)
	}

	return result.Items, nil
}

// UpdateNotification 执行 create/update/delete 远程调用
// 返回远程通知标识；create 时为平台新分配的权威标识
func (c *Client) UpdateNotification(ctx context.Context, sess *Session, payload *wire.Payload) (int64, error) {
	c.logger.Info("calling remote update_notification",
		zap.String("call_mode", payload.CallMode),
		zap.Int64("item_id", payload.ItemID),
		zap.Int64("id", payload.ID),
	)

	body, err := c.call(ctx, "resource/update_notification", sess.SID, payload)
	if err != nil {
		return 0, err
	}

	// 成功响应为 [id, 通知参数] 二元组
	var result []json.RawMessage
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("failed to unmarshal update_notification response: %w", err)
	}
	if len(result) == 0 {
		return 0, &APIError{Service: "resource/update_notification", Message: "empty response"}
	}

	var remoteID int64
	if err := json.Unmarshal(result[0], &remoteID); err != nil {
		return 0, fmt.Errorf("failed to unmarshal remote notification id: %w", err)
	}

	return remoteID, nil
}
