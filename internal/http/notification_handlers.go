package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
	"github.com/terminusgps/terminusgps-notifications/internal/service"
	"github.com/terminusgps/terminusgps-notifications/internal/trigger"
)

// NotificationHandler 已提交通知的 HTTP 接口
type NotificationHandler struct {
	notifications *service.NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler 创建通知 handler
func NewNotificationHandler(notifications *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// listResult 列表响应
type listResult struct {
	Items []*domain.Notification `json:"items"`
	Total int                    `json:"total"`
}

// List GET /notify/api/v1/notifications?page=&size=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r)
	if cid == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing customer id"))
		return
	}

	page := parseInt(r.URL.Query().Get("page"), 1)
	size := parseInt(r.URL.Query().Get("size"), 50)

	items, total, err := h.notifications.ListNotifications(r.Context(), cid, page, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []*domain.Notification{}
	}

	writeJSON(w, http.StatusOK, Ok(listResult{Items: items, Total: total}))
}

// Get GET /notify/api/v1/notifications/{id}
func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	cid := customerID(r)
	if cid == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing customer id"))
		return
	}

	n, err := h.notifications.GetNotification(r.Context(), cid, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(n))
}

// updateRequest 更新请求体：通知级字段 + 触发器参数
type updateRequest struct {
	service.CommitRequest
	TriggerKind   string          `json:"trigger_kind"`
	TriggerParams json.RawMessage `json:"trigger_params"`
	UnitIDs       []int64         `json:"unit_ids"`
}

// Update PUT /notify/api/v1/notifications/{id}
func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	cid := customerID(r)
	if cid == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing customer id"))
		return
	}

	var req updateRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	kind, err := trigger.ParseKind(req.TriggerKind)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	params, err := trigger.Decode(kind, req.TriggerParams)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	n := &domain.Notification{
		ID:                 id,
		Name:               req.Name,
		Message:            req.Message,
		Method:             req.Method,
		TriggerKind:        kind,
		TriggerParams:      params,
		UnitIDs:            req.UnitIDs,
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
		Language:           req.Language,
		Timezone:           req.Timezone,
	}
	if n.Language == "" {
		n.Language = "en"
	}

	updated, err := h.notifications.UpdateNotification(r.Context(), cid, n)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(updated))
}

// Delete DELETE /notify/api/v1/notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	cid := customerID(r)
	if cid == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing customer id"))
		return
	}

	if err := h.notifications.DeleteNotification(r.Context(), cid, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(struct{}{}))
}

// SetEnabled POST /notify/api/v1/notifications/{id}/enable|disable
func (h *NotificationHandler) SetEnabled(w http.ResponseWriter, r *http.Request, id string, enabled bool) {
	cid := customerID(r)
	if cid == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing customer id"))
		return
	}

	n, err := h.notifications.SetEnabled(r.Context(), cid, id, enabled)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(n))
}

// ListUnits GET /notify/api/v1/units
func (h *NotificationHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r)
	if cid == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing customer id"))
		return
	}

	units, err := h.notifications.ListUnits(r.Context(), cid)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(units))
}

// Export GET /notify/api/v1/notifications/export
// 导出客户全部通知为 xlsx
func (h *NotificationHandler) Export(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r)
	if cid == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing customer id"))
		return
	}

	items, _, err := h.notifications.ListNotifications(r.Context(), cid, 1, 200)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Notifications"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Name", "Trigger", "Method", "Units", "Enabled", "Remote ID", "Created At"}
	for i, hdr := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, hdr)
	}

	for row, n := range items {
		values := []any{
			n.Name,
			n.TriggerKind.Label(),
			string(n.Method),
			fmt.Sprintf("%d", len(n.UnitIDs)),
			n.Enabled,
			n.RemoteID,
			n.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="notifications.xlsx"`)
	if err := f.Write(w); err != nil {
		h.logger.Error("failed to write xlsx export", zap.Error(err))
	}
}
