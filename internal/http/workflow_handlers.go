package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/terminusgps/terminusgps-notifications/internal/metrics"
	"github.com/terminusgps/terminusgps-notifications/internal/service"
	"github.com/terminusgps/terminusgps-notifications/internal/store"
	"github.com/terminusgps/terminusgps-notifications/internal/trigger"
)

// WorkflowHandler 创建向导 HTTP 接口
type WorkflowHandler struct {
	workflow *service.WorkflowService
	drafts   store.DraftStore
	logger   *zap.Logger
}

// NewWorkflowHandler 创建向导 handler
func NewWorkflowHandler(workflow *service.WorkflowService, drafts store.DraftStore, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow, drafts: drafts, logger: logger}
}

// Start POST /notify/api/v1/workflow
func (h *WorkflowHandler) Start(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r)
	if cid == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing customer id"))
		return
	}

	draft, err := h.workflow.Start(r.Context(), cid)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, Ok(draft))
}

// GetDraft GET /notify/api/v1/workflow/{token}
func (h *WorkflowHandler) GetDraft(w http.ResponseWriter, r *http.Request, token string) {
	draft, err := h.drafts.Get(r.Context(), token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(draft))
}

// SelectUnits POST /notify/api/v1/workflow/{token}/units
func (h *WorkflowHandler) SelectUnits(w http.ResponseWriter, r *http.Request, token string) {
	var body struct {
		UnitIDs []int64 `json:"unit_ids"`
	}
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	draft, err := h.workflow.SelectUnits(r.Context(), token, body.UnitIDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(draft))
}

// SelectTrigger POST /notify/api/v1/workflow/{token}/trigger
func (h *WorkflowHandler) SelectTrigger(w http.ResponseWriter, r *http.Request, token string) {
	var body struct {
		Kind string `json:"kind"`
	}
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	draft, err := h.workflow.SelectTriggerKind(r.Context(), token, body.Kind)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(draft))
}

// ConfigureParameters POST /notify/api/v1/workflow/{token}/parameters
// 请求体即触发器参数 JSON，按草稿中的类型校验
func (h *WorkflowHandler) ConfigureParameters(w http.ResponseWriter, r *http.Request, token string) {
	var raw json.RawMessage
	if err := readBodyJSON(r, &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	draft, err := h.workflow.ConfigureParameters(r.Context(), token, raw)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(draft))
}

// Commit POST /notify/api/v1/workflow/{token}/commit
func (h *WorkflowHandler) Commit(w http.ResponseWriter, r *http.Request, token string) {
	var req service.CommitRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	n, err := h.workflow.Commit(r.Context(), token, &req)
	if err != nil {
		metrics.WorkflowCommits.WithLabelValues("error").Inc()
		writeError(w, h.logger, err)
		return
	}

	metrics.WorkflowCommits.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusCreated, Ok(n))
}

// Abort DELETE /notify/api/v1/workflow/{token}
func (h *WorkflowHandler) Abort(w http.ResponseWriter, r *http.Request, token string) {
	if err := h.workflow.Abort(r.Context(), token); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(struct{}{}))
}

// TriggerKindsHandler 触发器类型目录接口
type TriggerKindsHandler struct {
	logger *zap.Logger
}

// NewTriggerKindsHandler 创建触发器目录 handler
func NewTriggerKindsHandler(logger *zap.Logger) *TriggerKindsHandler {
	return &TriggerKindsHandler{logger: logger}
}

// kindView 类型目录条目（含参数表单的渲染信息）
type kindView struct {
	Kind   string              `json:"kind"`
	Label  string              `json:"label"`
	Fields []trigger.FieldSpec `json:"fields"`
}

// List GET /notify/api/v1/trigger-kinds
func (h *TriggerKindsHandler) List(w http.ResponseWriter, r *http.Request) {
	kinds := trigger.Kinds()
	views := make([]kindView, 0, len(kinds))
	for _, k := range kinds {
		spec, err := trigger.Lookup(k)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		views = append(views, kindView{
			Kind:   k.String(),
			Label:  spec.Label,
			Fields: spec.Fields,
		})
	}

	writeJSON(w, http.StatusOK, Ok(views))
}
