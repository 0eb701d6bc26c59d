package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/terminusgps/terminusgps-notifications/internal/remote"
	"github.com/terminusgps/terminusgps-notifications/internal/service"
	"github.com/terminusgps/terminusgps-notifications/internal/store"
	"github.com/terminusgps/terminusgps-notifications/internal/trigger"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// customerID 从网关注入的请求头取客户标识
func customerID(r *http.Request) string {
	return r.Header.Get("X-Customer-ID")
}

// writeError 错误到 HTTP 响应的统一映射
// 校验错误带字段明细返回 400；远程平台错误原样转述为 502
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var vErr *trigger.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, FailWith("validation failed", vErr.Fields))
		return
	}

	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, http.StatusBadGateway, Fail(apiErr.Error()))
		return
	}

	switch {
	case errors.Is(err, trigger.ErrUnknownKind):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	case errors.Is(err, service.ErrStepOrder):
		writeJSON(w, http.StatusConflict, Fail(err.Error()))
	case errors.Is(err, store.ErrDraftNotFound):
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
	case errors.Is(err, remote.ErrMissingCredential):
		writeJSON(w, http.StatusPreconditionFailed, Fail(err.Error()))
	case errors.Is(err, sql.ErrNoRows):
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	default:
		logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}
