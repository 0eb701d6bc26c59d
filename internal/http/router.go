package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/terminusgps/terminusgps-notifications/internal/metrics"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 /metrics 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

	r.mux.ServeHTTP(sw, req)

	path := metricPath(req.URL.Path)
	metrics.RequestCount.WithLabelValues(path, req.Method, strconv.Itoa(sw.status)).Inc()
	metrics.RequestDuration.WithLabelValues(path, req.Method).Observe(time.Since(start).Seconds())
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// metricPath 折叠路径中的标识符，避免标签基数爆炸
func metricPath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if len(p) >= 32 { // uuid 及更长的 token
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// RegisterRoutes 注册全部业务路由
func (r *Router) RegisterRoutes(n *NotificationHandler, wf *WorkflowHandler, tk *TriggerKindsHandler) {
	// 触发器类型目录
	r.Handle("/notify/api/v1/trigger-kinds", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		tk.List(w, req)
	})

	// 车辆单元目录（向导第一步的数据源）
	r.Handle("/notify/api/v1/units", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		n.ListUnits(w, req)
	})

	// 向导
	r.Handle("/notify/api/v1/workflow", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		wf.Start(w, req)
	})

	r.Handle("/notify/api/v1/workflow/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/notify/api/v1/workflow/")
		token, action, _ := strings.Cut(rest, "/")
		if token == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch {
		case action == "" && req.Method == http.MethodGet:
			wf.GetDraft(w, req, token)
		case action == "" && req.Method == http.MethodDelete:
			wf.Abort(w, req, token)
		case action == "units" && req.Method == http.MethodPost:
			wf.SelectUnits(w, req, token)
		case action == "trigger" && req.Method == http.MethodPost:
			wf.SelectTrigger(w, req, token)
		case action == "parameters" && req.Method == http.MethodPost:
			wf.ConfigureParameters(w, req, token)
		case action == "commit" && req.Method == http.MethodPost:
			wf.Commit(w, req, token)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// 已提交通知
	r.Handle("/notify/api/v1/notifications", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		n.List(w, req)
	})

	r.Handle("/notify/api/v1/notifications/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/notify/api/v1/notifications/")
		id, action, _ := strings.Cut(rest, "/")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if id == "export" && action == "" {
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			n.Export(w, req)
			return
		}

		switch {
		case action == "" && req.Method == http.MethodGet:
			n.Get(w, req, id)
		case action == "" && req.Method == http.MethodPut:
			n.Update(w, req, id)
		case action == "" && req.Method == http.MethodDelete:
			n.Delete(w, req, id)
		case action == "enable" && req.Method == http.MethodPost:
			n.SetEnabled(w, req, id, true)
		case action == "disable" && req.Method == http.MethodPost:
			n.SetEnabled(w, req, id, false)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// 运维端点
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})
	r.HandleHandler("/metrics", promhttp.Handler())
}
