package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// RemoteCallStatus 远程平台调用结果统计
	RemoteCallStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_remote_calls_total",
			Help: "Number of successful or failed remote platform calls",
		},
		[]string{"svc", "status"},
	)

	// WorkflowCommits 向导提交结果统计
	WorkflowCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_workflow_commits_total",
			Help: "Number of successful or failed workflow commits",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCount, RequestDuration, RemoteCallStatus, WorkflowCommits)
}
