// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// HTTPミドルウェア、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordEntryCreated(entryType string)
	RecordCategoriesSeeded(count int)
	RecordMailSent(kind string)
	RecordMailFailed(kind string)
	RecordSignIn(provider string)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
	entriesCreated   *prometheus.CounterVec
	categoriesSeeded prometheus.Counter
	mailSent         *prometheus.CounterVec
	mailFailed       *prometheus.CounterVec
	signIns          *prometheus.CounterVec
	sessionsCleaned  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kakeibo_http_requests_total",
			Help: "HTTPステータスコード別のリクエスト数",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kakeibo_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		entriesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kakeibo_ledger_entries_created_total",
			Help: "種別ごとの作成された記録数",
		}, []string{"type"}),
		categoriesSeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kakeibo_categories_seeded_total",
			Help: "デフォルトカテゴリとして挿入されたカテゴリの合計数",
		}),
		mailSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kakeibo_mail_sent_total",
			Help: "種類別のメール送信成功数",
		}, []string{"kind"}),
		mailFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kakeibo_mail_failed_total",
			Help: "種類別のメール送信失敗数",
		}, []string{"kind"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kakeibo_sign_ins_total",
			Help: "認証プロバイダー別のサインイン数",
		}, []string{"provider"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kakeibo_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.entriesCreated,
		c.categoriesSeeded,
		c.mailSent,
		c.mailFailed,
		c.signIns,
		c.sessionsCleaned,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストのステータスと処理時間を記録する。
// routeにはchiのルートパターンを渡し、ラベルの種類数を抑える。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordEntryCreated は記録の作成を記録する。
func (c *Collector) RecordEntryCreated(entryType string) {
	c.entriesCreated.WithLabelValues(entryType).Inc()
}

// RecordCategoriesSeeded は挿入されたデフォルトカテゴリ数を記録する。
func (c *Collector) RecordCategoriesSeeded(count int) {
	c.categoriesSeeded.Add(float64(count))
}

// RecordMailSent はメール送信成功を記録する。
func (c *Collector) RecordMailSent(kind string) {
	c.mailSent.WithLabelValues(kind).Inc()
}

// RecordMailFailed はメール送信失敗を記録する。
func (c *Collector) RecordMailFailed(kind string) {
	c.mailFailed.WithLabelValues(kind).Inc()
}

// RecordSignIn はサインインを記録する。
func (c *Collector) RecordSignIn(provider string) {
	c.signIns.WithLabelValues(provider).Inc()
}

// RecordSessionsCleaned は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordEntryCreated(string) {}
func (Nop) RecordCategoriesSeeded(int) {}
func (Nop) RecordMailSent(string) {}
func (Nop) RecordMailFailed(string) {}
func (Nop) RecordSignIn(string) {}
func (Nop) RecordSessionsCleaned(int64) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
