package logic

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"timeline_store/shared"
)

type IMetrics interface {
	StartApiRequestIn(label string) IRequestObserver
	ChangePublished(uri string)
	ConversationLoaded(size int)
	ServiceStarted()
}

type IRequestObserver interface {
	Finish()
}

type metrics struct {
	cfg               *shared.Config
	apiRequestsIn     *prometheus.HistogramVec
	changesPublished  *prometheus.CounterVec
	conversationLoads prometheus.Counter
	conversationMsgs  prometheus.Gauge
	serviceStarted    prometheus.Counter
}

func NewMetrics(cfg *shared.Config) IMetrics {

	res := metrics{}
	res.cfg = cfg

	res.apiRequestsIn = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "api_requests_in_duration",
		Help: "Duration in seconds of API requests served.",
	}, []string{"label"})
	prometheus.Register(res.apiRequestsIn)

	res.changesPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "changes_published",
		Help: "Number of change notifications published after writes",
	}, []string{"kind"})
	prometheus.Register(res.changesPublished)

	res.conversationLoads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conversation_loads",
		Help: "Number of conversations assembled",
	})
	prometheus.Register(res.conversationLoads)

	res.conversationMsgs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "conversation_msg_count",
		Help: "Messages in the most recently assembled conversation",
	})
	prometheus.Register(res.conversationMsgs)

	res.serviceStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "service_started",
		Help: "Service has started up",
	})
	prometheus.Register(res.serviceStarted)

	return &res
}

type requestObserver struct {
	label string
	start time.Time
	hgvec *prometheus.HistogramVec
}

func (ro *requestObserver) Finish() {
	now := time.Now()
	elapsed := float64(now.UnixMilli()-ro.start.UnixMilli()) / 1000.0
	ro.hgvec.WithLabelValues(ro.label).Observe(elapsed)
}

func (m *metrics) StartApiRequestIn(label string) IRequestObserver {
	return &requestObserver{label, time.Now(), m.apiRequestsIn}
}

func (m *metrics) ChangePublished(uri string) {
	kind := "other"
	if matched, err := shared.ParseUri(uri); err == nil {
		kind = matched.Kind.String()
	}
	m.changesPublished.WithLabelValues(kind).Add(1)
}

func (m *metrics) ConversationLoaded(size int) {
	m.conversationLoads.Add(1)
	m.conversationMsgs.Set(float64(size))
}

func (m *metrics) ServiceStarted() {
	m.serviceStarted.Add(1)
}
