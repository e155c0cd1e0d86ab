package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	interviewsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sessions_started_total",
			Help: "Total number of started interview sessions",
		},
		[]string{"role", "mode"},
	)

	interviewsSummarized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_sessions_summarized_total",
			Help: "Total number of generated interview summaries",
		},
	)

	answersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_answers_total",
			Help: "Total number of answered interview turns",
		},
	)

	scoresRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_scores_recorded_total",
			Help: "Total number of scores written to the leaderboard",
		},
	)

	dialogueCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_dialogue_calls_total",
			Help: "Total number of dialogue service calls",
		},
		[]string{"status"},
	)

	dialogueCallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_dialogue_call_duration_seconds",
			Help:    "Dialogue service call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		interviewsStarted,
		interviewsSummarized,
		answersTotal,
		scoresRecorded,
		dialogueCallsTotal,
		dialogueCallDuration,
	)
}

func IncrementInterviewsStarted(role, mode string) {
	interviewsStarted.WithLabelValues(role, mode).Inc()
}

func IncrementInterviewsSummarized() {
	interviewsSummarized.Inc()
}

func IncrementAnswers() {
	answersTotal.Inc()
}

func IncrementScoresRecorded() {
	scoresRecorded.Inc()
}

// ObserveDialogueCall учитывает вызов сервиса диалога и его длительность
func ObserveDialogueCall(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	dialogueCallsTotal.WithLabelValues(status).Inc()
	dialogueCallDuration.Observe(duration.Seconds())
}

// Handler отдает метрики в формате Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}
