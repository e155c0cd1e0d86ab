package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(interviewsStarted.WithLabelValues("Data Analyst", "Technical"))
	IncrementInterviewsStarted("Data Analyst", "Technical")
	assert.Equal(t, before+1, testutil.ToFloat64(interviewsStarted.WithLabelValues("Data Analyst", "Technical")))

	before = testutil.ToFloat64(answersTotal)
	IncrementAnswers()
	IncrementAnswers()
	assert.Equal(t, before+2, testutil.ToFloat64(answersTotal))

	before = testutil.ToFloat64(dialogueCallsTotal.WithLabelValues("error"))
	ObserveDialogueCall(false, 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(dialogueCallsTotal.WithLabelValues("error")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	IncrementInterviewsSummarized()
	IncrementScoresRecorded()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "interview_sessions_summarized_total"))
	assert.True(t, strings.Contains(body, "interview_scores_recorded_total"))
}
