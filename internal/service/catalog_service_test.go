package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-exam-client/internal/apiclient"
	"github.com/stemsi/exstem-exam-client/internal/model"
)

func newTestCatalog(gw *fakeGateway) *CatalogService {
	return NewCatalogService(gw, gw, fixedIdentity(4), model.Enrollment{AssignmentID: 3, CourseName: "Biología"},
		zerolog.Nop(), WithCatalogClock(func() time.Time { return testNow }))
}

func TestCatalogPartitionsByCompletedAttempts(t *testing.T) {
	finished := testNow.Add(-time.Hour)
	closed := openExam(3)
	closed.End = testNow.Add(-time.Minute)

	gw := newFakeGateway(nil)
	gw.exams = []model.Exam{openExam(1), openExam(2), closed}
	gw.history = map[int][]model.Attempt{
		1: {{ID: 10, ExamID: 1}},
		2: {{ID: 11, ExamID: 2, FinishedAt: &finished}},
	}

	cat := newTestCatalog(gw).Load(context.Background())
	assert.False(t, cat.Degraded)

	require.Len(t, cat.Pending, 2)
	assert.Equal(t, 1, cat.Pending[0].Exam.ID)
	assert.Equal(t, 0, cat.Pending[0].AttemptsUsed, "open attempts are not consumed")
	assert.True(t, cat.Pending[0].Gate.Allowed)
	assert.Equal(t, 3, cat.Pending[1].Exam.ID)
	assert.Equal(t, ReasonClosed, cat.Pending[1].Gate.Reason)

	require.Len(t, cat.Completed, 1)
	assert.Equal(t, 2, cat.Completed[0].Exam.ID)
	assert.Equal(t, 1, cat.Completed[0].AttemptsUsed)
	assert.True(t, cat.Completed[0].Gate.Allowed, "one of two attempts left")
}

func TestCatalogFailuresYieldEmptyState(t *testing.T) {
	gw := newFakeGateway(nil)
	gw.examsErr = &apiclient.APIError{Status: 500, Message: "fallo"}

	cat := newTestCatalog(gw).Load(context.Background())
	assert.True(t, cat.Degraded)
	assert.NotNil(t, cat.Pending)
	assert.NotNil(t, cat.Completed)
	assert.Empty(t, cat.Pending)
	assert.Empty(t, cat.Completed)
}

func TestCatalogSkipsExamWhenHistoryFails(t *testing.T) {
	gw := newFakeGateway(nil)
	gw.exams = []model.Exam{openExam(1), openExam(2)}
	gw.historyErr = map[int]error{1: errNetwork}

	cat := newTestCatalog(gw).Load(context.Background())
	assert.True(t, cat.Degraded)
	require.Len(t, cat.Pending, 1)
	assert.Equal(t, 2, cat.Pending[0].Exam.ID)
}

func TestCatalogKeepsValidExamsFromPartialListing(t *testing.T) {
	gw := newFakeGateway(nil)
	gw.exams = []model.Exam{openExam(1)}
	gw.examsErr = errors.New("exam 2: invalid payload")

	cat := newTestCatalog(gw).Load(context.Background())
	assert.True(t, cat.Degraded)
	require.Len(t, cat.Pending, 1)
	assert.Equal(t, 1, cat.Pending[0].Exam.ID)
	assert.True(t, cat.Pending[0].Gate.Allowed)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "blocked", err: &BlockedError{Reason: ReasonClosed}, want: "Examen cerrado"},
		{name: "api message on open", err: &StartError{Stage: StageOpenAttempt, Err: &apiclient.APIError{Status: 403, Message: "Sin intentos"}}, want: "No se pudo iniciar el intento. Sin intentos"},
		{name: "transport on submit", err: &SubmitError{Err: &apiclient.TransportError{Err: errors.New("dial")}}, want: "No se pudieron enviar sus respuestas. Sus respuestas se conservan; intente enviar de nuevo. No se pudo conectar con el servidor."},
		{name: "sentinel", err: ErrSubmitInProgress, want: "Sus respuestas se están enviando. Espere un momento."},
		{name: "unknown", err: errors.New("boom"), want: "Ocurrió un error inesperado."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
