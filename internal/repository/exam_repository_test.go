package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-exam-client/internal/apiclient"
)

func TestListByAssignmentSkipsMalformedExams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/examenes/asignacion/3", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id_examen":1,"titulo":"Parcial","fecha_inicio":"2026-05-04T08:00:00Z","fecha_fin":"2026-05-04T12:00:00Z",
			 "duracion_minutos":30,"intentos_permitidos":1,"nota_minima":11},
			{"id_examen":2,"titulo":"Roto","fecha_inicio":"2026-05-04T08:00:00Z","fecha_fin":"2026-05-04T12:00:00Z",
			 "duracion_minutos":0,"intentos_permitidos":1,"nota_minima":11}
		]`))
	}))
	defer srv.Close()

	exams, err := NewExamRepository(apiclient.New(srv.URL, nil)).ListByAssignment(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exam 2")
	require.Len(t, exams, 1)
	assert.Equal(t, 1, exams[0].ID)
	assert.Equal(t, 1800, exams[0].DurationSeconds())
}

func TestListByAssignmentTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	exams, err := NewExamRepository(apiclient.New(srv.URL, nil)).ListByAssignment(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, apiclient.IsStatus(err, http.StatusInternalServerError))
	assert.Empty(t, exams)
}
