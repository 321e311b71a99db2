package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

func TestEncodeDecodeAnswer(t *testing.T) {
	tests := []struct {
		name string
		kind model.QuestionKind
		ans  model.Answer
		wire string
	}{
		{name: "choice", kind: model.QuestionMultipleChoice, ans: model.ChoiceAnswer(2), wire: "2"},
		{name: "true", kind: model.QuestionTrueFalse, ans: model.BooleanAnswer(true), wire: "verdadero"},
		{name: "false", kind: model.QuestionTrueFalse, ans: model.BooleanAnswer(false), wire: "falso"},
		{name: "short", kind: model.QuestionShortAnswer, ans: model.TextAnswer("Lima"), wire: "Lima"},
		{name: "essay", kind: model.QuestionEssay, ans: model.TextAnswer("Largo texto"), wire: "Largo texto"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wire, EncodeAnswer(tt.ans))
			got, err := DecodeAnswer(tt.kind, tt.wire)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.ans), "decoded %+v, want %+v", got, tt.ans)
		})
	}
}

func TestDecodeAnswerRejects(t *testing.T) {
	_, err := DecodeAnswer(model.QuestionMultipleChoice, "b")
	assert.Error(t, err)
	_, err = DecodeAnswer(model.QuestionMultipleChoice, "-1")
	assert.Error(t, err)
	_, err = DecodeAnswer(model.QuestionTrueFalse, "quizás")
	assert.Error(t, err)

	got, err := DecodeAnswer(model.QuestionTrueFalse, " Verdadero ")
	require.NoError(t, err)
	assert.True(t, got.Value)
}

func TestQuestionFromPayloadParsesEmbeddedOptions(t *testing.T) {
	raw := `{
		"id_pregunta": 11,
		"orden": 1,
		"enunciado": "¿Capital de Perú?",
		"tipo_pregunta": "multiple_choice",
		"opciones": "[\"Quito\",\"Lima\",\"Bogotá\"]",
		"respuesta_correcta": "1",
		"retroalimentacion": "Lima es la capital.",
		"puntos": 2
	}`
	var p model.QuestionPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	q, err := questionFromPayload(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quito", "Lima", "Bogotá"}, q.Options)
	require.NotNil(t, q.Correct)
	assert.Equal(t, model.ChoiceAnswer(1), *q.Correct)
	assert.Equal(t, "Lima es la capital.", q.Feedback)
	assert.Equal(t, 2.0, q.Points)
}

func TestQuestionFromPayloadAcceptsBareArrayAndNumericIndex(t *testing.T) {
	raw := `{"id_pregunta":3,"enunciado":"x","tipo_pregunta":"multiple_choice","opciones":["a","b"],"respuesta_correcta":0}`
	var p model.QuestionPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	q, err := questionFromPayload(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, q.Options)
	assert.Equal(t, model.ChoiceAnswer(0), *q.Correct)
}

func TestQuestionFromPayloadReadsLMSKinds(t *testing.T) {
	tests := []struct {
		tipo string
		want model.QuestionKind
		raw  string
	}{
		{tipo: "opcion_multiple", want: model.QuestionMultipleChoice, raw: `"opciones":"[\"a\",\"b\"]","respuesta_correcta":"1"`},
		{tipo: "verdadero_falso", want: model.QuestionTrueFalse, raw: `"respuesta_correcta":"verdadero"`},
		{tipo: "respuesta_corta", want: model.QuestionShortAnswer, raw: `"respuesta_correcta":"Lima"`},
		{tipo: "ensayo", want: model.QuestionEssay, raw: `"respuesta_correcta":null`},
		{tipo: "Opcion_Multiple", want: model.QuestionMultipleChoice, raw: `"opciones":"[\"a\"]"`},
		{tipo: "true_false", want: model.QuestionTrueFalse, raw: `"respuesta_correcta":"falso"`},
	}
	for _, tt := range tests {
		t.Run(tt.tipo, func(t *testing.T) {
			raw := `{"id_pregunta":1,"enunciado":"x","tipo_pregunta":"` + tt.tipo + `",` + tt.raw + `}`
			var p model.QuestionPayload
			require.NoError(t, json.Unmarshal([]byte(raw), &p))

			q, err := questionFromPayload(p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Kind)
		})
	}
}

func TestQuestionFromPayloadUnknownKind(t *testing.T) {
	var p model.QuestionPayload
	require.NoError(t, json.Unmarshal([]byte(`{"id_pregunta":1,"enunciado":"x","tipo_pregunta":"emparejamiento"}`), &p))
	_, err := questionFromPayload(p)
	assert.ErrorIs(t, err, model.ErrUnknownQuestionKind)
}

func TestQuestionFromPayloadRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "unknown kind", raw: `{"id_pregunta":1,"enunciado":"x","tipo_pregunta":"matching"}`},
		{name: "missing prompt", raw: `{"id_pregunta":1,"tipo_pregunta":"essay"}`},
		{name: "choice without options", raw: `{"id_pregunta":1,"enunciado":"x","tipo_pregunta":"multiple_choice"}`},
		{name: "bad options", raw: `{"id_pregunta":1,"enunciado":"x","tipo_pregunta":"multiple_choice","opciones":"[oops"}`},
		{name: "correct out of range", raw: `{"id_pregunta":1,"enunciado":"x","tipo_pregunta":"multiple_choice","opciones":"[\"a\"]","respuesta_correcta":"4"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p model.QuestionPayload
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &p))
			_, err := questionFromPayload(p)
			assert.Error(t, err)
		})
	}
}

func TestExamFromPayload(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	p := model.ExamPayload{
		ID: 5, Title: "Parcial", Start: start, End: start.Add(2 * time.Hour),
		DurationMinutes: 30, MaxAttempts: 2, PassThreshold: 11, RevealAnswers: true, Shuffle: true,
	}
	e, err := examFromPayload(p)
	require.NoError(t, err)
	assert.Equal(t, 1800, e.DurationSeconds())
	assert.True(t, e.ShuffleQuestions)
	assert.True(t, e.RevealAnswersOnFinish)

	p.End = start.Add(-time.Hour)
	_, err = examFromPayload(p)
	assert.Error(t, err, "end before start")

	p.End = start.Add(time.Hour)
	p.PassThreshold = 25
	_, err = examFromPayload(p)
	assert.Error(t, err, "threshold above 20")
}

func TestSubmitPayloadOmitsNothingAndEncodesEmptyList(t *testing.T) {
	body := submitPayload(9, 4, nil)
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id_alumno":4,"id_examen":9,"respuestas":[]}`, string(raw))

	body = submitPayload(9, 4, []model.SubmittedAnswer{{QuestionID: 1, Answer: model.ChoiceAnswer(2)}})
	raw, err = json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id_alumno":4,"id_examen":9,"respuestas":[{"id_pregunta":1,"respuesta_alumno":"2"}]}`, string(raw))
}

func TestResultFromPayloadDecodesBreakdown(t *testing.T) {
	raw := `{"nota":14,"aprobado":true,"puntos_obtenidos":7,"puntos_totales":10,"porcentaje":70,
		"respuestas":[{"id_pregunta":1,"respuesta_alumno":"2","es_correcta":false,"puntos_obtenidos":0},
		              {"id_pregunta":2,"respuesta_alumno":"verdadero","es_correcta":true}]}`
	var p model.ResultPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	kinds := map[int]model.QuestionKind{1: model.QuestionMultipleChoice, 2: model.QuestionTrueFalse}
	res, err := resultFromPayload(p, kinds)
	require.NoError(t, err)
	assert.Equal(t, 14.0, res.Score)
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, model.ChoiceAnswer(2), *res.Breakdown[0].Answer)
	assert.False(t, *res.Breakdown[0].Correct)
	assert.True(t, res.Breakdown[1].Answer.Value)
	assert.Nil(t, res.Breakdown[1].Points)

	var noBreakdown model.ResultPayload
	require.NoError(t, json.Unmarshal([]byte(`{"nota":8,"aprobado":false,"puntos_obtenidos":4,"puntos_totales":10,"porcentaje":40}`), &noBreakdown))
	res, err = resultFromPayload(noBreakdown, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Breakdown)
}
