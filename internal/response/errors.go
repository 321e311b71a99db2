package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrExamNotOpen       ErrCode = "EXAM_NOT_OPEN"
	ErrExamClosed        ErrCode = "EXAM_CLOSED"
	ErrNoAttemptsLeft    ErrCode = "NO_ATTEMPTS_LEFT"
	ErrNoOpenAttempt     ErrCode = "NO_OPEN_ATTEMPT"
	ErrAttemptNotGraded  ErrCode = "ATTEMPT_NOT_GRADED"
	ErrAnswersNotVisible ErrCode = "ANSWERS_NOT_VISIBLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Usuario o contraseña incorrectos."
	case ErrTokenRequired:
		return "Se requiere un token de autenticación."
	case ErrTokenInvalid:
		return "El token de autenticación no es válido o ha expirado."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "No tiene permiso para acceder a este recurso."
	case ErrStudentAccessOnly:
		return "Este recurso está disponible solo para alumnos."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validación falló. Revise los datos enviados."
	case ErrInvalidID:
		return "El formato del identificador no es válido."
	case ErrInvalidPayload:
		return "El cuerpo de la solicitud no es válido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso no encontrado."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrExamNotOpen:
		return "El examen todavía no está disponible."
	case ErrExamClosed:
		return "El periodo del examen ha finalizado."
	case ErrNoAttemptsLeft:
		return "No le quedan intentos para este examen."
	case ErrNoOpenAttempt:
		return "No hay un intento en curso para este examen."
	case ErrAttemptNotGraded:
		return "El intento todavía no ha sido calificado."
	case ErrAnswersNotVisible:
		return "Las respuestas de este examen no se muestran."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Demasiadas solicitudes. Intente de nuevo más tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ocurrió un error interno del servidor."
	default:
		return "Ocurrió un error inesperado."
	}
}
