package http

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"stock/internal/core"
	"stock/internal/log"
)

var validationErrors = []error{
	core.ErrUnknownSupplier,
	core.ErrUnknownCategory,
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrNegativeQuantity,
	core.ErrNegativePrice,
	core.ErrInvalidNumber,
}

// isValidationError reports whether err came from user input rather than the backend.
func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// sanitizeInput removes control characters (except tab, newline, carriage return) and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// render executes a named template into b's body and writes the response.
// Templates are rendered to a buffer first so a failure never leaves half a page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	if s.templates == nil {
		s.errors.LogError(r.Context(), "Templates not loaded", errors.New("templates not loaded"),
			log.ErrorTypeConfiguration, log.OpRender, log.NewFields().WithComponent(log.ComponentTemplate))
		InternalServerError("Templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.errors.LogError(r.Context(), "Template execution failed", err,
			log.ErrorTypeInternal, log.OpRender, log.NewFields().WithComponent(log.ComponentTemplate))
		InternalServerError("Error rendering page").Write(w)
		return
	}
	b.BodyHTML(buf.String()).Write(w)
}

// fail maps an operation error to a response: bad input is 422, anything
// else came from the backend and is 502 with an error notification.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, operation string, err error, fields log.LogFields) {
	if isValidationError(err) {
		s.logger.WarnContext(r.Context(), "Invalid input",
			log.FieldOperation, operation,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeValidation)
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.backendErrors, 1)
	s.errors.LogError(r.Context(), "Backend request failed", err, log.ErrorTypeBackend, operation, fields)
	BadGatewayError(backendFailureMessage(operation)).Write(w)
}

func backendFailureMessage(operation string) string {
	switch operation {
	case log.OpCreate:
		return "Could not save the item. Please try again."
	case log.OpAdjust:
		return "Could not update the quantity. Please try again."
	case log.OpDelete:
		return "Could not remove the item. Please try again."
	default:
		return "Could not load items. Please try again."
	}
}
