// cmd/api/errors.go
// This file contains all error-response helpers for the application.
// Every failure is rendered as a Mason error document: resource_url, an
// @error element with a title and detail message, and the error profile
// control. No internal error detail beyond that pair is ever exposed.
package main

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/inlibris/inlibris/internal/mason"
)

// logError logs an internal error at ERROR level with the request method and URL for context.
func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
	)
}

// errorResponse sends a Mason error document with the given status code.
// It is the low-level building block used by all the specific error helpers below.
func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, title, details string) {
	body := mason.NewError(r.URL.Path, title, details)
	err := app.writeMason(w, status, body, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs a 500-level error and sends a generic message to the client.
// We never expose internal error details to the client for security reasons.
func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, "Internal server error",
		"the server encountered a problem and could not process your request")
}

// notFoundResponse sends a 404 Not Found error with a generic message.
func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "Not found", "the requested resource could not be found")
}

// notFoundDetailResponse sends a 404 Not Found error naming the missing entity.
func (app *applicationDependencies) notFoundDetailResponse(w http.ResponseWriter, r *http.Request, details string) {
	app.errorResponse(w, r, http.StatusNotFound, "Not found", details)
}

// methodNotAllowedResponse sends a 405 Method Not Allowed error.
func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	details := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed", details)
}

// badRequestResponse sends a 400 Bad Request error with the error message from the caller.
func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, "Invalid JSON document", err.Error())
}

// failedValidationResponse sends a 400 Bad Request response summarising the
// field-level validation errors collected by a Validator.
func (app *applicationDependencies) failedValidationResponse(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(errs))
	for _, field := range fields {
		parts = append(parts, field+": "+errs[field])
	}
	app.errorResponse(w, r, http.StatusBadRequest, "Invalid JSON document", strings.Join(parts, "; "))
}

// conflictResponse sends a 409 Conflict error naming the colliding field and value.
func (app *applicationDependencies) conflictResponse(w http.ResponseWriter, r *http.Request, details string) {
	app.errorResponse(w, r, http.StatusConflict, "Already exists", details)
}

// unsupportedMediaTypeResponse sends a 415 Unsupported Media Type error.
func (app *applicationDependencies) unsupportedMediaTypeResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnsupportedMediaType, "Unsupported media type", "requests must be JSON")
}

// rateLimitExceededResponse sends a 429 Too Many Requests error.
func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "Rate limit exceeded", "too many requests, slow down")
}
