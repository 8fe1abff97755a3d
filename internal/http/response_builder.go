// Package http exposes the tracker as a JSON API.
//
// This file implements the builder used by every handler to write
// responses with a consistent shape.

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"nivasa/internal/log"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	statusCode  int
	body        []byte
	contentType string
	headers     map[string]string
	encodeErr   error
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header sets a response header.
func (b *ResponseBuilder) Header(key, value string) *ResponseBuilder {
	b.headers[key] = value
	return b
}

// JSON encodes v as the body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body, b.encodeErr = json.Marshal(v)
	b.contentType = "application/json"
	return b
}

// Bytes sets a raw body with the given content type.
func (b *ResponseBuilder) Bytes(contentType string, data []byte) *ResponseBuilder {
	b.body = data
	b.contentType = contentType
	return b
}

// Attachment marks the body as a download named filename.
func (b *ResponseBuilder) Attachment(filename string) *ResponseBuilder {
	return b.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
}

// Write sends the response. An encoding failure becomes a 500.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.encodeErr != nil {
		log.FromContext(context.Background()).Error("Response encoding failed", log.FieldError, b.encodeErr.Error())
		b.statusCode = http.StatusInternalServerError
		b.body = []byte(`{"error":"internal server error"}`)
		b.contentType = "application/json"
	}
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	if b.contentType != "" {
		w.Header().Set("Content-Type", b.contentType)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(b.body)))
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(b.body)
}

// OK writes v as a 200 response.
func OK(w http.ResponseWriter, v any) {
	NewResponse().JSON(v).Write(w)
}

// Created writes v as a 201 response.
func Created(w http.ResponseWriter, v any) {
	NewResponse().Status(http.StatusCreated).JSON(v).Write(w)
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	NewResponse().Status(http.StatusNoContent).Write(w)
}

// ErrorResponse builds a JSON error response.
func ErrorResponse(status int, message string) *ResponseBuilder {
	return NewResponse().Status(status).JSON(ErrorBody{Error: message})
}

// FieldErrorResponse builds a 400 naming the offending field.
func FieldErrorResponse(field, message string) *ResponseBuilder {
	return NewResponse().Status(http.StatusBadRequest).JSON(ErrorBody{Error: message, Field: field})
}
