// Package api contains helpers for writing JSON http APIs.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Error ...
type Error struct {
	Error string `json:"error"`
}

// WriteOK writes v as JSON with status code.
func WriteOK(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal response")
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// WriteError writes error message as JSON with status code.
func WriteError(w http.ResponseWriter, status int, message string) {
	data, _ := json.Marshal(Error{Error: message})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// WriteInternalErrorf logs the error with request's meta and writes 500 status code.
func WriteInternalErrorf(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	GetLogger(ctx).Errorf(format, args...)
	WriteError(w, http.StatusInternalServerError, "internal error")
}

// GetLogger returns logger with request id when ctx has one.
func GetLogger(ctx context.Context) logrus.FieldLogger {
	if id := GetRequestID(ctx); id != "" {
		return logrus.WithField("request_id", id)
	}

	return logrus.StandardLogger()
}

// Redirect writes redirect to url built from format and args.
func Redirect(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	http.Redirect(w, r, fmt.Sprintf(format, args...), http.StatusFound)
}
