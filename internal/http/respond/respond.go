// Package respond writes the {code, message, data} body every route answers with.
package respond

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

const contentType = "application/json; charset=utf-8"

// Envelope mirrors the HTTP status in Code so clients can branch on the body alone.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorRecorder is implemented by writers that attach failures to the
// request log line. Other writers drop the detail; an encode failure still
// surfaces as a 500.
type ErrorRecorder interface {
	RecordError(err error)
}

// fallback is sent when a payload cannot be encoded.
var fallback = []byte(`{"code":500,"message":"응답 생성에 실패하였습니다."}` + "\n")

// JSON answers with data attached. A nil data omits the field.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	send(w, Envelope{Code: status, Message: message, Data: data})
}

// Error answers with a message only.
func Error(w http.ResponseWriter, status int, message string) {
	send(w, Envelope{Code: status, Message: message})
}

// send encodes before touching the header so an encode failure still
// yields a well-formed 500.
func send(w http.ResponseWriter, env Envelope) {
	var buf bytes.Buffer
	status := env.Code
	if err := json.NewEncoder(&buf).Encode(env); err != nil {
		report(w, fmt.Errorf("encode response payload (status %d): %w", env.Code, err))
		buf.Reset()
		buf.Write(fallback)
		status = http.StatusInternalServerError
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		report(w, fmt.Errorf("write response: %w", err))
	}
}

func report(w http.ResponseWriter, err error) {
	if rec, ok := w.(ErrorRecorder); ok {
		rec.RecordError(err)
	}
}
