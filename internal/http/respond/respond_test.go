package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, "회원 가입에 성공하였습니다.", map[string]int{"userId": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body struct {
		Code    int            `json:"code"`
		Message string         `json:"message"`
		Data    map[string]int `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, http.StatusCreated, body.Code)
	assert.Equal(t, "회원 가입에 성공하였습니다.", body.Message)
	assert.Equal(t, 7, body.Data["userId"])
}

func TestError_OmitsData(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusUnauthorized, "로그인이 필요합니다.")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"code":401,"message":"로그인이 필요합니다."}`, rec.Body.String())
}

func TestJSON_UnencodableData(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, "ok", make(chan int))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":500,"message":"응답 생성에 실패하였습니다."}`, rec.Body.String())
	assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get("Content-Length"))
}

type recordingWriter struct {
	*httptest.ResponseRecorder
	errs []error
}

func (w *recordingWriter) RecordError(err error) { w.errs = append(w.errs, err) }

func TestJSON_ReportsEncodeFailure(t *testing.T) {
	w := &recordingWriter{ResponseRecorder: httptest.NewRecorder()}
	JSON(w, http.StatusCreated, "ok", map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, w.errs, 1)
	assert.ErrorContains(t, w.errs[0], "status 201")
}

func TestError_NothingReportedOnSuccess(t *testing.T) {
	w := &recordingWriter{ResponseRecorder: httptest.NewRecorder()}
	Error(w, http.StatusNotFound, "없음")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.errs)
}
