package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		data     any
		wantBody string
	}{
		{"200 with data", http.StatusOK, map[string]string{"message": "hello"}, `{"message":"hello"}`},
		{"201 with data", http.StatusCreated, map[string]int{"id": 123}, `{"id":123}`},
		{"nil data", http.StatusOK, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSON(rec, tt.status, tt.data)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			if body := strings.TrimSpace(rec.Body.String()); body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string)
		status int
	}{
		{"bad request", BadRequest, http.StatusBadRequest},
		{"unauthorized", Unauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden, http.StatusForbidden},
		{"not found", NotFound, http.StatusNotFound},
		{"internal", InternalError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec, "boom")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["error"] != "boom" {
				t.Errorf("error = %q, want boom", body["error"])
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"title": "required"})

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest || body.Fields["title"] != "required" {
		t.Errorf("got %d %+v", rec.Code, body)
	}
}

func TestDecode(t *testing.T) {
	type input struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"valid", `{"name":"a"}`, "a", false},
		{"unknown field", `{"name":"a","x":1}`, "", true},
		{"trailing data", `{"name":"a"}{"name":"b"}`, "", true},
		{"malformed", `{"name":`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got input
			err := Decode(httptest.NewRecorder(), req, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Name != tt.want {
				t.Errorf("Name = %q, want %q", got.Name, tt.want)
			}
		})
	}
}

func TestDecode_KeepsDefaults(t *testing.T) {
	type input struct {
		Name string `json:"name"`
		Mode string `json:"mode"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	got := input{Mode: "swap"}
	if err := Decode(httptest.NewRecorder(), req, &got); err != nil {
		t.Fatal(err)
	}
	if got != (input{Name: "a", Mode: "swap"}) {
		t.Errorf("got %+v", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"b","mode":"list"}{}`))
	if err := Decode(httptest.NewRecorder(), req, &got); err == nil {
		t.Fatal("Decode() accepted trailing data")
	}
	if got != (input{Name: "a", Mode: "swap"}) {
		t.Errorf("target changed by a rejected body: %+v", got)
	}
}

func TestDecode_NeedsPointer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	var m map[string]any
	if err := Decode(httptest.NewRecorder(), req, m); err == nil {
		t.Error("Decode() into a non-pointer returned nil error")
	}
}

func TestReadBody_TooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 100)))
	_, err := ReadBody(httptest.NewRecorder(), req, 10)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("ReadBody() error = %v, want ErrBodyTooLarge", err)
	}
}
