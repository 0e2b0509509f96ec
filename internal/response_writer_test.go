package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriterWriteHeader(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)
	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)

	if rw.Status() != http.StatusNotFound {
		t.Errorf("Status() = %d, want %d", rw.Status(), http.StatusNotFound)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("underlying status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if !rw.Written() {
		t.Error("Written() = false, want true")
	}
}

func TestResponseWriterHooksRunOnceBeforeWrite(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	var calls []string
	rw.OnBeforeWrite(func() {
		calls = append(calls, "first")
		rw.Header().Set("X-Hook", "ran")
	})
	rw.OnBeforeWrite(func() { calls = append(calls, "second") })

	if _, err := rw.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	_, _ = rw.Write([]byte(" world"))

	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("hooks = %v, want [first second]", calls)
	}
	if w.Header().Get("X-Hook") != "ran" {
		t.Error("hook header not sent")
	}
	if rw.Size() != int64(len("hello world")) {
		t.Errorf("Size() = %d", rw.Size())
	}
	if rw.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want 200", rw.Status())
	}
}
