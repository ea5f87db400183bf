package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWrapResponseWriter_DefaultStatus(t *testing.T) {
	t.Parallel()

	_, rec := wrapResponseWriter(httptest.NewRecorder())

	if rec.statusCode != http.StatusOK {
		t.Errorf("default statusCode = %d, want %d", rec.statusCode, http.StatusOK)
	}
	if rec.headerWritten {
		t.Error("headerWritten = true before any write, want false")
	}
}

func TestWrapResponseWriter_WriteHeader(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	ww, rec := wrapResponseWriter(w)

	ww.WriteHeader(http.StatusCreated)
	ww.WriteHeader(http.StatusNotFound) // should be ignored

	if rec.statusCode != http.StatusCreated {
		t.Errorf("statusCode = %d, want %d (first call)", rec.statusCode, http.StatusCreated)
	}
	if w.Code != http.StatusCreated {
		t.Errorf("recorder Code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestWrapResponseWriter_WriteAccumulatesBytes(t *testing.T) {
	t.Parallel()

	ww, rec := wrapResponseWriter(httptest.NewRecorder())

	_, _ = ww.Write([]byte("abc"))
	_, _ = ww.Write([]byte("defg"))

	if rec.written != 7 {
		t.Errorf("written = %d, want 7", rec.written)
	}
	if !rec.headerWritten {
		t.Error("headerWritten = false after Write, want true")
	}
}

func TestWrapResponseWriter_KeepsFlusher(t *testing.T) {
	t.Parallel()

	ww, _ := wrapResponseWriter(httptest.NewRecorder())

	if _, ok := ww.(http.Flusher); !ok {
		t.Error("wrapped writer does not implement http.Flusher")
	}
}
