package telemetry

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/tutorbot/tutor/internal/workspace"
)

func TestAnalytics_Record(t *testing.T) {
	t.Parallel()

	received := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/collect" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		received <- r.URL.Query()
	}))
	defer srv.Close()

	a := NewAnalytics("UA-1", srv.URL, nil)
	ws := workspace.Workspace{ID: "T123", Name: "Acme"}
	a.Record(ws, "U1", "byName", "[[Lightning Bolt]]")

	select {
	case q := <-received:
		if q.Get("v") != "1" || q.Get("tid") != "UA-1" || q.Get("t") != "event" {
			t.Errorf("protocol fields = %v", q)
		}
		if q.Get("cid") != "U1" || q.Get("ec") != "byName" || q.Get("ea") != "[[Lightning Bolt]]" {
			t.Errorf("event fields = %v", q)
		}
		if q.Get("el") != "Acme (T123)" {
			t.Errorf("el = %q", q.Get("el"))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestAnalytics_EmptyActionOmitted(t *testing.T) {
	t.Parallel()

	received := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		received <- r.URL.Query()
	}))
	defer srv.Close()

	a := NewAnalytics("UA-1", srv.URL, nil)
	a.Record(workspace.Workspace{ID: "T123", Name: "Acme"}, "U1", "help", "")

	select {
	case q := <-received:
		if _, present := q["ea"]; present {
			t.Errorf("ea = %q, want omitted", q.Get("ea"))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestAnalytics_Disabled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("disabled recorder sent an event")
	}))
	defer srv.Close()

	ws := workspace.Workspace{ID: "T123", Name: "Acme"}

	NewAnalytics("", srv.URL, nil).Record(ws, "U1", "byName", "x")

	var nilRecorder *Analytics
	nilRecorder.Record(ws, "U1", "byName", "x")

	// Give a stray goroutine time to surface before the server closes.
	time.Sleep(50 * time.Millisecond)
}
