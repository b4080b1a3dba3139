package epss

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSendsQueryParameters(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{
			"cve":      q.Get("cve"),
			"date":     q.Get("date"),
			"envelope": q.Get("envelope"),
			"pretty":   q.Get("pretty"),
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	NewClient(srv.URL, 0, nil).Fetch("CVE-2023-1234", "2024-01-02")

	want := map[string]string{
		"cve":      "CVE-2023-1234",
		"date":     "2024-01-02",
		"envelope": "true",
		"pretty":   "true",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("query %s = %q, want %q", k, got[k], v)
		}
	}
}

func TestFetchOutcomes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, r Result)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
			check: func(t *testing.T, r Result) {
				te, ok := r.(TransportError)
				if !ok {
					t.Fatalf("expected TransportError, got %#v", r)
				}
				if !strings.Contains(te.Message, "500") {
					t.Fatalf("expected status in message, got %q", te.Message)
				}
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{}`,
			check:  expectType[TransportError],
		},
		{
			name:   "empty data",
			status: http.StatusOK,
			body:   `{"data":[]}`,
			check:  expectType[NoData],
		},
		{
			name:   "missing data",
			status: http.StatusOK,
			body:   `{"status":"OK","total":0}`,
			check:  expectType[NoData],
		},
		{
			name:   "null data",
			status: http.StatusOK,
			body:   `{"data":null}`,
			check:  expectType[NoData],
		},
		{
			name:   "string values",
			status: http.StatusOK,
			body:   `{"data":[{"epss":"0.5","percentile":"0.9"}]}`,
			check: func(t *testing.T, r Result) {
				s, ok := r.(Success)
				if !ok {
					t.Fatalf("expected Success, got %#v", r)
				}
				if s.Score != 0.5 || s.Percentile != 0.9 {
					t.Fatalf("unexpected values: %#v", s)
				}
			},
		},
		{
			name:   "numeric values with date",
			status: http.StatusOK,
			body: `{"status":"OK","status-code":200,"total":1,"data":[
				{"cve":"CVE-2021-44228","epss":0.97565,"percentile":0.99996,"date":"2024-01-02"},
				{"cve":"CVE-2021-44228","epss":"0.1","percentile":"0.1"}]}`,
			check: func(t *testing.T, r Result) {
				s, ok := r.(Success)
				if !ok {
					t.Fatalf("expected Success, got %#v", r)
				}
				if s.Score != 0.97565 || s.Percentile != 0.99996 || s.Date != "2024-01-02" {
					t.Fatalf("unexpected values: %#v", s)
				}
			},
		},
		{
			name:   "non numeric score",
			status: http.StatusOK,
			body:   `{"data":[{"epss":"x"}]}`,
			check:  expectType[MalformedResponse],
		},
		{
			name:   "missing percentile",
			status: http.StatusOK,
			body:   `{"data":[{"epss":"0.2"}]}`,
			check:  expectType[MalformedResponse],
		},
		{
			name:   "score out of range",
			status: http.StatusOK,
			body:   `{"data":[{"epss":"1.5","percentile":"0.2"}]}`,
			check:  expectType[MalformedResponse],
		},
		{
			name:   "record not an object",
			status: http.StatusOK,
			body:   `{"data":["CVE-2023-1234"]}`,
			check:  expectType[MalformedResponse],
		},
		{
			name:   "data not an array",
			status: http.StatusOK,
			body:   `{"data":{"epss":"0.1"}}`,
			check:  expectType[MalformedResponse],
		},
		{
			name:   "body not json",
			status: http.StatusOK,
			body:   `<html>maintenance</html>`,
			check:  expectType[TransportError],
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.status, tc.body)
			tc.check(t, NewClient(srv.URL, time.Second, nil).Fetch("CVE-2023-1234", "2024-01-02"))
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := NewClient(srv.URL, 50*time.Millisecond, nil).Fetch("CVE-2023-1234", "2024-01-02")
	te, ok := r.(TransportError)
	if !ok {
		t.Fatalf("expected TransportError, got %#v", r)
	}
	if te.Message == "" {
		t.Fatalf("expected a message")
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, ok := NewClient(url, time.Second, nil).Fetch("CVE-2023-1234", "2024-01-02").(TransportError); !ok {
		t.Fatalf("expected TransportError for a closed server")
	}
}

func expectType[T Result](t *testing.T, r Result) {
	t.Helper()
	if _, ok := r.(T); !ok {
		var zero T
		t.Fatalf("expected %T, got %#v", zero, r)
	}
}
