package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"epss-viewer/internal/display"
	"epss-viewer/internal/epss"
	"epss-viewer/internal/viewer"
)

type stubFetcher struct {
	date   string
	calls  int
	result epss.Result
}

func (s *stubFetcher) Fetch(cveID, date string) epss.Result {
	s.calls++
	s.date = date
	return s.result
}

func doGet(t *testing.T, f *stubFetcher, target string) (*http.Response, []byte) {
	t.Helper()
	app := NewApp(viewer.New(f), nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("app.Test(%s) returned error: %v", target, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	resp, _ := doGet(t, &stubFetcher{}, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestValidate(t *testing.T) {
	for target, want := range map[string]bool{
		"/api/v1/cve/CVE-2023-1234/valid": true,
		"/api/v1/cve/CVE-abc-123/valid":   false,
	} {
		_, body := doGet(t, &stubFetcher{}, target)
		var got validResponse
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		if got.Valid != want {
			t.Fatalf("%s: valid=%v, want %v", target, got.Valid, want)
		}
	}
}

func TestScoreSuccess(t *testing.T) {
	f := &stubFetcher{result: epss.Success{Score: 0.1234, Percentile: 0.5}}
	resp, body := doGet(t, f, "/api/v1/epss/CVE-2023-1234?date=2024-01-02")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var got scoreResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.CVE != "CVE-2023-1234" || got.Date != "2024-01-02" {
		t.Fatalf("unexpected echo: %#v", got)
	}
	if got.ScoreText != "0.1234" || got.PercentileText != "50.00" || len(got.Curve) != display.CurvePoints {
		t.Fatalf("unexpected payload: %s %s %d", got.ScoreText, got.PercentileText, len(got.Curve))
	}
}

func TestScoreDefaultsToToday(t *testing.T) {
	f := &stubFetcher{result: epss.NoData{}}
	doGet(t, f, "/api/v1/epss/CVE-2023-1234")
	if f.date != viewer.Today(time.Now()) {
		t.Fatalf("expected today's date, got %q", f.date)
	}
}

func TestScoreErrors(t *testing.T) {
	cases := []struct {
		name   string
		target string
		result epss.Result
		status int
		calls  int
	}{
		{"invalid id", "/api/v1/epss/CVE-abc-1", epss.NoData{}, http.StatusBadRequest, 0},
		{"invalid date", "/api/v1/epss/CVE-2023-1234?date=yesterday", epss.NoData{}, http.StatusBadRequest, 0},
		{"no data", "/api/v1/epss/CVE-2023-1234?date=2024-01-02", epss.NoData{}, http.StatusNotFound, 1},
		{"transport", "/api/v1/epss/CVE-2023-1234?date=2024-01-02", epss.TransportError{Message: "timeout"}, http.StatusBadGateway, 1},
		{"malformed", "/api/v1/epss/CVE-2023-1234?date=2024-01-02", epss.MalformedResponse{Message: "x"}, http.StatusBadGateway, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &stubFetcher{result: tc.result}
			resp, body := doGet(t, f, tc.target)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, resp.StatusCode, body)
			}
			if f.calls != tc.calls {
				t.Fatalf("expected %d fetches, got %d", tc.calls, f.calls)
			}
			var got errorResponse
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Error == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[display.Kind]int{
		display.KindNoData:    http.StatusNotFound,
		display.KindInvalid:   http.StatusBadRequest,
		display.KindSelection: http.StatusBadRequest,
		display.KindTransport: http.StatusBadGateway,
		display.KindMalformed: http.StatusBadGateway,
	}
	for kind, want := range cases {
		if got := statusFor(kind); got != want {
			t.Errorf("statusFor(%q) = %d, want %d", kind, got, want)
		}
	}
}
