package health

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func serverHostPort(t *testing.T, srv *httptest.Server) (string, int) {
	t.Helper()
	host, portText, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		t.Fatal(err)
	}
	return host, port
}

func TestCheckReadsTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title> AList </title></head><body>hi</body></html>`))
	}))
	defer srv.Close()

	host, port := serverHostPort(t, srv)
	status, err := NewChecker().Check(context.Background(), host, port)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.Title != "AList" {
		t.Errorf("Title = %q, want AList", status.Title)
	}
	if status.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", status.StatusCode)
	}
	if !strings.Contains(status.Summary(), "AList") {
		t.Errorf("Summary() = %q", status.Summary())
	}
}

func TestCheckServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	host, port := serverHostPort(t, srv)
	status, err := NewChecker().Check(context.Background(), host, port)
	if err == nil {
		t.Fatal("expected error for 502")
	}
	if status == nil || status.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %+v", status)
	}
}

func TestCheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host, port := serverHostPort(t, srv)
	srv.Close()

	if _, err := NewChecker().Check(context.Background(), host, port); err == nil {
		t.Error("expected error for closed server")
	}
}

func TestSummaryUntitled(t *testing.T) {
	s := &Status{URL: "http://127.0.0.1:5244/", StatusCode: 200}
	if !strings.Contains(s.Summary(), "untitled page") {
		t.Errorf("Summary() = %q", s.Summary())
	}
}
