package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dms/internal/notifications"
	"dms/internal/testsupport"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(cfg)
	if err := svc.NotifyApplied(context.Background(), 3, 1); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		priority string
		body     string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.Apply = true
	cfg.Notifications.Errors = true
	svc := notifications.NewService(cfg)

	if err := svc.NotifyApplied(context.Background(), 3, 1); err != nil {
		t.Fatalf("NotifyApplied: %v", err)
	}
	if captured.title != "DMS - Applied" {
		t.Fatalf("unexpected title %q", captured.title)
	}
	if captured.body != "Store updated: 3 applied, 1 removed" {
		t.Fatalf("unexpected message %q", captured.body)
	}
	if captured.tags != "dms,apply,completed" {
		t.Fatalf("unexpected tags %q", captured.tags)
	}

	if err := svc.NotifyError(context.Background(), errors.New("store changed since scan"), "apply"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if captured.body != "Error during apply: store changed since scan" {
		t.Fatalf("unexpected message %q", captured.body)
	}
	if captured.priority != "high" {
		t.Fatalf("unexpected priority %q", captured.priority)
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Apply = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(cfg)

	if err := svc.NotifyApplied(context.Background(), 1, 0); err != nil {
		t.Fatalf("NotifyApplied: %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("x"), "scan"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
}
