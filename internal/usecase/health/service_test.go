package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockVision struct {
	err error
}

func (m *mockVision) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockVision{})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %q, want %q", report.Status, Healthy)
	}
	if report.Checks["database"] != CheckOK {
		t.Errorf("database check = %q", report.Checks["database"])
	}
	if report.Checks["vision"] != CheckOK {
		t.Errorf("vision check = %q", report.Checks["vision"])
	}
}

func TestCheck_DatabaseDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("connection refused")}, &mockVision{})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("database check = %q", report.Checks["database"])
	}
	if report.Checks["vision"] != CheckOK {
		t.Errorf("vision check = %q", report.Checks["vision"])
	}
}

func TestCheck_VisionDown(t *testing.T) {
	svc := New(&mockPinger{}, &mockVision{err: errors.New("quota exceeded")})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["vision"] != CheckError {
		t.Errorf("vision check = %q", report.Checks["vision"])
	}
}

func TestCheck_NilVisionIsSkipped(t *testing.T) {
	svc := New(&mockPinger{}, nil)
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %q, want %q", report.Status, Healthy)
	}
	if _, ok := report.Checks["vision"]; ok {
		t.Error("vision check present without a vision provider")
	}
}
