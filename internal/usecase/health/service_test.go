package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockNLUChecker struct {
	err error
}

func (m *mockNLUChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[ComponentSearchIndex] != CheckOK {
		t.Errorf("expected search_index %q, got %q", CheckOK, r.Checks[ComponentSearchIndex])
	}
	if r.Checks[ComponentCache] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks[ComponentCache])
	}
}

func TestCheck_IndexError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentSearchIndex] != CheckError {
		t.Errorf("expected search_index %q, got %q", CheckError, r.Checks[ComponentSearchIndex])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{err: errors.New("timeout")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentCache] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks[ComponentCache])
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("index down")}, &mockPinger{err: errors.New("cache down")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NoCache(t *testing.T) {
	svc := New(&mockPinger{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentCache]; ok {
		t.Error("cache check should be absent when cache is nil")
	}
}

func TestCheck_NoCache_IndexError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("fail")}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NLUHealthy(t *testing.T) {
	svc := New(&mockPinger{}, nil, &mockNLUChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[ComponentNLU] != CheckOK {
		t.Errorf("expected nlu %q, got %q", CheckOK, r.Checks[ComponentNLU])
	}
}

func TestCheck_NLUError(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{}, &mockNLUChecker{err: errors.New("401 invalid key")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentNLU] != CheckError {
		t.Errorf("expected nlu %q, got %q", CheckError, r.Checks[ComponentNLU])
	}
	if r.Checks[ComponentSearchIndex] != CheckOK {
		t.Errorf("expected search_index %q, got %q", CheckOK, r.Checks[ComponentSearchIndex])
	}
}

func TestCheck_NoNLU(t *testing.T) {
	svc := New(&mockPinger{}, nil, nil)
	r := svc.Check(context.Background())

	if _, ok := r.Checks[ComponentNLU]; ok {
		t.Error("nlu check should be absent when nlu is nil")
	}
}
