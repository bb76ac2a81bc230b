package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentSearchIndex = "search_index"
	ComponentCache       = "cache"
	ComponentNLU         = "nlu"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index Pinger
	cache Pinger
	nlu   NLUChecker
}

// New creates a Service. cache and nlu can be nil.
func New(index, cache Pinger, nlu NLUChecker) *Service {
	return &Service{index: index, cache: cache, nlu: nlu}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[ComponentSearchIndex] = resultOf(s.index.Ping(ctx))
	if s.cache != nil {
		checks[ComponentCache] = resultOf(s.cache.Ping(ctx))
	}
	if s.nlu != nil {
		checks[ComponentNLU] = resultOf(s.nlu.HealthCheck(ctx))
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func resultOf(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
