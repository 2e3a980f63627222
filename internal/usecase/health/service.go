package health

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/version"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Version string
	Checks  map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db     DBPinger
	checks map[string]Checker
	logger *zap.Logger
}

// New creates a Service. checks maps component names ("embedding", "chat") to
// their checkers; nil entries are skipped.
func New(db DBPinger, checks map[string]Checker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, checks: checks, logger: logger}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	results := make(map[string]CheckResult, len(s.checks)+1)

	results["database"] = s.run(ctx, "database", s.db.Ping)
	for name, c := range s.checks {
		if c == nil {
			continue
		}
		results[name] = s.run(ctx, name, c.HealthCheck)
	}

	status := Healthy
	for _, v := range results {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Version: version.Version, Checks: results}
}

func (s *Service) run(ctx context.Context, name string, check func(context.Context) error) CheckResult {
	if err := check(ctx); err != nil {
		s.logger.Warn("health check failed", zap.String("component", name), zap.Error(err))
		return CheckError
	}
	return CheckOK
}
