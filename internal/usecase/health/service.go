package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates an index that has not been loaded yet.
	CheckMissing CheckResult = "missing"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	indexes IndexChecker
	names   map[string]string
}

// New creates a Service. indexes can be nil; names maps a check name to an index name.
func New(db DBPinger, indexes IndexChecker, names map[string]string) *Service {
	return &Service{db: db, indexes: indexes, names: names}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["database"] = CheckOK

	if s.indexes != nil {
		checkNames := make([]string, 0, len(s.names))
		for name := range s.names {
			checkNames = append(checkNames, name)
		}
		sort.Strings(checkNames)

		for _, name := range checkNames {
			ok, err := s.indexes.IndexExists(ctx, s.names[name])
			switch {
			case err != nil:
				checks[name] = CheckError
			case !ok:
				checks[name] = CheckMissing
			default:
				checks[name] = CheckOK
			}
		}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
