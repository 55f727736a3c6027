// This file adds a lightweight linter for Config values. It performs static
// checks over an assembled Config and returns a list of issues (errors and
// warnings) that callers can surface before the first fetch.
package config

import (
	"fmt"
	"strings"

	"nytaxi/internal/dataset"
)

// Severity classifies a configuration issue.
type Severity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError Severity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not by
	// itself block execution.
	SeverityWarning Severity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "backend", "datasets[1]").
// Message is human-readable.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where one is expected.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is error-severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of an assembled Config. It does not
// mutate the config; callers decide whether warnings are fatal. Errors mean
// the run must not start.
func Validate(c Config) []Issue {
	var issues []Issue

	issues = append(issues, validateDatasets(c.Datasets)...)
	issues = append(issues, validateStorage(c)...)
	issues = append(issues, validateRun(c)...)
	issues = append(issues, validateMetrics(c.Metrics)...)

	return issues
}

// validateDatasets checks each descriptor and the list as a whole. Duplicate
// destination tables are an error: with drop-and-recreate semantics the
// second dataset would silently clobber the first.
func validateDatasets(ds []dataset.Descriptor) []Issue {
	var issues []Issue

	if len(ds) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "datasets",
			Message:  "no datasets configured",
		})
		return issues
	}

	names := make(map[string]int, len(ds))
	tables := make(map[string]int, len(ds))
	for i, d := range ds {
		path := fmt.Sprintf("datasets[%d]", i)
		if err := d.Validate(); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  err.Error(),
			})
			continue
		}
		if j, dup := names[d.Name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("dataset name %q already used by datasets[%d]", d.Name, j),
			})
		} else {
			names[d.Name] = i
		}
		if j, dup := tables[d.Table]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("table %q already written by datasets[%d]; the second load would clobber the first", d.Table, j),
			})
		} else {
			tables[d.Table] = i
		}
	}

	return issues
}

// validateStorage checks the backend selection and connection string. Unknown
// backend kinds are warnings: the registry makes the final call, and a build
// may carry backends this linter has never heard of.
func validateStorage(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Backend) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "backend",
			Message:  "backend must not be empty",
		})
	} else {
		known := map[string]struct{}{
			"postgres": {},
			"sqlite":   {},
		}
		if _, ok := known[c.Backend]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "backend",
				Message:  fmt.Sprintf("unknown backend %q; ensure a matching backend is registered", c.Backend),
			})
		}
	}

	if !c.DryRun && strings.TrimSpace(c.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dsn",
			Message:  "no connection string; set -dsn or the PG_* variables",
		})
	}

	return issues
}

// validateRun checks the run-shaping knobs.
func validateRun(c Config) []Issue {
	var issues []Issue

	if c.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "batch",
			Message:  fmt.Sprintf("batch=%d; non-positive batch sizes fall back to the default", c.BatchSize),
		})
	}
	if c.FetchTimeout < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fetch_timeout",
			Message:  "fetch timeout must not be negative",
		})
	}

	return issues
}

// validateMetrics checks the metrics backend selection. Unlike storage this
// is a closed set, so an unknown name is an error, and each backend's
// required endpoint must be present up front rather than failing after the
// run has already loaded data.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
	case "prometheus":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus metrics need a pushgateway URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog metrics need a statsd address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q (want none, prometheus or datadog)", m.Backend),
		})
	}

	return issues
}
