package config

import (
	"fmt"
	"strings"
)

// IssueSeverity distinguishes blocking problems from advice.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one finding of ValidatePipeline, addressed by a dotted path.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is SeverityError.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

var dbKinds = map[string]struct{}{
	"postgres": {},
	"mysql":    {},
	"mssql":    {},
	"sqlite":   {},
}

// ValidatePipeline lints p without touching any external system.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue
	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{SeverityWarning, "job", "job is empty; metrics will use the default job name"})
	}
	issues = append(issues, validateReference(p.Reference)...)
	issues = append(issues, validateStream(p.Stream)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateOutput(p.Output)...)
	issues = append(issues, validateStorage(p.Storage)...)
	return issues
}

func validateReference(r Reference) []Issue {
	var issues []Issue
	switch kind := strings.TrimSpace(r.Kind); {
	case kind == "":
		issues = append(issues, Issue{SeverityError, "reference.kind", "reference.kind must not be empty"})
	case kind == "csv":
		if strings.TrimSpace(r.CustomersPath) == "" {
			issues = append(issues, Issue{SeverityError, "reference.customers_path", "csv reference requires customers_path"})
		}
		if strings.TrimSpace(r.ProductsPath) == "" {
			issues = append(issues, Issue{SeverityError, "reference.products_path", "csv reference requires products_path"})
		}
	default:
		if _, ok := dbKinds[kind]; !ok {
			issues = append(issues, Issue{SeverityError, "reference.kind",
				fmt.Sprintf("unknown reference kind %q; want csv, postgres, mysql, mssql or sqlite", kind)})
			break
		}
		if strings.TrimSpace(r.DSN) == "" {
			issues = append(issues, Issue{SeverityError, "reference.dsn", "database reference requires a dsn"})
		}
	}
	return issues
}

func validateStream(s Stream) []Issue {
	var issues []Issue
	switch s.Kind {
	case "":
		issues = append(issues, Issue{SeverityError, "stream.kind", "stream.kind must not be empty"})
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{SeverityError, "stream.file.path", "file stream requires a non-empty path"})
		}
	case "http":
		u := strings.TrimSpace(s.HTTP.URL)
		if u == "" {
			issues = append(issues, Issue{SeverityError, "stream.http.url", "http stream requires a url"})
		} else if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			issues = append(issues, Issue{SeverityError, "stream.http.url", fmt.Sprintf("url %q must start with http:// or https://", u)})
		}
		if s.HTTP.MaxRetries < 0 {
			issues = append(issues, Issue{SeverityError, "stream.http.max_retries", "max_retries must be >= 0"})
		}
		if s.HTTP.TimeoutSeconds < 0 {
			issues = append(issues, Issue{SeverityError, "stream.http.timeout_seconds", "timeout_seconds must be >= 0"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "stream.kind", fmt.Sprintf("unknown stream kind %q; want file or http", s.Kind)})
	}
	return issues
}

func validateRuntime(r Runtime) []Issue {
	var issues []Issue
	check := func(path string, v int) {
		if v < 0 {
			issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("must be >= 0 (0 selects the default), got %d", v)})
		}
	}
	check("runtime.batch_size", r.BatchSize)
	check("runtime.queue_capacity", r.QueueCapacity)
	check("runtime.partitions", r.Partitions)
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue
	if strings.TrimSpace(o.Path) == "" {
		issues = append(issues, Issue{SeverityError, "output.path", "output.path must not be empty"})
	}
	if o.RejectPath != "" && o.RejectPath == o.Path {
		issues = append(issues, Issue{SeverityError, "output.reject_path", "reject_path must differ from output.path"})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.Kind) == "" {
		return nil
	}
	if _, ok := dbKinds[s.Kind]; !ok {
		issues = append(issues, Issue{SeverityWarning, "storage.kind",
			fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind)})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{SeverityError, "storage.db.dsn", "storage.db.dsn must not be empty when storage.kind is set"})
	}
	if !s.DB.AutoCreateTable {
		issues = append(issues, Issue{SeverityWarning, "storage.db.auto_create_table",
			fmt.Sprintf("auto_create_table is off; table %s must already exist", s.ResultsTable())})
	}
	return issues
}
