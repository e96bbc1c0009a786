package config

import "testing"

func validPipeline() Pipeline {
	return Pipeline{
		Job:       "nightly",
		Reference: Reference{Kind: "mysql", DSN: "u:p@tcp(h:3306)/shop"},
		Stream:    Stream{Kind: "file", File: StreamFile{Path: "tx.csv"}},
		Output:    Output{Path: "out.csv"},
	}
}

func hasIssue(issues []Issue, sev IssueSeverity, path string) bool {
	for _, i := range issues {
		if i.Severity == sev && i.Path == path {
			return true
		}
	}
	return false
}

func TestValidatePipeline_Valid(t *testing.T) {
	t.Parallel()

	if issues := ValidatePipeline(validPipeline()); len(issues) != 0 {
		t.Fatalf("issues = %v", issues)
	}
}

// TestValidatePipeline_Cases covers one finding per mutation.
func TestValidatePipeline_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Pipeline)
		sev    IssueSeverity
		path   string
	}{
		{"empty job", func(p *Pipeline) { p.Job = "" }, SeverityWarning, "job"},
		{"no reference kind", func(p *Pipeline) { p.Reference.Kind = "" }, SeverityError, "reference.kind"},
		{"unknown reference kind", func(p *Pipeline) { p.Reference.Kind = "oracle" }, SeverityError, "reference.kind"},
		{"db reference without dsn", func(p *Pipeline) { p.Reference.DSN = "" }, SeverityError, "reference.dsn"},
		{"csv reference without paths", func(p *Pipeline) { p.Reference = Reference{Kind: "csv", ProductsPath: "p.csv"} }, SeverityError, "reference.customers_path"},
		{"no stream kind", func(p *Pipeline) { p.Stream.Kind = "" }, SeverityError, "stream.kind"},
		{"file stream without path", func(p *Pipeline) { p.Stream.File.Path = "" }, SeverityError, "stream.file.path"},
		{"http stream bad scheme", func(p *Pipeline) { p.Stream = Stream{Kind: "http", HTTP: StreamHTTP{URL: "ftp://x"}} }, SeverityError, "stream.http.url"},
		{"http negative retries", func(p *Pipeline) {
			p.Stream = Stream{Kind: "http", HTTP: StreamHTTP{URL: "http://x", MaxRetries: -1}}
		}, SeverityError, "stream.http.max_retries"},
		{"unknown stream kind", func(p *Pipeline) { p.Stream.Kind = "kafka" }, SeverityError, "stream.kind"},
		{"negative batch size", func(p *Pipeline) { p.Runtime.BatchSize = -1 }, SeverityError, "runtime.batch_size"},
		{"no output path", func(p *Pipeline) { p.Output.Path = "" }, SeverityError, "output.path"},
		{"reject path clashes", func(p *Pipeline) { p.Output.RejectPath = p.Output.Path }, SeverityError, "output.reject_path"},
		{"storage without dsn", func(p *Pipeline) { p.Storage = Storage{Kind: "postgres", DB: DBConfig{AutoCreateTable: true}} }, SeverityError, "storage.db.dsn"},
		{"storage unknown kind", func(p *Pipeline) { p.Storage = Storage{Kind: "oracle", DB: DBConfig{DSN: "x", AutoCreateTable: true}} }, SeverityWarning, "storage.kind"},
		{"storage without auto create", func(p *Pipeline) { p.Storage = Storage{Kind: "sqlite", DB: DBConfig{DSN: "x"}} }, SeverityWarning, "storage.db.auto_create_table"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validPipeline()
			tt.mutate(&p)
			issues := ValidatePipeline(p)
			if !hasIssue(issues, tt.sev, tt.path) {
				t.Fatalf("want %s at %s, got %v", tt.sev, tt.path, issues)
			}
			if got := HasErrors(issues); got != (tt.sev == SeverityError) {
				t.Fatalf("HasErrors = %v for %v", got, issues)
			}
		})
	}
}
