package metrics

import "testing"

func TestMetricName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "adds prefix", input: "requests_total", expected: "autoflow_requests_total"},
		{name: "keeps prefixed", input: "autoflow_custom_metric", expected: "autoflow_custom_metric"},
		{name: "blank returns prefix", input: "", expected: "autoflow_"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MetricName(tt.input); got != tt.expected {
				t.Fatalf("MetricName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMetricNameWithSubsystem(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		subsystem  string
		metricName string
		expected   string
	}{
		{
			name:       "subsystem and name",
			subsystem:  "apps",
			metricName: "requests_total",
			expected:   "autoflow_apps_requests_total",
		},
		{
			name:       "subsystem trims underscore",
			subsystem:  "_dispatch_",
			metricName: "retries_total",
			expected:   "autoflow_dispatch_retries_total",
		},
		{name: "empty name", subsystem: "dispatcher", metricName: "", expected: "autoflow_dispatcher"},
		{
			name:       "already prefixed",
			subsystem:  "",
			metricName: "autoflow_existing_metric",
			expected:   "autoflow_existing_metric",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MetricNameWithSubsystem(tt.subsystem, tt.metricName); got != tt.expected {
				t.Fatalf("MetricNameWithSubsystem(%q, %q) = %q, want %q", tt.subsystem, tt.metricName, got, tt.expected)
			}
		})
	}
}
