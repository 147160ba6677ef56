package domain

import "testing"

func TestInferCategory(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/golang/go", "development"},
		{"https://stackoverflow.com/q/1", "development"},
		{"https://www.youtube.com/watch?v=1", "entertainment"},
		{"https://www.bbc.co.uk/news", "news"},
		{"https://www.coursera.org/learn/go", "education"},
		{"https://www.amazon.com/dp/1", "shopping"},
		{"https://example.org", "general"},
		{"not a url", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := InferCategory(tt.url); got != tt.want {
				t.Errorf("InferCategory(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestHostnameAndValidURL(t *testing.T) {
	if got := Hostname("https://WWW.Example.com:8443/path"); got != "example.com" {
		t.Errorf("Hostname() = %q", got)
	}
	if IsValidURL("ftp://example.com") {
		t.Error("ftp should be rejected")
	}
	if IsValidURL("/relative/path") {
		t.Error("relative URL should be rejected")
	}
	if !IsValidURL(" https://example.com ") {
		t.Error("surrounding spaces should be tolerated")
	}
}
