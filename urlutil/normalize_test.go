package urlutil

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		base     string
		expected string
		wantErr  bool
	}{
		{
			name:     "fragment kept",
			input:    "https://example.com/page#section",
			expected: "https://example.com/page#section",
		},
		{
			name:     "trailing slash preserved",
			input:    "https://example.com/about/",
			expected: "https://example.com/about/",
		},
		{
			name:     "root path keeps slash",
			input:    "https://example.com/",
			expected: "https://example.com/",
		},
		{
			name:     "query params preserved with separators",
			input:    "https://example.com/search?q=foo&lang=en",
			expected: "https://example.com/search?q=foo&lang=en",
		},
		{
			name:     "scheme and host lowercased, path untouched",
			input:    "HTTPS://Example.Com/Page",
			expected: "https://example.com/Page",
		},
		{
			name:     "relative path resolved against base",
			input:    "/about",
			base:     "https://example.com/blog/",
			expected: "https://example.com/about",
		},
		{
			name:     "IDNA host encoded",
			input:    "https://übercrawl.example/",
			expected: "https://xn--bercrawl-55a.example/",
		},
		{
			name:    "empty string returns error",
			input:   "",
			wantErr: true,
		},
		{
			name:    "invalid URL returns error",
			input:   "://invalid",
			wantErr: true,
		},
		{
			name:    "non-http scheme rejected",
			input:   "mailto:user@example.com",
			wantErr: true,
		},
		{
			name:    "relative without base has no host",
			input:   "/about",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input, tt.base)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Canonicalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.expected {
				t.Errorf("Canonicalize() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://example.com/a/b?x=1&y=2#frag",
		"HTTP://Example.COM/",
		"https://example.com/about/",
	}
	for _, in := range inputs {
		once, err := Canonicalize(in, "")
		if err != nil {
			t.Fatalf("Canonicalize(%q) error: %v", in, err)
		}
		twice, err := Canonicalize(once, "")
		if err != nil {
			t.Fatalf("Canonicalize(%q) error: %v", once, err)
		}
		if once != twice {
			t.Errorf("Canonicalize not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}
