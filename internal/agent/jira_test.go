package agent

import (
	"regexp"
	"strings"
	"testing"
)

func TestExtractIssueInfo(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantKey string
		wantURL string
		wantOK  bool
	}{
		{
			name:    "key and url present",
			text:    "Created issue AURA-123. View it at https://rowen.atlassian.net/browse/AURA-123 for details.",
			wantKey: "AURA-123",
			wantURL: "https://rowen.atlassian.net/browse/AURA-123",
			wantOK:  true,
		},
		{
			name:   "key only",
			text:   "Created AURA-123 successfully.",
			wantOK: false,
		},
		{
			name:   "url only without standalone key mention",
			text:   "done, see the tracker",
			wantOK: false,
		},
		{
			name:   "no markers",
			text:   "I was unable to create the issue.",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, url, ok := ExtractIssueInfo(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (key != tt.wantKey || url != tt.wantURL) {
				t.Fatalf("got (%q, %q), want (%q, %q)", key, url, tt.wantKey, tt.wantURL)
			}
		})
	}
}

func TestMockIssueShape(t *testing.T) {
	keyPattern := regexp.MustCompile(`^AURA-\d{4}$`)
	for i := 0; i < 20; i++ {
		key, url := MockIssue("AURA", "https://example.atlassian.net")
		if !keyPattern.MatchString(key) {
			t.Fatalf("key %q does not match {project}-{4 digits}", key)
		}
		if url != "https://example.atlassian.net/browse/"+key {
			t.Fatalf("url = %q", url)
		}
	}
}

func TestTestCasePrompt(t *testing.T) {
	tc := &TestCase{
		Title:          "Login works",
		Description:    "Verify a user can log in",
		Preconditions:  []string{"App is running", "User exists"},
		Steps:          []string{"Open the login page", "Enter credentials", "Press submit"},
		ExpectedResult: "Dashboard is shown",
	}

	prompt := tc.Prompt()

	for _, want := range []string{
		"TEST CASE: Login works",
		"- App is running",
		"- User exists",
		"1. Open the login page",
		"3. Press submit",
		"EXPECTED RESULT:\nDashboard is shown",
		"browser automation",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
