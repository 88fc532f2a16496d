package agent

import (
	"fmt"
	"math/rand"
	"regexp"
)

var (
	issueKeyPattern  = regexp.MustCompile(`([A-Z]+-\d+)`)
	browseURLPattern = regexp.MustCompile(`(https://[^/\s]+\.atlassian\.net/browse/[A-Z]+-\d+)`)
)

// ExtractIssueInfo scans the agent's free-text report for an issue key and
// a browse URL. Both must be present for the extraction to count; the
// report wording varies too much to trust a lone match.
func ExtractIssueInfo(text string) (key, url string, ok bool) {
	keyMatch := issueKeyPattern.FindString(text)
	urlMatch := browseURLPattern.FindString(text)
	if keyMatch == "" || urlMatch == "" {
		return "", "", false
	}
	return keyMatch, urlMatch, true
}

// MockIssue synthesizes a local issue key and browse URL for the degraded
// path where the tracker integration cannot be verified.
func MockIssue(project, baseURL string) (key, url string) {
	key = fmt.Sprintf("%s-%d", project, 1000+rand.Intn(9000))
	return key, fmt.Sprintf("%s/browse/%s", baseURL, key)
}
