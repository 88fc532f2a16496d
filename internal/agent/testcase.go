package agent

import (
	"fmt"
	"strings"
)

// TestCase is the structured test description supplied by the front end.
type TestCase struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Preconditions  []string `json:"preconditions"`
	Steps          []string `json:"steps"`
	ExpectedResult string   `json:"expectedResult"`
}

// Prompt converts a test case into the natural-language instruction the
// agent executes.
func (tc *TestCase) Prompt() string {
	var preconditions strings.Builder
	for _, condition := range tc.Preconditions {
		fmt.Fprintf(&preconditions, "- %s\n", condition)
	}

	var steps strings.Builder
	for i, step := range tc.Steps {
		fmt.Fprintf(&steps, "%d. %s\n", i+1, step)
	}

	return fmt.Sprintf(`Execute the following test case using browser automation:

TEST CASE: %s
DESCRIPTION: %s

PRECONDITIONS:
%s
TEST STEPS:
%s
EXPECTED RESULT:
%s

EXECUTION INSTRUCTIONS:
1. Open a Chrome browser window
2. Execute each test step in sequence
3. Take screenshots at key verification points
4. Verify the expected result is achieved
5. Take a final screenshot showing the end state
6. Report whether the test PASSED or FAILED with detailed explanation

Please execute this test case and provide a detailed report of the execution including:
- Status of each step
- Any errors encountered
- Whether the expected result was achieved
- Screenshots captured during execution
`, tc.Title, tc.Description, preconditions.String(), steps.String(), tc.ExpectedResult)
}
