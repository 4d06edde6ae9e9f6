package parser

import "regexp"

// Status is the task state derived from a Jules notification email.
type Status string

const (
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusNeedsReview Status = "needs_review"
	StatusInProgress  Status = "in_progress"
	StatusCancelled   Status = "cancelled"
	StatusUnknown     Status = "unknown"
)

// statusPatterns maps each status to the keyword patterns that vote for it.
// This is a slice, not a map: on tied scores the earlier entry wins, so the
// declaration order is part of the classifier's contract.
var statusPatterns = []struct {
	status   Status
	patterns []*regexp.Regexp
}{
	{StatusCompleted, compilePatterns(
		`completed`,
		`finished`,
		`done`,
		`merged`,
		`task\s+complete`,
		`successfully`,
	)},
	{StatusFailed, compilePatterns(
		`failed`,
		`error`,
		`unable`,
		`could\s*n[o']t`,
		`unsuccessful`,
	)},
	{StatusNeedsReview, compilePatterns(
		`review`,
		`waiting`,
		`pending`,
		`ready\s+for\s+review`,
		`pull\s+request`,
		`changes?\s+ready`,
	)},
	{StatusInProgress, compilePatterns(
		`started`,
		`working`,
		`in\s+progress`,
		`processing`,
		`running`,
	)},
	{StatusCancelled, compilePatterns(
		`cancell?ed`,
		`stopped`,
		`aborted`,
	)},
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+expr))
	}
	return out
}

// detectStatus scores the scanning text against every status's keyword
// patterns and returns the status with the highest total match count.
// Statuses that match nothing are out of the running; if nothing matches
// at all the result is StatusUnknown.
func detectStatus(text string) Status {
	best := StatusUnknown
	bestScore := 0
	for _, entry := range statusPatterns {
		score := 0
		for _, re := range entry.patterns {
			score += len(re.FindAllStringIndex(text, -1))
		}
		if score > bestScore {
			best = entry.status
			bestScore = score
		}
	}
	return best
}
