package prechecks

import (
	"regexp"
	"unicode/utf8"
)

// Checker validates one stage's answer and returns the unmet requirements.
// An empty result means the answer satisfies the stage.
type Checker interface {
	Name() string
	Check(text string) []string
}

var (
	impactKeywords     = regexp.MustCompile(`(?i)\b(improved|reduced|increased|faster|boosted|grew|raised|cut|saved|impact|result|outcome)\b`)
	projectKeywords    = regexp.MustCompile(`(?i)\b(project|app|system|platform|tool|feature|task|assignment|build|built|developed)\b`)
	roleKeywords       = regexp.MustCompile(`(?i)\b(i|my role|led|owner|responsible|implemented|managed|designed)\b`)
	resultKeywords     = regexp.MustCompile(`(?i)\b(result|outcome|impact|improved|reduced|increased|delivered|achieved|launched)\b`)
	challengeKeywords  = regexp.MustCompile(`(?i)\b(challenge|conflict|issue|problem|blocker|difficult)\b`)
	resolutionKeywords = regexp.MustCompile(`(?i)\b(resolved|handled|fixed|addressed|solved|improved|communicated)\b`)
	whyKeywords        = regexp.MustCompile(`(?i)\b(fit|skills|experience|value|impact|team|role|internship|contribute)\b`)
	closingKeywords    = regexp.MustCompile(`(?i)\b(thank|excited|ready|contribute|value|opportunity|closing|summary)\b`)
	introKeywords      = regexp.MustCompile(`(?i)\b(student|internship|major|study|background|experience|developer|engineer|role)\b`)
	digit              = regexp.MustCompile(`\d`)
)

func hasNumber(text string) bool {
	return digit.MatchString(text)
}

func length(text string) int {
	return utf8.RuneCountInString(text)
}
