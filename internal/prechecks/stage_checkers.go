package prechecks

type IntroChecker struct{}

func (c *IntroChecker) Name() string { return "intro-checker" }

func (c *IntroChecker) Check(text string) []string {
	var issues []string
	if length(text) < 20 {
		issues = append(issues, "Answer is too short for an introduction.")
	}
	if !introKeywords.MatchString(text) {
		issues = append(issues, "Mention your background, current role, or internship intent.")
	}
	return issues
}

type AchievementChecker struct{}

func (c *AchievementChecker) Name() string { return "achievement-checker" }

func (c *AchievementChecker) Check(text string) []string {
	var issues []string
	if !hasNumber(text) {
		issues = append(issues, "Include at least one number or measurable metric.")
	}
	if !impactKeywords.MatchString(text) {
		issues = append(issues, "State the impact or result using outcome words.")
	}
	return issues
}

// ProjectChecker accepts an answer that covers any two of project, role and result.
type ProjectChecker struct{}

func (c *ProjectChecker) Name() string { return "project-checker" }

func (c *ProjectChecker) Check(text string) []string {
	signals := []struct {
		ok    bool
		issue string
	}{
		{ok: projectKeywords.MatchString(text), issue: "Mention a concrete project or task."},
		{ok: roleKeywords.MatchString(text), issue: "Explain your role or specific action."},
		{ok: resultKeywords.MatchString(text), issue: "Include the result or impact."},
	}

	hits := 0
	for _, s := range signals {
		if s.ok {
			hits++
		}
	}
	if hits >= 2 {
		return nil
	}

	var issues []string
	for _, s := range signals {
		if !s.ok {
			issues = append(issues, s.issue)
		}
	}
	return issues
}

type ChallengeChecker struct{}

func (c *ChallengeChecker) Name() string { return "challenge-checker" }

func (c *ChallengeChecker) Check(text string) []string {
	var issues []string
	if !challengeKeywords.MatchString(text) {
		issues = append(issues, "Describe the challenge or conflict clearly.")
	}
	if !resolutionKeywords.MatchString(text) {
		issues = append(issues, "Explain how you resolved the challenge.")
	}
	return issues
}

type WhyChecker struct{}

func (c *WhyChecker) Name() string { return "why-checker" }

func (c *WhyChecker) Check(text string) []string {
	var issues []string
	if !whyKeywords.MatchString(text) {
		issues = append(issues, "Link your fit and strengths to this internship.")
	}
	if length(text) < 25 {
		issues = append(issues, "Add one concrete reason you are a strong fit.")
	}
	return issues
}

type ClosingChecker struct{}

func (c *ClosingChecker) Name() string { return "closing-checker" }

func (c *ClosingChecker) Check(text string) []string {
	var issues []string
	if !closingKeywords.MatchString(text) {
		issues = append(issues, "End with a clear closing value statement.")
	}
	if length(text) < 20 {
		issues = append(issues, "Closing pitch is too short.")
	}
	return issues
}
