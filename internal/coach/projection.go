package coach

import "github.com/povarna/generative-ai-agents/classroom-agent/internal/models"

// TeacherView reshapes a coaching snapshot for the instructor panel.
func TeacherView(c models.CoachFeedback) models.TeacherMetrics {
	return models.TeacherMetrics{
		StudentGrowth: c.Confidence,
		Engagement:    c.Clarity,
		ClarityTrend:  c.Vocabulary,
		CommonErrors:  append([]string{}, c.GrammarIssues...),
	}
}

// Project builds the feedback returned to the caller for the given mode.
func Project(mode string, c models.CoachFeedback) models.Feedback {
	fb := models.Feedback{CoachFeedback: c}
	if mode == models.ModeTeacher {
		view := TeacherView(c)
		fb.TeacherMetrics = &view
	}
	return fb
}
