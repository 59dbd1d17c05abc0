package controller

import (
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/stages"
)

const (
	emptyAnswerPlaceholder = "(No answer provided)"
	summaryWords           = 10
)

func openingLine(scenario string) string {
	question := stages.At(0).Question
	if scenario == models.ScenarioLanguageClass {
		return fmt.Sprintf("Welcome class. Today we practice speaking with interview questions. First question: %s", question)
	}
	return fmt.Sprintf("Welcome class. Interview simulation starts now. First question: %s", question)
}

func summarize(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "your answer"
	}
	if len(words) > summaryWords {
		words = words[:summaryWords]
	}
	return strings.Join(words, " ")
}

func advanceLine(userText string, next stages.Stage) string {
	return fmt.Sprintf("Good. Quick summary: %q. Next question: %s", summarize(userText), next.Question)
}

func wrapUpLine() string {
	return "Strong close. That completes the interview practice. You can refine your closing pitch once more if you like."
}

func missingLine(stage stages.Stage, issues []string) string {
	return fmt.Sprintf("You're close, but the answer is still missing something. %s Try again: %s",
		strings.Join(issues, " "), stage.Question)
}

func clarifyLine(stage stages.Stage) string {
	return fmt.Sprintf("I understand the confusion. In simple terms, this question asks for %s. For example: %s Now please try your own answer.",
		stage.RequirementHint, stage.Example)
}

func repeatLine(stage stages.Stage) string {
	return fmt.Sprintf("Of course. The question is: %s Include %s. For example: %s",
		stage.Question, stage.RequirementHint, stage.Example)
}

func redirectLine(stage stages.Stage) string {
	return fmt.Sprintf("Let's stay on the interview. Please answer the current question: %s Use a short structure: situation, action, result, and include %s.",
		stage.Question, stage.RequirementHint)
}

func metaLine(stage stages.Stage) string {
	return fmt.Sprintf("This is a practice interview. I ask one question at a time, your classmates react, and the coach panel tracks confidence, vocabulary, and clarity. One or two focused sentences are fine. Current question: %s",
		stage.Question)
}

func endLine(stage stages.Stage) string {
	return fmt.Sprintf("We can wrap up soon, but let's finish this one first. Current question: %s", stage.Question)
}

func nudgeLine(stage stages.Stage) string {
	return fmt.Sprintf("Please answer the current question first: %s", stage.Question)
}

func bridgeLine(peer models.Role, stage stages.Stage) string {
	return fmt.Sprintf("Thanks, %s. Now back to the question: %s", peer.DisplayName(), stage.Question)
}

const unknownActionLine = "I did not understand that action. Please try again."

func supportiveLine(peer models.Role) string {
	switch peer {
	case models.RoleAlex:
		return "Nice answer. Clear and to the point."
	case models.RoleSofia:
		return "I liked that. It sounded really natural."
	default:
		return "Great energy! That answer was very strong, I think."
	}
}

func lukewarmLine(peer models.Role) string {
	switch peer {
	case models.RoleAlex:
		return "Good start. Add one concrete detail and it becomes strong."
	case models.RoleSofia:
		return "I'm not fully sure yet, but I think you are close."
	default:
		return "Good try! Maybe say more what you did exactly."
	}
}

func peerClarifyLine(peer models.Role, stage stages.Stage) string {
	switch peer {
	case models.RoleAlex:
		return fmt.Sprintf("Sure. I meant: give %s. Something like: %s", stage.RequirementHint, stage.Example)
	case models.RoleSofia:
		return fmt.Sprintf("Oh, sorry if that was unclear. I think the teacher wants %s. Maybe like: %s", stage.RequirementHint, stage.Example)
	default:
		return fmt.Sprintf("Yes! I mean you need tell %s. For example: %s", stage.RequirementHint, stage.Example)
	}
}

// classLine is what a peer says when the instructor poses a prompt.
func classLine(peer models.Role, prompt string) string {
	topic := summarize(prompt)
	switch peer {
	case models.RoleAlex:
		return fmt.Sprintf("On %q: I built a campus support app and improved repeat usage by 21%% through weekly user interviews.", topic)
	case models.RoleSofia:
		return fmt.Sprintf("I think %q is clear. Maybe can you repeat the success criteria once more?", topic)
	default:
		return "Great pace, teacher! Class is active and we can answer faster now."
	}
}

func turnFor(role models.Role, text string) models.Turn {
	return models.Turn{Speaker: role.DisplayName(), Role: role, Text: text}
}
