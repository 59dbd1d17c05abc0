package stages

import "github.com/povarna/generative-ai-agents/classroom-agent/internal/models"

type ID string

const (
	Intro       ID = "intro"
	Achievement ID = "achievement"
	Project     ID = "project"
	Challenge   ID = "challenge"
	Why         ID = "why"
	Closing     ID = "closing"
)

// Stage is one question of the interview script.
type Stage struct {
	ID              ID     `json:"id"`
	Question        string `json:"question"`
	RequirementHint string `json:"requirementHint"`
	Example         string `json:"example"`
}

var catalog = [...]Stage{
	{
		ID:              Intro,
		Question:        "Introduce yourself in 2-3 concise sentences.",
		RequirementHint: "your background, current role or study, and why you want this internship",
		Example:         "I am a computer science student with two years of JavaScript projects, and I want this internship to grow in production engineering.",
	},
	{
		ID:              Achievement,
		Question:        "Share one measurable achievement and explain the impact.",
		RequirementHint: "one number or metric and the impact it had",
		Example:         "I improved API response time by 32% after introducing caching.",
	},
	{
		ID:              Project,
		Question:        "Walk through one project: your role, key decision, and result.",
		RequirementHint: "the project, your specific role or action, and the result",
		Example:         "I built a campus app, led the backend design, and increased weekly usage by 25%.",
	},
	{
		ID:              Challenge,
		Question:        "Describe a challenge or conflict in a team and how you resolved it.",
		RequirementHint: "the challenge or conflict and how you resolved it",
		Example:         "Our team had a conflict about release scope, so I set up a short call, we agreed on priorities, and the issue was resolved in a day.",
	},
	{
		ID:              Why,
		Question:        "Why should we hire you for this internship?",
		RequirementHint: "how your skills and experience fit this role and the value you bring",
		Example:         "My testing experience and team skills fit this role, and I can contribute value from the first week.",
	},
	{
		ID:              Closing,
		Question:        "Give a short closing pitch for your candidacy.",
		RequirementHint: "a short closing statement with the value you would contribute",
		Example:         "Thank you for the opportunity. I am excited to contribute my skills and grow with the team.",
	},
}

var peers = [...]models.Role{models.RoleAlex, models.RoleSofia, models.RoleJamal}

func Count() int {
	return len(catalog)
}

// LastIndex is the index of the terminal stage.
func LastIndex() int {
	return len(catalog) - 1
}

// Clamp keeps index inside [0, Count()-1].
func Clamp(index int) int {
	if index < 0 {
		return 0
	}
	if index > LastIndex() {
		return LastIndex()
	}
	return index
}

// At returns the stage at the clamped index. It never fails.
func At(index int) Stage {
	return catalog[Clamp(index)]
}

func IndexOf(id ID) (int, bool) {
	for i, s := range catalog {
		if s.ID == id {
			return i, true
		}
	}
	return 0, false
}

func All() []Stage {
	out := make([]Stage, len(catalog))
	copy(out, catalog[:])
	return out
}

func Peers() []models.Role {
	out := make([]models.Role, len(peers))
	copy(out, peers[:])
	return out
}

// NextPeer selects the peer for a rotation index, round robin.
func NextPeer(rotation int) models.Role {
	if rotation < 0 {
		rotation = -rotation
	}
	return peers[rotation%len(peers)]
}

// NormalizeRotation maps any integer onto a valid rotation index.
func NormalizeRotation(rotation int) int {
	if rotation < 0 {
		rotation = -rotation
	}
	return rotation % len(peers)
}
