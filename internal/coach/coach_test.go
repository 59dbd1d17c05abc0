package coach

import (
	"math/rand"
	"testing"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
)

func TestBaseline(t *testing.T) {
	b := Baseline()
	if b.Confidence != 62 || b.Vocabulary != 58 || b.Clarity != 60 {
		t.Errorf("unexpected baseline scores: %+v", b)
	}
	if b.Level != LevelB1 {
		t.Errorf("expected B1, got %s", b.Level)
	}
	if len(b.GrammarIssues) != 2 {
		t.Errorf("expected 2 grammar issues, got %v", b.GrammarIssues)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		prev       models.CoachFeedback
		deltas     models.ScoreDeltas
		issues     []string
		wantConf   int
		wantVocab  int
		wantLevel  string
		wantIssues []string
	}{
		{
			name:       "positive deltas keep previous issues",
			prev:       Baseline(),
			deltas:     models.ScoreDeltas{Confidence: 2, Vocabulary: 2, Clarity: 2},
			wantConf:   64,
			wantVocab:  60,
			wantLevel:  LevelB1,
			wantIssues: []string{"Article usage", "Sentence variety"},
		},
		{
			name:       "issues replace grammar list",
			prev:       Baseline(),
			deltas:     models.ScoreDeltas{Confidence: -1, Clarity: -2},
			issues:     []string{"Include the result or impact."},
			wantConf:   61,
			wantVocab:  58,
			wantLevel:  LevelB1,
			wantIssues: []string{"Include the result or impact."},
		},
		{
			name:       "vocabulary threshold promotes level",
			prev:       models.CoachFeedback{Confidence: 70, Vocabulary: 75, Clarity: 70},
			deltas:     models.ScoreDeltas{Vocabulary: 1},
			wantConf:   70,
			wantVocab:  76,
			wantLevel:  LevelB2,
			wantIssues: []string{},
		},
		{
			name:       "upper clamp",
			prev:       models.CoachFeedback{Confidence: 97, Vocabulary: 97, Clarity: 97},
			deltas:     models.ScoreDeltas{Confidence: 2, Vocabulary: 2, Clarity: 2},
			wantConf:   98,
			wantVocab:  98,
			wantLevel:  LevelB2,
			wantIssues: []string{},
		},
		{
			name:       "oversized delta is bounded",
			prev:       Baseline(),
			deltas:     models.ScoreDeltas{Confidence: -40},
			wantConf:   57,
			wantVocab:  58,
			wantLevel:  LevelB1,
			wantIssues: []string{"Article usage", "Sentence variety"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.prev, tt.deltas, "tip", tt.issues)

			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence: got %d, want %d", got.Confidence, tt.wantConf)
			}
			if got.Vocabulary != tt.wantVocab {
				t.Errorf("Vocabulary: got %d, want %d", got.Vocabulary, tt.wantVocab)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("Level: got %s, want %s", got.Level, tt.wantLevel)
			}
			if len(got.GrammarIssues) != len(tt.wantIssues) {
				t.Fatalf("GrammarIssues: got %v, want %v", got.GrammarIssues, tt.wantIssues)
			}
			for i := range got.GrammarIssues {
				if got.GrammarIssues[i] != tt.wantIssues[i] {
					t.Errorf("GrammarIssues[%d]: got %s, want %s", i, got.GrammarIssues[i], tt.wantIssues[i])
				}
			}
			if len(got.Tips) != 2 || got.Tips[0] != "tip" {
				t.Errorf("unexpected tips: %v", got.Tips)
			}
		})
	}
}

func TestApply_ScoresStayClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	fb := Baseline()

	for i := 0; i < 5000; i++ {
		deltas := models.ScoreDeltas{
			Confidence: rng.Intn(41) - 20,
			Vocabulary: rng.Intn(41) - 20,
			Clarity:    rng.Intn(41) - 20,
		}
		fb = Apply(fb, deltas, "tip", nil)

		for _, v := range []int{fb.Confidence, fb.Vocabulary, fb.Clarity} {
			if v < MinScore || v > MaxScore {
				t.Fatalf("score %d escaped [%d,%d] at step %d", v, MinScore, MaxScore, i)
			}
		}
		if fb.Level != LevelFor(fb.Vocabulary) {
			t.Fatalf("level %s inconsistent with vocabulary %d", fb.Level, fb.Vocabulary)
		}
	}
}

func TestWithTip(t *testing.T) {
	prev := Baseline()
	got := WithTip(prev, "Answer the question.")

	if got.Confidence != prev.Confidence || got.Vocabulary != prev.Vocabulary || got.Clarity != prev.Clarity {
		t.Errorf("scores changed: %+v", got)
	}
	if got.Tips[0] != "Answer the question." {
		t.Errorf("unexpected tip %q", got.Tips[0])
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(models.CoachFeedback{Confidence: 3, Vocabulary: 500, Clarity: 60})

	if got.Confidence != MinScore || got.Vocabulary != MaxScore {
		t.Errorf("expected clamped scores, got %+v", got)
	}
	if got.Level != LevelB2 {
		t.Errorf("expected level recomputed to B2, got %s", got.Level)
	}
	if got.Tips == nil || got.GrammarIssues == nil {
		t.Error("expected non-nil slices")
	}
}

func TestProject(t *testing.T) {
	fb := Baseline()

	learner := Project(models.ModeLearner, fb)
	if learner.TeacherMetrics != nil {
		t.Error("learner mode should not include teacher metrics")
	}

	teacher := Project(models.ModeTeacher, fb)
	if teacher.TeacherMetrics == nil {
		t.Fatal("teacher mode should include teacher metrics")
	}
	m := teacher.TeacherMetrics
	if m.StudentGrowth != fb.Confidence || m.Engagement != fb.Clarity || m.ClarityTrend != fb.Vocabulary {
		t.Errorf("unexpected projection: %+v", m)
	}
	if len(m.CommonErrors) != len(fb.GrammarIssues) {
		t.Errorf("expected common errors to mirror grammar issues")
	}
}
