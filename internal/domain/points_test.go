package domain

import "testing"

func TestPointsEarnedBounds(t *testing.T) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		perfect := PointsEarned(10, 10, d)
		if perfect != BasePoints(d)*10 {
			t.Fatalf("perfect score for %s: expected %d, got %d", d, BasePoints(d)*10, perfect)
		}
		if got := PointsEarned(0, 10, d); got != 0 {
			t.Fatalf("zero score for %s: expected 0 points, got %d", d, got)
		}
	}
}

func TestPointsEarnedPartial(t *testing.T) {
	// 7/10 medium: round(0.7 * 20 * 10) = 140.
	if got := PointsEarned(7, 10, DifficultyMedium); got != 140 {
		t.Fatalf("expected 140 points, got %d", got)
	}
	if got := PointsEarned(3, 10, DifficultyHard); got != 90 {
		t.Fatalf("expected 90 points, got %d", got)
	}
	if got := PointsEarned(1, 3, DifficultyEasy); got != 10 {
		t.Fatalf("expected round(10/3*3)=10 points, got %d", got)
	}
}

func TestPointsEarnedEmptyTotal(t *testing.T) {
	if got := PointsEarned(0, 0, DifficultyMedium); got != 0 {
		t.Fatalf("expected 0 points for empty quiz, got %d", got)
	}
}

func TestBasePointsUnknownDifficulty(t *testing.T) {
	if got := BasePoints(Difficulty("impossible")); got != 10 {
		t.Fatalf("expected easy fallback of 10, got %d", got)
	}
}

func TestChoicesDeterministicOrder(t *testing.T) {
	q := Question{
		Text:             "Which gas do plants absorb?",
		CorrectAnswer:    "Carbon Dioxide",
		IncorrectAnswers: []string{"Oxygen", "Nitrogen", "Argon"},
	}
	first := q.Choices()
	if len(first) != 4 {
		t.Fatalf("expected 4 choices, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		if first[i-1] > first[i] {
			t.Fatalf("choices not lexically sorted: %v", first)
		}
	}
	for i := 0; i < 5; i++ {
		again := q.Choices()
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("choice order unstable: %v vs %v", first, again)
			}
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	if _, err := ParseDifficulty("medium"); err != nil {
		t.Fatalf("expected medium to parse, got %v", err)
	}
	if _, err := ParseDifficulty("brutal"); err != ErrInvalidDifficulty {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}
