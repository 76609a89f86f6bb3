package pipeline

import (
	"testing"

	"optilink/internal/config"
	"optilink/internal/util"
)

func testScorer() *Scorer {
	return &Scorer{FuzzyWeight: 0.4, SequenceWeight: 0.4, DomainWeight: 0.2}
}

func TestCombinedSelfMatchWithDomain(t *testing.T) {
	s := testScorer()
	name := util.NormalizeBusinessName("ABC Vision Center")
	combined, _, _, _ := s.Combined(name, name, "abcvision.com", "abcvision.com")
	if combined != 100 {
		t.Fatalf("self match with domain: got %v want 100", combined)
	}
}

func TestCombinedSelfMatchWithoutDomain(t *testing.T) {
	s := testScorer()
	name := util.NormalizeBusinessName("ABC Vision Center")
	combined, _, _, _ := s.Combined(name, name, "abcvision.com", "other.com")
	if combined < 80 {
		t.Fatalf("name components alone must reach 80, got %v", combined)
	}
}

func TestCombinedDissimilarBelowThreshold(t *testing.T) {
	s := testScorer()
	a := util.NormalizeBusinessName("abc vision")
	b := util.NormalizeBusinessName("xyz optical")
	combined, _, _, _ := s.Combined(a, b, "a.com", "b.com")
	if combined >= 70 {
		t.Fatalf("dissimilar names must score below 70, got %v", combined)
	}
}

func TestCombinedEmptyInputs(t *testing.T) {
	s := testScorer()
	if combined, _, _, _ := s.Combined("", "bright opt", "a.com", "a.com"); combined != 0 {
		t.Fatalf("empty email name: got %v", combined)
	}
	if combined, _, _, _ := s.Combined("bright opt", "", "a.com", "a.com"); combined != 0 {
		t.Fatalf("empty customer name: got %v", combined)
	}
}

func TestNameComponentsSymmetric(t *testing.T) {
	a := "bright opt"
	b := "crystal vis ctr"
	if FuzzyScore(a, b) != FuzzyScore(b, a) {
		t.Fatal("fuzzy score must be symmetric")
	}
	if SequenceScore(a, b) != SequenceScore(b, a) {
		t.Fatal("sequence score must be symmetric")
	}
}

func TestDomainScoreExactOnly(t *testing.T) {
	if DomainScore("shop.com", "shop.com") != 100 {
		t.Fatal("exact domain must score 100")
	}
	if DomainScore("shop.com", "sub.shop.com") != 0 {
		t.Fatal("non-exact domain must score 0")
	}
	if DomainScore("", "") != 0 {
		t.Fatal("blank domains must score 0")
	}
}

func TestNewScorerUsesConfigWeights(t *testing.T) {
	cfg, _ := config.Load()
	s := NewScorer(cfg)
	if s.FuzzyWeight != 0.4 || s.SequenceWeight != 0.4 || s.DomainWeight != 0.2 {
		t.Fatalf("default weights wrong: %+v", s)
	}
}
