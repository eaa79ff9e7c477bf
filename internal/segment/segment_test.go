package segment

import (
	"testing"

	"github.com/seqlab/prospect/internal/classify"
	"github.com/seqlab/prospect/internal/profile"
	"github.com/seqlab/prospect/internal/rubric"
	"github.com/seqlab/prospect/internal/scoring"
)

func item(name string, trueCodes ...string) classify.Item {
	set := rubric.AllFalse()
	for _, code := range trueCodes {
		set[code] = true
	}
	return classify.Item{
		Source:   profile.Source{Record: profile.Record{Name: name}},
		Criteria: set,
		Score:    scoring.Score(set),
	}
}

func TestSplitNegativeFactorsWinOverScores(t *testing.T) {
	// Strong profile, but N1 disqualifies it.
	s := Split([]classify.Item{item("Forte", "PA1", "PA2", "PA3", "PA4", "S1", "S2", "S3", "N1")})

	if len(s.Negative) != 1 {
		t.Fatalf("negative list has %d entries, want 1", len(s.Negative))
	}
	for _, cat := range rubric.Categories() {
		if len(s.Categories[cat]) != 0 {
			t.Errorf("category %s list not empty: %d entries", cat.Code(), len(s.Categories[cat]))
		}
	}
}

func TestSplitTieBreakPrecedence(t *testing.T) {
	// PA and C both reach ALTA; precedence places the profile in C.
	s := Split([]classify.Item{item("Empatada", "PA1", "PA3", "C1", "C2")})

	if len(s.Categories[rubric.CategoryC]) != 1 {
		t.Errorf("tied profile not in C: %+v", s.Categories)
	}
	if len(s.Categories[rubric.CategoryPA]) != 0 {
		t.Error("tied profile duplicated into PA")
	}
}

func TestSplitAllBaixaLandsInFirstPrecedenceCategory(t *testing.T) {
	s := Split([]classify.Item{item("Fraca")})

	if len(s.Categories[rubric.CategoryC]) != 1 {
		t.Errorf("all-BAIXA profile not in C: %+v", s.Categories)
	}
}

func TestSplitBestTierChoosesCategory(t *testing.T) {
	// S is the only ALTA; PA is MODERADA.
	s := Split([]classify.Item{item("Sintetista", "PA1", "S1", "S2", "S3")})

	if len(s.Categories[rubric.CategoryS]) != 1 {
		t.Errorf("profile not in S: %+v", s.Categories)
	}
}

func TestSplitSortsByNameAndRanks(t *testing.T) {
	s := Split([]classify.Item{
		item("Carla", "S1", "S2", "S3"),
		item("Alice", "S1", "S2", "S3"),
		item("Bruno", "S1", "S2", "S3"),
	})

	list := s.Categories[rubric.CategoryS]
	if len(list) != 3 {
		t.Fatalf("S list has %d entries, want 3", len(list))
	}
	wantNames := []string{"Alice", "Bruno", "Carla"}
	for i, a := range list {
		if a.Item.Source.Record.Name != wantNames[i] {
			t.Errorf("position %d: %s, want %s", i, a.Item.Source.Record.Name, wantNames[i])
		}
		if a.Rank != i+1 {
			t.Errorf("position %d: rank %d, want %d", i, a.Rank, i+1)
		}
	}
}

func TestViableExcludesNegativesAndSortsByMean(t *testing.T) {
	items := []classify.Item{
		item("Fraca"),
		item("Forte", "PA1", "PA2", "PA3", "PA4", "S1", "S2", "S3"),
		item("Inadequada", "PA1", "N1", "N2"),
		item("Media", "PA1", "S1"),
	}

	viable := Viable(items)

	if len(viable) != 3 {
		t.Fatalf("viable has %d entries, want 3", len(viable))
	}
	wantOrder := []string{"Forte", "Media", "Fraca"}
	for i, it := range viable {
		if it.Source.Record.Name != wantOrder[i] {
			t.Errorf("position %d: %s, want %s", i, it.Source.Record.Name, wantOrder[i])
		}
	}
	for i := 1; i < len(viable); i++ {
		if viable[i].Score.Mean > viable[i-1].Score.Mean {
			t.Error("viable list not sorted by mean descending")
		}
	}
}
