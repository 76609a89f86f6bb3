package pipeline

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestGenerateAliasesDeterministic(t *testing.T) {
	ids := []string{"BUS_0003", "BUS_0001", "BUS_0002"}

	first := GenerateAliases(ids)
	second := GenerateAliases([]string{"BUS_0002", "BUS_0003", "BUS_0001"})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("alias assignment depends on input order:\n%v\n%v", first, second)
	}

	if len(first) != 3 {
		t.Fatalf("got %d aliases, want 3", len(first))
	}
	for i, m := range first {
		if i > 0 && first[i-1].BusinessID >= m.BusinessID {
			t.Fatalf("business IDs not sorted: %v", first)
		}
		if !strings.Contains(m.OpticalName, "Optical") {
			t.Fatalf("alias %q missing Optical suffix", m.OpticalName)
		}
	}
}

func TestGenerateAliasesUnique(t *testing.T) {
	ids := make([]string, 0, 80)
	for i := 1; i <= 80; i++ {
		ids = append(ids, fmt.Sprintf("BUS_%04d", i))
	}

	seen := map[string]string{}
	for _, m := range GenerateAliases(ids) {
		if prev, dup := seen[m.OpticalName]; dup {
			t.Fatalf("alias %q assigned to both %s and %s", m.OpticalName, prev, m.BusinessID)
		}
		seen[m.OpticalName] = m.BusinessID
	}
}

func TestFillMissingBusinessIDsPrefersUnused(t *testing.T) {
	available := []string{"BUS_0001", "BUS_0002", "BUS_0003"}
	used := []string{"BUS_0002"}

	assigned := FillMissingBusinessIDs([]int{10, 11}, available, used)
	if len(assigned) != 2 {
		t.Fatalf("assigned %d emails, want 2", len(assigned))
	}
	for emailID, id := range assigned {
		if id == "BUS_0002" {
			t.Fatalf("email %d got an already linked business ID", emailID)
		}
	}
	if assigned[10] == assigned[11] {
		t.Fatalf("both emails got %s while unused IDs remained", assigned[10])
	}
}

func TestFillMissingBusinessIDsFallsBackToFullPool(t *testing.T) {
	available := []string{"BUS_0001"}

	assigned := FillMissingBusinessIDs([]int{1, 2, 3}, available, available)
	if len(assigned) != 3 {
		t.Fatalf("assigned %d emails, want 3", len(assigned))
	}
	for _, id := range assigned {
		if id != "BUS_0001" {
			t.Fatalf("unexpected business ID %q", id)
		}
	}
}

func TestFillMissingBusinessIDsDeterministic(t *testing.T) {
	available := []string{"BUS_0005", "BUS_0001", "BUS_0004", "BUS_0002", "BUS_0003"}
	emails := []int{7, 8, 9}

	first := FillMissingBusinessIDs(emails, available, nil)
	second := FillMissingBusinessIDs(emails, available, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("backfill not deterministic:\n%v\n%v", first, second)
	}
}
