package customers

import (
	"reflect"
	"testing"
)

func sp(v string) *string { return &v }

func TestAssignBusinessIDs(t *testing.T) {
	got := AssignBusinessIDs([]string{"1513", "1341", "1341", "200"})
	// Sorting is lexicographic over the base strings, so "200" sorts last.
	want := map[string]string{
		"1341": "BUS_0001",
		"1513": "BUS_0002",
		"200":  "BUS_0003",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAssignBusinessIDsIdempotent(t *testing.T) {
	bases := []string{"77", "1341", "9", "1341"}
	first := AssignBusinessIDs(bases)
	second := AssignBusinessIDs(bases)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("mapping changed between runs: %v vs %v", first, second)
	}
}

func TestProcessCollapsesSuffixAccounts(t *testing.T) {
	rows := []RawRow{
		{Name: "1001 OPTICAL #1341", AccountNo: sp("1341")},
		{Name: "1001 OPTICAL #1341A", AccountNo: sp("1341A")},
		{Name: "SOLO VISION", AccountNo: sp("1513")},
	}

	records := Process(rows)
	if len(records) != 3 {
		t.Fatalf("len=%d", len(records))
	}

	if records[0].BusinessID == nil || records[1].BusinessID == nil {
		t.Fatal("business ids missing")
	}
	if *records[0].BusinessID != *records[1].BusinessID {
		t.Fatalf("same base must share business id: %s vs %s", *records[0].BusinessID, *records[1].BusinessID)
	}
	if *records[0].BusinessID != "BUS_0001" {
		t.Fatalf("unexpected id %s", *records[0].BusinessID)
	}
	if *records[2].BusinessID != "BUS_0002" {
		t.Fatalf("unexpected id %s", *records[2].BusinessID)
	}

	if !records[0].IsMainAccount || records[1].IsMainAccount {
		t.Fatal("main account flag wrong")
	}
	if !records[0].HasMultipleAccounts || !records[1].HasMultipleAccounts || records[2].HasMultipleAccounts {
		t.Fatal("multi-account flag wrong")
	}

	if records[0].CleanName != "1001 OPTICAL" {
		t.Fatalf("clean name %q", records[0].CleanName)
	}
	if records[0].NormalizedName != "1001 opt" {
		t.Fatalf("normalized name %q", records[0].NormalizedName)
	}
}

func TestBuildIndexLookups(t *testing.T) {
	records := Process([]RawRow{
		{Name: "BRIGHT OPTICAL #22", AccountNo: sp("22"), MainEmail: sp("orders@brightoptical.com")},
		{Name: "CRYSTAL VISION", AccountNo: sp("31F")},
	})
	idx := BuildIndex(records)

	if got := idx.BusinessIDForName("BRIGHT OPTICAL #22F"); got == nil || *got != "BUS_0001" {
		t.Fatalf("clean-name lookup failed: %v", got)
	}
	if got := idx.BusinessIDForName("NO SUCH SHOP"); got != nil {
		t.Fatalf("unknown name must resolve to nil, got %v", got)
	}
	if len(idx.ByDomain["brightoptical.com"]) != 1 {
		t.Fatal("domain index missing record")
	}
}
