package util

import (
	"testing"

	"optilink/internal"
)

func TestParseAccountNumber(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		wantBase string
		wantSfx  string
		wantType string
	}{
		{name: "accessory suffix", input: "1341A", wantBase: "1341", wantSfx: "A", wantType: "Accessory"},
		{name: "no suffix is lens", input: "1513", wantBase: "1513", wantSfx: "", wantType: "Lens"},
		{name: "frame suffix", input: "200F", wantBase: "200", wantSfx: "F", wantType: "Frame"},
		{name: "surface suffix", input: "200k", wantBase: "200", wantSfx: "K", wantType: "Surface"},
		{name: "brand lens suffix", input: "7S", wantBase: "7", wantSfx: "S", wantType: "Brand Lens"},
		{name: "edging suffix", input: "7e", wantBase: "7", wantSfx: "E", wantType: "Edging"},
		{name: "unrecognized suffix", input: "1341X", wantBase: "1341", wantSfx: "X", wantType: "Other"},
		{name: "letters only", input: "ABC", wantBase: "ABC", wantSfx: "", wantType: "Unknown"},
		{name: "embedded digits", input: "A12B", wantBase: "A12B", wantSfx: "", wantType: "Unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseAccountNumber(&tc.input)
			if got.BaseAccount == nil || *got.BaseAccount != tc.wantBase {
				t.Fatalf("base=%v want %q", got.BaseAccount, tc.wantBase)
			}
			if got.Suffix == nil || *got.Suffix != tc.wantSfx {
				t.Fatalf("suffix=%v want %q", got.Suffix, tc.wantSfx)
			}
			if got.AccountType == nil || *got.AccountType != tc.wantType {
				t.Fatalf("type=%v want %q", got.AccountType, tc.wantType)
			}
		})
	}
}

func TestParseAccountNumberNil(t *testing.T) {
	got := ParseAccountNumber(nil)
	if got.BaseAccount != nil || got.Suffix != nil || got.AccountType != nil {
		t.Fatalf("nil input must yield nil fields, got %+v", got)
	}
}

func TestParseAccountNumberRoundTrip(t *testing.T) {
	for _, input := range []string{"1341A", "1513", "99F", "200K", "1E"} {
		got := ParseAccountNumber(&input)
		if *got.BaseAccount+*got.Suffix != input {
			t.Fatalf("round trip broken for %q: %q + %q", input, *got.BaseAccount, *got.Suffix)
		}
	}
}

func TestParseAccountNumberTypeDomain(t *testing.T) {
	valid := map[string]bool{
		internal.AccountTypeAccessory: true,
		internal.AccountTypeFrame:     true,
		internal.AccountTypeSurface:   true,
		internal.AccountTypeBrandLens: true,
		internal.AccountTypeEdging:    true,
		internal.AccountTypeLens:      true,
		internal.AccountTypeOther:     true,
		internal.AccountTypeUnknown:   true,
	}
	for _, input := range []string{"1341A", "1", "1Z", "xyz", "12-3", ""} {
		got := ParseAccountNumber(&input)
		if got.AccountType == nil || !valid[*got.AccountType] {
			t.Fatalf("type out of domain for %q: %v", input, got.AccountType)
		}
	}
}
