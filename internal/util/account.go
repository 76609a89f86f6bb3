package util

import (
	"regexp"
	"strings"

	"optilink/internal"
)

var accountPattern = regexp.MustCompile(`^(\d+)([A-Za-z]*)$`)

var accountTypeBySuffix = map[string]string{
	"A": internal.AccountTypeAccessory,
	"F": internal.AccountTypeFrame,
	"K": internal.AccountTypeSurface,
	"S": internal.AccountTypeBrandLens,
	"E": internal.AccountTypeEdging,
	"":  internal.AccountTypeLens,
}

// ParseAccountNumber splits an account number into its numeric base, optional
// letter suffix and the account type encoded by the suffix. A nil input yields
// all-nil fields; a string that does not fit the digits-then-letters shape keeps
// its original text as BaseAccount with type Unknown.
func ParseAccountNumber(accountNo *string) internal.AccountInfo {
	if accountNo == nil {
		return internal.AccountInfo{}
	}

	value := strings.TrimSpace(*accountNo)
	match := accountPattern.FindStringSubmatch(value)
	if match == nil {
		return internal.AccountInfo{
			BaseAccount: StringPtr(value),
			Suffix:      StringPtr(""),
			AccountType: StringPtr(internal.AccountTypeUnknown),
		}
	}

	base := match[1]
	suffix := strings.ToUpper(match[2])
	accountType, ok := accountTypeBySuffix[suffix]
	if !ok {
		accountType = internal.AccountTypeOther
	}

	return internal.AccountInfo{
		BaseAccount: StringPtr(base),
		Suffix:      StringPtr(suffix),
		AccountType: StringPtr(accountType),
	}
}
