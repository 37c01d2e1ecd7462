package banking

import (
	"strings"

	"github.com/shopspring/decimal"
)

// facilityKeywords mark account type descriptions that imply a credit facility
var facilityKeywords = []string{
	"overdraft",
	"loan",
	"credit",
	"facility",
	"line of credit",
	"term loan",
}

// IsFacilityAccount decides whether an account represents a credit facility
// rather than a deposit account. The precedence is load-bearing:
//
//  1. an exact account type match wins outright, in both directions;
//  2. otherwise a keyword match on the type description implies a facility;
//  3. otherwise a negative ending balance implies a facility.
func IsFacilityAccount(accountType *string, endingBalance decimal.Decimal) bool {
	if accountType != nil {
		normalized := strings.ToLower(strings.TrimSpace(*accountType))

		switch normalized {
		case "facility account":
			return true
		case "current account":
			return false
		}

		for _, keyword := range facilityKeywords {
			if strings.Contains(normalized, keyword) {
				return true
			}
		}
	}

	return endingBalance.IsNegative()
}
