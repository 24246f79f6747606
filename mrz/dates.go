package mrz

import (
	"fmt"
	"log/slog"
	"time"
)

// ParseDate converts an MRZ YYMMDD date to an ISO YYYY-MM-DD date, resolving
// the missing century. Dates of birth are always historical: a computed year
// past the current one is moved back a century. Expiration dates are always
// forward-looking relative to issuance: a computed year more than ten years
// in the past is moved forward a century, which covers passports expiring
// just after a century rollover.
//
// Malformed input (wrong length, non-numeric) yields the empty string.
func ParseDate(yymmdd string, isExpiration bool) string {
	if len(yymmdd) != 6 || !allDigits(yymmdd) {
		return ""
	}

	yy := int(yymmdd[0]-'0')*10 + int(yymmdd[1]-'0')
	month := yymmdd[2:4]
	day := yymmdd[4:6]

	currentYear := time.Now().Year()
	year := currentYear/100*100 + yy

	if isExpiration {
		if year < currentYear-10 {
			// An expiration this far back is assumed to be a century
			// rollover rather than a document expired for decades.
			// Logged so the assumption stays visible downstream.
			slog.Warn("expiration year far in the past, assuming century rollover",
				"yymmdd", yymmdd, "computed_year", year)
			year += 100
		}
	} else if year > currentYear {
		year -= 100
	}

	return fmt.Sprintf("%04d-%s-%s", year, month, day)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
