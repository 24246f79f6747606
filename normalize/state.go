package normalize

import "strings"

// stateCodes maps lowercase US state names to their 2-letter codes.
var stateCodes = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"district of columbia": "DC", "florida": "FL", "georgia": "GA",
	"hawaii": "HI", "idaho": "ID", "illinois": "IL", "indiana": "IN",
	"iowa": "IA", "kansas": "KS", "kentucky": "KY", "louisiana": "LA",
	"maine": "ME", "maryland": "MD", "massachusetts": "MA", "michigan": "MI",
	"minnesota": "MN", "mississippi": "MS", "missouri": "MO", "montana": "MT",
	"nebraska": "NE", "nevada": "NV", "new hampshire": "NH", "new jersey": "NJ",
	"new mexico": "NM", "new york": "NY", "north carolina": "NC",
	"north dakota": "ND", "ohio": "OH", "oklahoma": "OK", "oregon": "OR",
	"pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA",
	"west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
}

var validStateCodes = func() map[string]struct{} {
	codes := make(map[string]struct{}, len(stateCodes))
	for _, code := range stateCodes {
		codes[code] = struct{}{}
	}
	return codes
}()

// State normalizes a US state name or abbreviation to its 2-letter code.
// Unrecognised input is returned unchanged so nothing is lost for manual
// review.
func State(state string) string {
	state = strings.TrimSpace(state)
	if state == "" {
		return ""
	}

	if len(state) == 2 {
		if _, ok := validStateCodes[strings.ToUpper(state)]; ok {
			return strings.ToUpper(state)
		}
	}

	lower := strings.ToLower(state)
	if code, ok := stateCodes[lower]; ok {
		return code
	}

	// Partial match covers truncated or clipped OCR output like "calif"
	// or "york". Only an unambiguous match normalizes; anything matching
	// several state names ("new", "dakota") passes through for manual
	// review.
	match := ""
	for name, code := range stateCodes {
		if strings.Contains(name, lower) {
			if match != "" && match != code {
				return state
			}
			match = code
		}
	}
	if match != "" {
		return match
	}
	return state
}
