package mrz

// checkDigitWeights cycle over the data characters per ICAO 9303 part 3.
var checkDigitWeights = [3]int{7, 3, 1}

// CheckDigit computes the ICAO 9303 check digit over data.
// Digits map to their value, A-Z to 10-35, filler and anything
// unrecognised to 0.
func CheckDigit(data string) int {
	sum := 0
	for i := 0; i < len(data); i++ {
		sum += charValue(data[i]) * checkDigitWeights[i%3]
	}
	return sum % 10
}

func charValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'A' && ch <= 'Z':
		return int(ch) - 55
	default:
		return 0
	}
}

// checkDigitMatches reports whether the single-character digit field equals
// the check digit computed over data. A non-numeric digit character never
// matches.
func checkDigitMatches(data string, digit byte) bool {
	if digit < '0' || digit > '9' {
		return false
	}
	return CheckDigit(data) == int(digit-'0')
}
