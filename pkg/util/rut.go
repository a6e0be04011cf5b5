package util

import (
	"strconv"
	"strings"
)

// NormalizeRUT strips dots and whitespace and upper-cases the check digit.
func NormalizeRUT(raw string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	return cleaned
}

// ValidRUT checks the format 12345678-9 and its modulo-11 check digit.
func ValidRUT(raw string) bool {
	rut := NormalizeRUT(raw)
	body, dv, ok := strings.Cut(rut, "-")
	if !ok || len(body) < 7 || len(body) > 8 || len(dv) != 1 {
		return false
	}
	for _, r := range body {
		if r < '0' || r > '9' {
			return false
		}
	}
	return rutCheckDigit(body) == dv
}

func rutCheckDigit(body string) string {
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch rem := 11 - sum%11; rem {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(rem)
	}
}
