package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// amountRegex finds the first number-like run in a string, including
// thousands groups and a decimal part written with either '.' or ','.
var amountRegex = regexp.MustCompile(`\d[\d.,]*`)

// ParseAmount cleans a price string and converts it to a float64.
// Both "1.299,99" and "1,299.99" read as 1299.99: the last separator is the
// decimal mark when it is followed by one or two digits, every other
// separator is a thousands group. It returns ok=false when nothing parses.
func ParseAmount(priceStr string) (float64, bool) {
	found := amountRegex.FindString(priceStr)
	if found == "" {
		return 0, false
	}
	found = strings.TrimRight(found, ".,")

	decimal := ""
	if i := strings.LastIndexAny(found, ".,"); i >= 0 {
		if frac := found[i+1:]; len(frac) == 1 || len(frac) == 2 {
			decimal = frac
			found = found[:i]
		}
	}

	cleaned := strings.NewReplacer(".", "", ",", "").Replace(found)
	if decimal != "" {
		cleaned += "." + decimal
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParsePercent reads a percentage number such as "30", "12,5" or "12.5".
func ParsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
