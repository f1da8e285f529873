package validation

import (
	"strconv"
	"strings"
)

// CheckDigit computes the modulo-11 check digit of a RUT body.
// Digits are weighted 2,3,4,5,6,7,2,3,... from the right; 11 maps to "0" and 10 to "K".
func CheckDigit(rut int) string {
	sum, weight := 0, 2
	for n := rut; n > 0; n /= 10 {
		sum += (n % 10) * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(r)
	}
}

// ValidRUT reports whether dv is the check digit of rut, case-insensitively.
func ValidRUT(rut int, dv string) bool {
	if rut <= 0 || len(dv) != 1 {
		return false
	}
	return strings.EqualFold(CheckDigit(rut), dv)
}

// ParseRUT splits "12.345.678-5", "12345678-5" or "123456785" into body and
// upper-cased check digit. It does not verify the digit.
func ParseRUT(s string) (int, string, bool) {
	s = strings.NewReplacer(".", "", " ", "").Replace(strings.TrimSpace(s))
	var body, dv string
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		body, dv = s[:i], s[i+1:]
	} else if len(s) > 1 {
		body, dv = s[:len(s)-1], s[len(s)-1:]
	}
	if body == "" || len(dv) != 1 || len(body) > 9 {
		return 0, "", false
	}
	for _, r := range body {
		if r < '0' || r > '9' {
			return 0, "", false
		}
	}
	n, err := strconv.Atoi(body)
	if err != nil || n <= 0 {
		return 0, "", false
	}
	return n, strings.ToUpper(dv), true
}

// FormatRUT renders "12345678-5"
func FormatRUT(rut int, dv string) string {
	return strconv.Itoa(rut) + "-" + strings.ToUpper(dv)
}

// CheckRUT parses and verifies s, recording a field error on failure.
func CheckRUT(errs *Errors, field, s string) (int, string) {
	rut, dv, ok := ParseRUT(s)
	if !ok {
		errs.Add(field, "RUT must look like 12345678-5")
		return 0, ""
	}
	if !ValidRUT(rut, dv) {
		errs.Add(field, "RUT check digit is invalid")
		return 0, ""
	}
	return rut, dv
}
