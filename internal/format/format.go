// Package format renders Brazilian registry fields (CPF, phone numbers)
// for display.
package format

import "strings"

// NotInformed is shown when a document or phone field is empty.
const NotInformed = "not informed"

// DigitsOnly strips everything but decimal digits from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCPF renders an 11-digit CPF as 123.456.789-00. Inputs that are
// not exactly 11 digits are returned unchanged, empty input becomes
// NotInformed.
func FormatCPF(cpf string) string {
	if cpf == "" {
		return NotInformed
	}
	d := DigitsOnly(cpf)
	if len(d) != 11 {
		return cpf
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// MaskCPF hides the middle digits of a CPF, keeping the first three and
// the check digits visible: 123.***.***-00.
func MaskCPF(cpf string) string {
	if cpf == "" {
		return NotInformed
	}
	d := DigitsOnly(cpf)
	if len(d) != 11 {
		return cpf
	}
	return d[:3] + ".***.***-" + d[9:]
}

// FormatPhone renders a Brazilian phone number with its area code:
// 11 digits become (11) 99999-9999, 10 digits become (11) 9999-9999.
// Anything else is returned unchanged, empty input becomes NotInformed.
func FormatPhone(phone string) string {
	if phone == "" {
		return NotInformed
	}
	d := DigitsOnly(phone)
	switch len(d) {
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return phone
	}
}
