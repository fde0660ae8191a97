package logger

import "strings"

const masked = "[MASKED]"

// MaskMedicare masks a Medicare number for log fields, keeping the first
// and last digit only.
func MaskMedicare(medicare string) string {
	if len(medicare) < 4 {
		return masked
	}
	return medicare[:1] + "***" + medicare[len(medicare)-1:]
}

// MaskPhone masks a phone number, keeping the last four digits.
func MaskPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 4 {
		return masked
	}
	return "***" + d[len(d)-4:]
}

// MaskDate fully masks a date-of-birth value.
func MaskDate(string) string { return masked }
