package validation

import "fmt"

// FormatPhone renders a digit string for storage and display:
// 10 digits as (XXX) XXX-XXXX, 11 digits with a leading 1 the same way,
// 12 to 14 digits as +digits, longer input trimmed to its last 14 digits.
// Shorter input comes back as bare digits.
func FormatPhone(digits string) string {
	d := onlyDigits(digits)
	switch {
	case len(d) == 10:
		return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
	case len(d) == 11 && d[0] == '1':
		return fmt.Sprintf("(%s) %s-%s", d[1:4], d[4:7], d[7:])
	case len(d) >= 11 && len(d) <= 14:
		return "+" + d
	case len(d) > 14:
		return "+" + d[len(d)-14:]
	}
	return d
}

// ExtractPhone finds a phone number of at least ten digits in spoken input.
func ExtractPhone(text string) (string, bool) {
	digits := ExtractDigits(text)
	if len(digits) < 10 {
		return "", false
	}
	return FormatPhone(digits), true
}

// ToE164 converts a formatted phone into +<country><number>. US numbers
// without a country code get +1.
func ToE164(phone string) string {
	d := onlyDigits(phone)
	switch {
	case d == "":
		return ""
	case len(d) == 10:
		return "+1" + d
	}
	return "+" + d
}

// SamePhone compares two phone strings by their E.164 form.
func SamePhone(a, b string) bool {
	ea, eb := ToE164(a), ToE164(b)
	return ea != "" && ea == eb
}
