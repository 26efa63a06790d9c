package validation

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)

var bareDomains = map[string]string{
	"gmail":   "gmail.com",
	"yahoo":   "yahoo.com",
	"hotmail": "hotmail.com",
	"outlook": "outlook.com",
	"icloud":  "icloud.com",
}

// ExtractEmail rebuilds an address from dictation such as
// "john dot smith at gmail dot com". The result is lowercased.
func ExtractEmail(text string) (string, bool) {
	s := " " + strings.ToLower(NormalizeString(text)) + " "
	replacements := []struct{ from, to string }{
		{" at sign ", "@"},
		{" at ", "@"},
		{" dot ", "."},
		{" period ", "."},
		{" underscore ", "_"},
		{" dash ", "-"},
		{" hyphen ", "-"},
	}
	for _, r := range replacements {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	s = strings.TrimSpace(s)

	// A domain spoken without its suffix ("at gmail").
	if at := strings.LastIndex(s, "@"); at >= 0 {
		rest := s[at+1:]
		end := strings.IndexAny(rest, " ,")
		domain := rest
		if end >= 0 {
			domain = rest[:end]
		}
		if full, ok := bareDomains[domain]; ok {
			s = s[:at+1] + full + rest[len(domain):]
		}
	}

	// Speech recognizers insert spaces inside the local part.
	if at := strings.Index(s, "@"); at > 0 {
		local := s[:at]
		if i := strings.LastIndex(local, " is "); i >= 0 {
			local = local[i+4:]
		}
		s = strings.ReplaceAll(local, " ", "") + s[at:]
	}

	m := emailPattern.FindString(s)
	if m == "" {
		return "", false
	}
	return strings.Trim(m, "."), true
}

// DeclinesEmail reports that the caller does not want to give an email.
func DeclinesEmail(text string) bool {
	lower := strings.ToLower(text)
	if containsAny(lower, "no email", "don't have", "dont have", "skip", "rather not", "none", "no thanks", "no thank you") {
		return true
	}
	tokens := tokenize(lower)
	return len(tokens) == 1 && (tokens[0] == "no" || tokens[0] == "nope")
}
