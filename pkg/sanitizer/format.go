package sanitizer

import "strings"

// NormalizeEmail lowercases and trims an address and collapses repeated dots
// in the local part. Input without exactly one "@" is only trimmed and lowercased.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}

	local = dotRegex.ReplaceAllString(local, ".")
	local = strings.Trim(local, ".")

	return local + "@" + domain
}

// ExtractEmailDomain returns the lowercased domain of an address, or "".
func ExtractEmailDomain(email string) string {
	_, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok {
		return ""
	}
	return strings.ToLower(domain)
}

// NormalizePhone trims a phone number and collapses inner whitespace while
// keeping the separators a phone pattern may rely on.
func NormalizePhone(phone string) string {
	return RemoveExtraWhitespace(phone)
}

// PhoneDigits returns only the digits of a phone number.
func PhoneDigits(phone string) string {
	return KeepDigits(phone)
}
