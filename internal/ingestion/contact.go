package ingestion

import (
	"regexp"
	"strings"

	"github.com/jonathan/ats-analyzer/internal/types"
)

var (
	emailRe    = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRe    = regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{2,4}\)|\d{2,4})[\s.\-]?\d{3,4}[\s.\-]?\d{3,4}`)
	linkedInRe = regexp.MustCompile(`(?i)\b(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[a-z0-9_\-%]+/?`)
	websiteRe  = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s,;|]+|\bgithub\.com/[a-z0-9_\-]+`)
)

// minPhoneDigits rejects short numeric runs such as years or date ranges
const minPhoneDigits = 10

// ExtractContactInfo finds contact details anywhere in the text. Contact
// blocks usually precede the first heading, so this runs over the full text
// rather than a detected section.
func ExtractContactInfo(text string) types.ContactInfo {
	var info types.ContactInfo

	info.Email = emailRe.FindString(text)
	info.LinkedIn = strings.TrimSuffix(linkedInRe.FindString(text), "/")

	for _, candidate := range phoneRe.FindAllString(text, -1) {
		if countDigits(candidate) >= minPhoneDigits {
			info.Phone = strings.TrimSpace(candidate)
			break
		}
	}

	for _, candidate := range websiteRe.FindAllString(text, -1) {
		if strings.Contains(strings.ToLower(candidate), "linkedin.com") {
			continue
		}
		info.Website = strings.TrimRight(candidate, ".)")
		break
	}
	return info
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
