package export

import (
	"regexp"
	"strings"
)

var (
	reNumPrefix = regexp.MustCompile(`^\d+(\.\d+)*\s*`)
	reNonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify converts a heading title to a directory-friendly slug: numbering
// prefix removed, lowercased, runs of punctuation collapsed to underscores.
func Slugify(text string) string {
	if text == "" {
		return "untitled"
	}
	text = reNumPrefix.ReplaceAllString(text, "")
	text = strings.ToLower(strings.TrimSpace(text))
	text = reNonAlnum.ReplaceAllString(text, "_")
	text = strings.Trim(text, "_")
	if text == "" {
		return "untitled"
	}
	return text
}

// CleanTitle strips the numbering prefix from a title:
// "1.1 Health & Disease Defined" -> "Health & Disease Defined".
func CleanTitle(title string) string {
	if title == "" {
		return "Untitled"
	}
	cleaned := strings.TrimSpace(reNumPrefix.ReplaceAllString(title, ""))
	if cleaned == "" {
		return "Untitled"
	}
	return cleaned
}

// SectionID builds the human-readable section id from slugs, e.g.
// "intro/overview" or "features/linking/anchors".
func SectionID(chapterSlug, sectionSlug, subsectionSlug string) string {
	switch {
	case subsectionSlug != "":
		return chapterSlug + "/" + sectionSlug + "/" + subsectionSlug
	case sectionSlug != "":
		return chapterSlug + "/" + sectionSlug
	default:
		return chapterSlug + "/intro"
	}
}
