package search

import (
	"iter"
	"regexp"
	"strings"
)

// ProfilePattern matches a cleaned LinkedIn profile URL, with or without a
// country subdomain (www., uk., de., ...).
var ProfilePattern = regexp.MustCompile(`(?i)^https?://([a-z0-9-]+\.)?linkedin\.com/in/[^/?#\s]+$`)

// CleanLink drops tracking query strings, fragments and a trailing slash
func CleanLink(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	return strings.TrimSuffix(link, "/")
}

// IsProfileLink reports whether link is a LinkedIn profile URL once cleaned
func IsProfileLink(link string) bool {
	return ProfilePattern.MatchString(CleanLink(link))
}

// Normalize keeps profile links in first-seen order, drops repeated links
// and stops pulling from seq once max records are collected.
func Normalize(seq iter.Seq[RawMatch], max int) []ProfileRecord {
	out := []ProfileRecord{}
	if max <= 0 {
		return out
	}

	seen := make(map[string]bool)
	for m := range seq {
		link := CleanLink(m.Link)
		if !IsProfileLink(link) || seen[link] {
			continue
		}
		seen[link] = true

		out = append(out, ProfileRecord{Title: m.Title, Link: link})
		if len(out) >= max {
			break
		}
	}
	return out
}
