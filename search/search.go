// Package search builds Google search URLs and turns rendered results
// pages into deduplicated LinkedIn profile records.
package search

import (
	"net/url"
	"strconv"
	"time"
)

const googleSearchURL = "https://www.google.com/search"

// ResultsPerPage is the page size Google uses for the start parameter
const ResultsPerPage = 10

// RawMatch is an unfiltered (title, link) pair taken from result markup
type RawMatch struct {
	Title string
	Link  string
}

// ProfileRecord is a filtered, deduplicated match. ScrapedAt is set by the
// writer so every row of a run carries the same timestamp.
type ProfileRecord struct {
	Title     string
	Link      string
	ScrapedAt time.Time
}

// BuildURL assembles the search URL for the zero-based results page.
// fresh appends a volatile _t parameter so repeated runs do not get a
// cached results page.
func BuildURL(query string, fresh bool, page int, now time.Time) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en")

	if page > 0 {
		params.Set("start", strconv.Itoa(page*ResultsPerPage))
	}
	if fresh {
		params.Set("_t", strconv.FormatInt(now.UnixNano(), 10))
	}

	return googleSearchURL + "?" + params.Encode()
}
