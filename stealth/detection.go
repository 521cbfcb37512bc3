package stealth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ChallengeType categorizes anti-bot interstitials served instead of results
type ChallengeType string

const (
	ChallengeSorryPage      ChallengeType = "SORRY_PAGE"
	ChallengeCaptcha        ChallengeType = "CAPTCHA"
	ChallengeUnusualTraffic ChallengeType = "UNUSUAL_TRAFFIC"
	ChallengeConsentWall    ChallengeType = "CONSENT_WALL"
)

// ChallengeError reports an anti-bot challenge on a loaded page
type ChallengeError struct {
	Type    ChallengeType
	Message string
	URL     string
}

func (e *ChallengeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// DetectionResult holds the result of a page check
type DetectionResult struct {
	Blocked   bool
	Error     *ChallengeError
	PageURL   string
	CheckedAt time.Time
}

// URL patterns Google redirects to when it refuses to serve results
var urlPatterns = []struct {
	Type    ChallengeType
	Pattern string
}{
	{ChallengeSorryPage, "google.com/sorry/"},
	{ChallengeSorryPage, "/sorry/index"},
	{ChallengeConsentWall, "consent.google."},
}

// Lowercased text patterns of the interstitial pages
var textPatterns = map[ChallengeType][]string{
	ChallengeUnusualTraffic: {
		"our systems have detected unusual traffic",
		"unusual traffic from your computer network",
	},
	ChallengeCaptcha: {
		"i'm not a robot",
		"to continue, please type the characters",
		"please solve this captcha",
	},
}

// Order is fixed so that a page matching several patterns always reports
// the same type.
var textPatternOrder = []ChallengeType{ChallengeUnusualTraffic, ChallengeCaptcha}

var domPatterns = []struct {
	Type     ChallengeType
	Selector string
}{
	{ChallengeCaptcha, `iframe[src*="recaptcha"]`},
	{ChallengeCaptcha, `form#captcha-form`},
	{ChallengeCaptcha, `div#recaptcha, div.g-recaptcha`},
}

// resultsContainer wraps the organic results on a served SERP
const resultsContainer = "#search, #rso"

// CheckURL checks only the final URL of a loaded page. Google's /sorry/
// interstitial and consent wall are always redirects, so this is safe to run
// on every page.
func CheckURL(pageURL string) *DetectionResult {
	result := &DetectionResult{
		PageURL:   pageURL,
		CheckedAt: time.Now(),
	}
	if err := checkURLPatterns(pageURL); err != nil {
		result.Blocked = true
		result.Error = err
	}
	return result
}

// CheckPage inspects a loaded page's final URL and HTML for anti-bot
// challenges. URL patterns are checked first, then body text, then DOM.
// Text and DOM checks are skipped on pages that carry a results container,
// since result snippets may quote challenge phrases.
func CheckPage(pageURL, html string) *DetectionResult {
	result := CheckURL(pageURL)
	if result.Blocked {
		return result
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable markup is an extraction problem, not a challenge
		return result
	}
	if doc.Find(resultsContainer).Length() > 0 {
		return result
	}

	if err := checkPageContent(doc); err != nil {
		result.Blocked = true
		result.Error = err
	} else if err := checkDOMElements(doc); err != nil {
		result.Blocked = true
		result.Error = err
	}

	if result.Error != nil {
		result.Error.URL = pageURL
	}
	return result
}

func checkURLPatterns(pageURL string) *ChallengeError {
	urlLower := strings.ToLower(pageURL)

	for _, p := range urlPatterns {
		if strings.Contains(urlLower, p.Pattern) {
			err := createError(p.Type)
			err.URL = pageURL
			return err
		}
	}
	return nil
}

func checkPageContent(doc *goquery.Document) *ChallengeError {
	pageText := strings.ToLower(doc.Find("body").Text())

	for _, errType := range textPatternOrder {
		for _, pattern := range textPatterns[errType] {
			if strings.Contains(pageText, pattern) {
				return createError(errType)
			}
		}
	}
	return nil
}

func checkDOMElements(doc *goquery.Document) *ChallengeError {
	for _, p := range domPatterns {
		if doc.Find(p.Selector).Length() > 0 {
			return createError(p.Type)
		}
	}
	return nil
}

func createError(errType ChallengeType) *ChallengeError {
	err := &ChallengeError{Type: errType}

	switch errType {
	case ChallengeSorryPage:
		err.Message = "Google redirected to its /sorry/ interstitial"
	case ChallengeCaptcha:
		err.Message = "CAPTCHA challenge detected"
	case ChallengeUnusualTraffic:
		err.Message = "Google reported unusual traffic from this network"
	case ChallengeConsentWall:
		err.Message = "cookie consent wall shown instead of results"
	default:
		err.Message = "unknown challenge detected"
	}

	return err
}

// IsChallenge reports whether err is or wraps a *ChallengeError
func IsChallenge(err error) bool {
	var ce *ChallengeError
	return errors.As(err, &ce)
}

// PrintDetectionStatus prints a summary of detection status
func PrintDetectionStatus(result *DetectionResult) {
	if !result.Blocked {
		fmt.Println("✅ Page Status: OK")
		return
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("⚠️ CHALLENGE DETECTED\n")
	fmt.Printf("   Type: %s\n", result.Error.Type)
	fmt.Printf("   Message: %s\n", result.Error.Message)
	fmt.Printf("   URL: %s\n", result.PageURL)
	fmt.Printf("   Time: %s\n", result.CheckedAt.Format("15:04:05"))
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}
