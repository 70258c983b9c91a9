package interviews

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxNotesLen    = 4000
	maxFeedbackLen = 4000
	maxLocationLen = 500
	maxReasonLen   = 1000
	maxNameLen     = 200
	maxLinkLen     = 2048
	maxIdemKeyLen  = 256
)

// plainText drops markup from user supplied text and trims it.
func plainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	return strings.TrimSpace(doc.Text())
}

func cleanField(name, value string, max int) (string, error) {
	v := plainText(value)
	if utf8.RuneCountInString(v) > max {
		return "", validationError(fmt.Sprintf("%s must be at most %d characters", name, max))
	}
	return v, nil
}

func cleanLink(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", nil
	}
	if len(v) > maxLinkLen {
		return "", validationError("video_link too long")
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", validationError("video_link must be an http(s) URL")
	}
	return v, nil
}

func (s *Service) cleanEmail(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", nil
	}
	if err := s.validate.Var(v, "email,max=254"); err != nil {
		return "", validationError("interviewer_email must be a valid email address")
	}
	return v, nil
}
