package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"masrag/internal/doctree"
)

// MetadataError means neither the filename nor the header yielded the
// document identity. Fatal: no reliable citation is possible without it.
type MetadataError struct {
	Filename string
	Reason   string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata extraction failed for %q: %s", e.Filename, e.Reason)
}

// Strict filename convention used by published notices:
// "MAS Notice 758_dated 18 Dec 2024_effective 26 Dec 2024.pdf".
// The effective segment is optional; some notices have none.
var filenameRe = regexp.MustCompile(
	`^(MAS Notice \w+)_dated ([0-9A-Za-z ]+?)(?:_effective ([0-9A-Za-z ]+?))?\.[A-Za-z]+$`)

// Looser labeled-field patterns for the first-page header fallback.
var (
	headerNoticeRe = regexp.MustCompile(`(?i)\b(MAS\s+Notice\s+(?:No\.?\s*)?[A-Z]*\d+[A-Z]*)\b`)
	headerDatedRe  = regexp.MustCompile(`(?i)\b(?:dated|issued(?:\s+on)?|issue\s+date\s*:?|publication\s+date\s*:?)\s*(\d{1,2}\s+[A-Za-z]+\s+\d{4}|\d{4}-\d{2}-\d{2})`)
	headerEffRe    = regexp.MustCompile(`(?i)\beffective(?:\s+date)?\s*:?\s*(?:from\s+)?(\d{1,2}\s+[A-Za-z]+\s+\d{4}|\d{4}-\d{2}-\d{2})`)
)

var dateLayouts = []string{
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"02 January 2006",
	"2006-01-02",
}

// ExtractMetadata derives document identity from the filename, falling back
// to the first page's header lines. NoticeID and PublicationDate are
// required; a genuinely absent EffectiveDate is recorded as empty rather
// than guessed.
func ExtractMetadata(filename string, header []doctree.RawLine) (doctree.DocumentMetadata, error) {
	if m := filenameRe.FindStringSubmatch(filename); m != nil {
		pub, err := normalizeDate(m[2])
		if err == nil {
			eff := ""
			if m[3] != "" {
				if e, err := normalizeDate(m[3]); err == nil {
					eff = e
				}
			}
			return doctree.DocumentMetadata{
				NoticeID:        m[1],
				PublicationDate: pub,
				EffectiveDate:   eff,
			}, nil
		}
	}

	meta := doctree.DocumentMetadata{}
	for _, ln := range header {
		text := normalizeSpace(ln.Text)
		if meta.NoticeID == "" {
			if m := headerNoticeRe.FindStringSubmatch(text); m != nil {
				meta.NoticeID = normalizeNoticeID(m[1])
			}
		}
		if meta.PublicationDate == "" {
			if m := headerDatedRe.FindStringSubmatch(text); m != nil {
				if d, err := normalizeDate(m[1]); err == nil {
					meta.PublicationDate = d
				}
			}
		}
		if meta.EffectiveDate == "" {
			if m := headerEffRe.FindStringSubmatch(text); m != nil {
				if d, err := normalizeDate(m[1]); err == nil {
					meta.EffectiveDate = d
				}
			}
		}
	}

	switch {
	case meta.NoticeID == "":
		return doctree.DocumentMetadata{}, &MetadataError{Filename: filename, Reason: "no notice identifier in filename or header"}
	case meta.PublicationDate == "":
		return doctree.DocumentMetadata{}, &MetadataError{Filename: filename, Reason: "no publication date in filename or header"}
	}
	return meta, nil
}

// normalizeDate parses the date forms notices actually use and renders the
// ISO calendar form.
func normalizeDate(s string) (string, error) {
	s = normalizeSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// normalizeNoticeID collapses header spellings like "MAS Notice No. 758"
// to the canonical "MAS Notice 758".
func normalizeNoticeID(s string) string {
	s = normalizeSpace(s)
	s = regexp.MustCompile(`(?i)\bNo\.?\s*`).ReplaceAllString(s, "")
	fields := strings.Fields(s)
	for i, f := range fields[:2] {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	fields[0] = strings.ToUpper(fields[0])
	return normalizeSpace(strings.Join(fields, " "))
}
