package wikipedia

import (
	"regexp"
	"strconv"
	"strings"

	"filmloc/internal/catalog"
)

// Candidate is one place name pulled from an article.
type Candidate struct {
	Name          string
	City          string
	StateProvince string
	Country       string
	// Text is the cleaned phrase the candidate was parsed from.
	Text string
}

var (
	headingPattern = regexp.MustCompile(`^(={2,6})\s*(.*?)\s*={2,6}\s*$`)

	// Level-two headings win over level-three ones, matching editorial
	// convention where "Filming" is usually a subsection of "Production".
	topHeadingPattern = regexp.MustCompile(`(?i)^(filming|production|principal photography|shooting locations?)$`)
	subHeadingPattern = regexp.MustCompile(`(?i)^(filming locations?|shooting locations?)$`)

	refPattern       = regexp.MustCompile(`(?is)<ref[^>/]*/>|<ref[^>]*>.*?</ref>`)
	commentPattern   = regexp.MustCompile(`(?s)<!--.*?-->`)
	templatePattern  = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	pipedLinkPattern = regexp.MustCompile(`\[\[[^\]|]*\|([^\]]+)\]\]`)
	linkPattern      = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
	parenPattern     = regexp.MustCompile(`\([^)]*\)`)

	phrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)filmed (?:in|at) ([^.;\n]+)`),
		regexp.MustCompile(`(?i)shot (?:in|at|on location in) ([^.;\n]+)`),
		regexp.MustCompile(`(?i)scenes were filmed at ([^.;\n]+)`),
		regexp.MustCompile(`(?im)(?:^|[.;]\s*)([^.;\n]+?) was used for`),
		regexp.MustCompile(`(?m)^\*+\s*([^:\n]+?)\s*(?::|$)`),
	}

	// A phrase stops at the first clause that is no longer part of a place.
	clauseStop = regexp.MustCompile(`(?i)\s+(?:in )?(?:1[89]|20)\d\d\b.*$|\s+(?:during|from|for|between|while|where|which|when|before|after|on|over|with|as|and then)\s+.*$`)

	// Acronyms match case-sensitively so prose like "for us" is not a country.
	countryAliases = []struct {
		pattern *regexp.Regexp
		country string
	}{
		{regexp.MustCompile(`\b(USA|US)\b|(?i:\b(United States|America)\b)`), "United States"},
		{regexp.MustCompile(`\bUK\b|(?i:\b(United Kingdom|Britain|England|Scotland|Wales)\b)`), "United Kingdom"},
		{regexp.MustCompile(`(?i)\bCanada\b`), "Canada"},
		{regexp.MustCompile(`(?i)\bAustralia\b`), "Australia"},
		{regexp.MustCompile(`\bNZ\b|(?i:\bNew Zealand\b)`), "New Zealand"},
	}

	titlePattern = regexp.MustCompile(`^(.*?)\s*\((?:(\d{4})\s+)?(film|movie|TV series|television series|miniseries|TV miniseries)\)$`)
)

// FilmingSection returns the body of the article's filming section, or ""
// when the article has none.
func FilmingSection(wikitext string) string {
	lines := strings.Split(wikitext, "\n")
	start, level := findHeading(lines, 2, topHeadingPattern)
	if start < 0 {
		start, level = findHeading(lines, 3, subHeadingPattern)
	}
	if start < 0 {
		return ""
	}
	var body []string
	for _, line := range lines[start+1:] {
		if m := headingPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil && len(m[1]) <= level {
			break
		}
		body = append(body, line)
	}
	return strings.Join(body, "\n")
}

func findHeading(lines []string, level int, names *regexp.Regexp) (int, int) {
	for i, line := range lines {
		m := headingPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil || len(m[1]) != level {
			continue
		}
		if names.MatchString(m[2]) {
			return i, level
		}
	}
	return -1, 0
}

// CleanWikitext strips references, comments, templates and markup, keeping
// link labels.
func CleanWikitext(text string) string {
	text = refPattern.ReplaceAllString(text, "")
	text = commentPattern.ReplaceAllString(text, "")
	for templatePattern.MatchString(text) {
		text = templatePattern.ReplaceAllString(text, "")
	}
	text = pipedLinkPattern.ReplaceAllString(text, "$1")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = tagPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "'''", "")
	text = strings.ReplaceAll(text, "''", "")
	return text
}

// ExtractCandidates parses place names from the filming section of
// wikitext. Phrases shorter than six or longer than 199 characters are
// ignored, as are phrases with no recognizable country. Duplicates within
// one article are collapsed.
func ExtractCandidates(wikitext string) []Candidate {
	section := FilmingSection(wikitext)
	if section == "" {
		return nil
	}
	section = CleanWikitext(section)

	var (
		out  []Candidate
		seen = make(map[string]struct{})
	)
	for _, pattern := range phrasePatterns {
		for _, m := range pattern.FindAllStringSubmatch(section, -1) {
			phrase := strings.TrimSpace(clauseStop.ReplaceAllString(m[1], ""))
			phrase = strings.Trim(phrase, " ,")
			if len(phrase) <= 5 || len(phrase) >= 200 {
				continue
			}
			candidate, ok := parseLocation(phrase)
			if !ok {
				continue
			}
			key := strings.ToLower(candidate.Name + "|" + candidate.Country)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, candidate)
		}
	}
	return out
}

// parseLocation splits "Name, City, State, Country" style phrases. The last
// part is the country unless a known alias appears anywhere in the phrase.
func parseLocation(text string) (Candidate, bool) {
	text = strings.TrimSpace(parenPattern.ReplaceAllString(text, ""))
	var parts []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return Candidate{}, false
	}

	candidate := Candidate{Name: parts[0], Text: text}
	split := false
	if len(parts) == 1 {
		// "Château de Chambord in France"
		if i := strings.LastIndex(parts[0], " in "); i > 0 {
			candidate.Name = strings.TrimSpace(parts[0][:i])
			parts = []string{candidate.Name, strings.TrimSpace(parts[0][i+len(" in "):])}
			split = true
		}
	}
	switch n := len(parts); {
	case n == 2 && !split:
		candidate.City = parts[0]
	case n == 3:
		candidate.City = parts[1]
	case n >= 4:
		candidate.City = parts[n-3]
		candidate.StateProvince = parts[n-2]
	}
	if len(parts) >= 2 {
		candidate.Country = parts[len(parts)-1]
	}
	for _, alias := range countryAliases {
		if alias.pattern.MatchString(text) {
			candidate.Country = alias.country
			break
		}
	}
	if candidate.Country == "" {
		return Candidate{}, false
	}
	return candidate, true
}

// ProductionFromTitle derives the production descriptor from an article
// title such as "Skyfall (2012 film)" or "Sherlock (TV series)".
func ProductionFromTitle(title string) catalog.ProductionInput {
	title = strings.TrimSpace(title)
	production := catalog.ProductionInput{Title: title, Type: catalog.ProductionMovie}
	m := titlePattern.FindStringSubmatch(title)
	if m == nil {
		return production
	}
	production.Title = m[1]
	if m[2] != "" {
		if year, err := strconv.Atoi(m[2]); err == nil {
			production.ReleaseYear = &year
		}
	}
	if strings.Contains(strings.ToLower(m[3]), "series") {
		production.Type = catalog.ProductionTVShow
	}
	return production
}
