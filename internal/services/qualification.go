package services

import (
	"fmt"
	"strings"
	"unicode"

	"jobportal/internal/models"
)

// QualificationLevel is a canonical education level. Levels are ordered,
// lowest first, so they compare directly as integers.
type QualificationLevel int

const (
	LevelUnknown QualificationLevel = iota - 1
	LevelHighSchool
	LevelDiploma
	LevelAssociate
	LevelBachelors
	LevelMasters
	LevelPhD
)

func (l QualificationLevel) String() string {
	switch l {
	case LevelHighSchool:
		return "high_school"
	case LevelDiploma:
		return "diploma"
	case LevelAssociate:
		return "associate"
	case LevelBachelors:
		return "bachelors"
	case LevelMasters:
		return "masters"
	case LevelPhD:
		return "phd"
	}
	return "unknown"
}

// AliasTable maps each canonical level to the case-insensitive substrings
// that identify it in free-text degree strings. It is plain data so
// deployments can extend or localize it.
type AliasTable map[QualificationLevel][]string

func DefaultAliasTable() AliasTable {
	return AliasTable{
		LevelHighSchool: {"high school", "secondary", "ssc", "10th", "matric", "hssc", "12th", "intermediate", "junior college"},
		LevelDiploma:    {"diploma", "polytechnic"},
		LevelAssociate:  {"associate", "associate degree"},
		LevelBachelors:  {"bachelor", "bachelors", "undergraduate", "grad", "college degree", "btech", "b.sc", "bcom", "ba"},
		LevelMasters:    {"master", "masters", "postgraduate", "m.sc", "mba", "ma", "mtech"},
		LevelPhD:        {"phd", "doctorate", "doctoral", "dphil"},
	}
}

// matchOrder fixes the level probe order: lowest level wins when a
// string matches aliases of several levels.
var matchOrder = []QualificationLevel{
	LevelHighSchool,
	LevelDiploma,
	LevelAssociate,
	LevelBachelors,
	LevelMasters,
	LevelPhD,
}

type Eligibility struct {
	Eligible bool
	Message  string
}

type QualificationMatcher interface {
	Normalize(input string) QualificationLevel
	CheckEligibility(required string, records []models.UserEducation) Eligibility
}

type qualificationMatcher struct {
	aliases AliasTable
}

func NewQualificationMatcher(aliases AliasTable) QualificationMatcher {
	if aliases == nil {
		aliases = DefaultAliasTable()
	}
	// Punctuation is stripped on both sides of the comparison, so
	// dotted forms like "B.Tech" and "M.Sc" match their aliases.
	normalized := make(AliasTable, len(aliases))
	for level, list := range aliases {
		cleaned := make([]string, 0, len(list))
		for _, alias := range list {
			cleaned = append(cleaned, stripPunctuation(strings.ToLower(alias)))
		}
		normalized[level] = cleaned
	}
	return &qualificationMatcher{aliases: normalized}
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			return r
		}
		return -1
	}, s)
}

// Normalize maps a free-text degree string to a canonical level, or
// LevelUnknown when nothing matches.
func (m *qualificationMatcher) Normalize(input string) QualificationLevel {
	normalized := stripPunctuation(strings.ToLower(strings.TrimSpace(input)))
	if normalized == "" {
		return LevelUnknown
	}

	for _, level := range matchOrder {
		for _, alias := range m.aliases[level] {
			if strings.Contains(normalized, alias) {
				return level
			}
		}
	}
	return LevelUnknown
}

// CheckEligibility decides whether the applicant's education records
// satisfy the job's required qualification. An unrecognized requirement
// never blocks an application; unrecognized records are ignored as long
// as at least one recognized record qualifies.
func (m *qualificationMatcher) CheckEligibility(required string, records []models.UserEducation) Eligibility {
	requiredLevel := m.Normalize(required)
	if requiredLevel == LevelUnknown {
		return Eligibility{
			Eligible: true,
			Message:  fmt.Sprintf("Job qualification %q not recognized, proceeding with application", required),
		}
	}

	if len(records) == 0 {
		return Eligibility{
			Eligible: false,
			Message:  "No education records found. Please add your qualifications to apply.",
		}
	}

	highest := LevelUnknown
	highestDegree := ""
	for _, record := range records {
		level := m.Normalize(record.Degree)
		if level > highest {
			highest = level
			highestDegree = record.Degree
		}
	}

	if highest == LevelUnknown {
		return Eligibility{
			Eligible: false,
			Message:  "None of your qualifications are recognized. Please update your education details.",
		}
	}

	if highest < requiredLevel {
		return Eligibility{
			Eligible: false,
			Message:  fmt.Sprintf("You are not eligible. Required: %s, but your highest qualification is: %s", required, highestDegree),
		}
	}

	return Eligibility{
		Eligible: true,
		Message:  fmt.Sprintf("Qualification requirements met. Your highest qualification: %s, Required: %s", highestDegree, required),
	}
}
