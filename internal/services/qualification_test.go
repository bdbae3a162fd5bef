package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobportal/internal/models"
)

func education(degrees ...string) []models.UserEducation {
	records := make([]models.UserEducation, 0, len(degrees))
	for i, degree := range degrees {
		records = append(records, models.UserEducation{
			ID:     uint(i + 1),
			UserID: 1,
			Degree: degree,
		})
	}
	return records
}

func TestNormalize(t *testing.T) {
	matcher := NewQualificationMatcher(nil)

	tests := []struct {
		name  string
		input string
		want  QualificationLevel
	}{
		{"bachelor plain", "Bachelor of Science", LevelBachelors},
		{"btech", "B.Tech in Computer Science", LevelBachelors},
		{"masters", "Masters in Data Science", LevelMasters},
		// "mba" contains the bachelors alias "ba" and lower levels win on
		// overlap, mirroring the legacy matching behavior.
		{"mba alias overlap", "MBA", LevelBachelors},
		{"phd", "PhD in Physics", LevelPhD},
		{"doctorate", "Doctorate", LevelPhD},
		{"diploma", "Polytechnic Diploma", LevelDiploma},
		{"high school", "High School Certificate", LevelHighSchool},
		{"12th", "12th Standard", LevelHighSchool},
		{"whitespace and case", "  bAcHeLoRs  ", LevelBachelors},
		// Substring matching: "master" inside a longer course name
		// still classifies as masters.
		{"master inside course name", "Certified Scrum Master Course", LevelMasters},
		{"dotted btech", "B.Tech", LevelBachelors},
		{"dotted msc", "M.Sc. Physics", LevelMasters},
		{"unrecognized", "Culinary Arts Certificate", LevelUnknown},
		{"empty", "", LevelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matcher.Normalize(tt.input))
		})
	}
}

func TestCheckEligibility(t *testing.T) {
	matcher := NewQualificationMatcher(nil)

	t.Run("unknown requirement never blocks", func(t *testing.T) {
		result := matcher.CheckEligibility("Ninja Certification", nil)
		assert.True(t, result.Eligible)
		assert.Contains(t, result.Message, "Ninja Certification")
	})

	t.Run("no education records fails", func(t *testing.T) {
		result := matcher.CheckEligibility("Bachelors", nil)
		assert.False(t, result.Eligible)
		assert.Contains(t, result.Message, "add your qualifications")
	})

	t.Run("all records unrecognized fails", func(t *testing.T) {
		result := matcher.CheckEligibility("Bachelors", education("Some Bootcamp", "Online Course"))
		assert.False(t, result.Eligible)
		assert.Contains(t, result.Message, "None of your qualifications are recognized")
	})

	t.Run("btech satisfies diploma requirement", func(t *testing.T) {
		result := matcher.CheckEligibility("Diploma", education("B.Tech"))
		assert.True(t, result.Eligible)
	})

	t.Run("tie is eligible", func(t *testing.T) {
		result := matcher.CheckEligibility("Bachelors", education("Bachelor of Arts"))
		assert.True(t, result.Eligible)
	})

	t.Run("lower qualification rejected with best named", func(t *testing.T) {
		result := matcher.CheckEligibility("Masters", education("High School", "B.Sc Chemistry"))
		assert.False(t, result.Eligible)
		assert.Contains(t, result.Message, "Masters")
		assert.Contains(t, result.Message, "B.Sc Chemistry")
	})

	t.Run("unrecognized records ignored when one qualifies", func(t *testing.T) {
		result := matcher.CheckEligibility("Bachelors", education("Mystery Degree", "MTech"))
		assert.True(t, result.Eligible)
	})
}

func TestCheckEligibilityCustomAliases(t *testing.T) {
	aliases := DefaultAliasTable()
	aliases[LevelBachelors] = append(aliases[LevelBachelors], "licenciatura")
	matcher := NewQualificationMatcher(aliases)

	result := matcher.CheckEligibility("Bachelors", education("Licenciatura en Informática"))
	assert.True(t, result.Eligible)
}
