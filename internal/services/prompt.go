package services

import (
	"fmt"

	"jobportal/internal/models"
)

// Fixed ATS criteria weights, in percent.
const (
	WeightSkillsMatch   = 40
	WeightExperience    = 25
	WeightEducation     = 15
	WeightRoleRelevance = 10
	WeightOtherDetails  = 10
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildScoringPrompt creates the ATS evaluation prompt for one job and
// one candidate text. The model is instructed to answer with strict
// JSON; the parser still treats the reply as hostile.
func (pb *PromptBuilder) BuildScoringPrompt(job *models.Job, resumeText string) string {
	return fmt.Sprintf(`You are an ATS AI system. Evaluate the candidate's resume against the job requirements.
Score strictly from 0-100.

Use the following weighted criteria:
- Skills match (%d%%)
- Experience vs. minimum required (%d%%)
- Education match (%d%%)
- Job category & role relevance (%d%%)
- Other details like projects, certifications, achievements (%d%%)

### Job Details:
Title: %s
Description: %s
Location: %s
Type: %s
Salary Range: %s
Education Requirement: %s
Minimum Experience: %d years
Skills Required: %s
Tags: %s
Category: %s

### Candidate Resume:
%s

Return JSON only in the following format:
{
  "score": <number 0-100>,
  "feedback": "<short bullet points about strengths/weaknesses>"
}`,
		WeightSkillsMatch,
		WeightExperience,
		WeightEducation,
		WeightRoleRelevance,
		WeightOtherDetails,
		job.Title,
		job.Description,
		orNotSpecified(job.Location),
		string(job.Type),
		orNotSpecified(job.SalaryRange),
		orNotSpecified(job.Education),
		job.ExperienceMin,
		orNotSpecified(job.Skills.Join()),
		orNotSpecified(job.Tags.Join()),
		orNotSpecified(job.Category),
		resumeText,
	)
}

func orNotSpecified(value string) string {
	if value == "" {
		return "Not specified"
	}
	return value
}
