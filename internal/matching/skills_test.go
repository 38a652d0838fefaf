package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSkills(t *testing.T) {
	text := `Looking for a Python and React developer.
Must know Docker, Kubernetes and AWS.
Experience with Machine Learning and Power BI is a plus.
Strong team player with solution-oriented development ability.`

	skills := ExtractSkills(text)

	assert.Contains(t, skills, "python")
	assert.Contains(t, skills, "react")
	assert.Contains(t, skills, "docker")
	assert.Contains(t, skills, "kubernetes")
	assert.Contains(t, skills, "aws")
	assert.Contains(t, skills, "machine learning")
	assert.Contains(t, skills, "power bi")

	// noise words never surface as skills
	assert.NotContains(t, skills, "team")
	assert.NotContains(t, skills, "solution")
	assert.NotContains(t, skills, "development")
	assert.NotContains(t, skills, "ability")

	assert.IsIncreasing(t, skills)
}

func TestExtractSkillsIdempotent(t *testing.T) {
	text := "Java and Spring Boot engineer with SQL, Docker and Git"
	first := ExtractSkills(text)
	second := ExtractSkills(text)
	assert.Equal(t, first, second)
}

func TestExtractSkillsEmptyInput(t *testing.T) {
	assert.Empty(t, ExtractSkills(""))
	assert.Empty(t, ExtractSkills("   \n  "))
}

func TestCategorizeSkills(t *testing.T) {
	categories := CategorizeSkills([]string{"python", "react", "aws", "mysql", "jira", "cobol"})

	assert.Equal(t, []string{"python"}, categories["Languages"])
	assert.Equal(t, []string{"react"}, categories["Web & Frameworks"])
	assert.Equal(t, []string{"aws"}, categories["Cloud & DevOps"])
	assert.Equal(t, []string{"mysql"}, categories["Databases"])
	assert.Equal(t, []string{"jira"}, categories["Tools"])
	assert.Equal(t, []string{"cobol"}, categories[CategoryOthers])
}

func TestCategorizeSkillsFirstMatchWins(t *testing.T) {
	// every skill lands in exactly one bucket
	skills := ExtractSkills("python react aws mysql git pandas experience in banking")
	categories := CategorizeSkills(skills)

	total := 0
	for _, bucket := range categories {
		total += len(bucket)
	}
	require.Equal(t, len(skills), total)
}
