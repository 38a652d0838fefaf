package matching

import (
	"regexp"
	"sort"
	"strings"
)

// skillWhitelist holds the known skill vocabulary, including multi-word
// phrases that plain tokenization would split apart.
var skillWhitelist = []string{
	"python", "java", "javascript", "typescript", "golang", "ruby", "scala",
	"c++", "c#", "php", "kotlin", "swift",
	"html", "css", "react", "angular", "vue", "node.js", "node", "next.js",
	"spring", "spring boot", "django", "flask", "fastapi", ".net", "rails",
	"express", "graphql", "rest", "api", "microservices",
	"sql", "mysql", "postgresql", "mongodb", "oracle", "redis", "cassandra",
	"elasticsearch", "dynamodb", "sqlite",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "jenkins",
	"ansible", "ci/cd", "linux", "git", "github", "gitlab",
	"pandas", "numpy", "machine learning", "deep learning", "data analysis",
	"nlp", "tensorflow", "pytorch", "spark", "hadoop", "kafka",
	"excel", "power bi", "tableau", "jira", "selenium", "junit",
}

// noiseWords are technology-shaped tokens that carry no skill signal.
var noiseWords = map[string]bool{
	"team": true, "project": true, "solution": true, "experience": true,
	"technologies": true, "development": true, "ability": true,
	"years": true, "work": true, "strong": true, "knowledge": true,
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "in": true,
	"is": true, "it": true, "its": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "to": true, "was": true, "were": true,
	"will": true, "with": true, "you": true, "we": true, "our": true,
}

var tokenPattern = regexp.MustCompile(`[a-z0-9+#.\-]{2,}`)

// skillCategories is priority ordered: a skill lands in the first category
// that lists it, everything else falls into CategoryOthers.
var skillCategories = []struct {
	Name   string
	Skills map[string]bool
}{
	{"Languages", set("python", "java", "javascript", "typescript", "golang",
		"ruby", "scala", "c++", "c#", "php", "kotlin", "swift")},
	{"Web & Frameworks", set("html", "css", "react", "angular", "vue",
		"node.js", "node", "next.js", "spring", "spring boot", "django",
		"flask", "fastapi", ".net", "rails", "express", "graphql", "rest",
		"api", "microservices")},
	{"Data & ML", set("pandas", "numpy", "machine learning", "deep learning",
		"data analysis", "nlp", "tensorflow", "pytorch", "spark", "hadoop",
		"kafka")},
	{"Databases", set("sql", "mysql", "postgresql", "mongodb", "oracle",
		"redis", "cassandra", "elasticsearch", "dynamodb", "sqlite")},
	{"Cloud & DevOps", set("aws", "azure", "gcp", "docker", "kubernetes",
		"terraform", "jenkins", "ansible", "ci/cd", "linux")},
	{"Tools", set("git", "github", "gitlab", "excel", "power bi", "tableau",
		"jira", "selenium", "junit")},
}

// CategoryOthers is the fallback bucket for skills no category claims.
const CategoryOthers = "Others"

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// ExtractSkills returns the known skills found in text as a sorted,
// duplicate-free slice of lowercase terms. Extraction is best effort: it
// never fails, at worst it returns an empty slice.
func ExtractSkills(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	lower := strings.ToLower(text)

	found := make(map[string]bool)
	for _, skill := range skillWhitelist {
		if strings.Contains(lower, skill) {
			found[skill] = true
		}
	}

	for _, token := range tokenPattern.FindAllString(lower, -1) {
		token = strings.Trim(token, ".-")
		if len(token) < 2 || stopWords[token] || noiseWords[token] {
			continue
		}
		if inWhitelist(token) {
			found[token] = true
		}
	}

	skills := make([]string, 0, len(found))
	for skill := range found {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

func inWhitelist(token string) bool {
	for _, skill := range skillWhitelist {
		if skill == token {
			return true
		}
	}
	return false
}

// CategorizeSkills groups skills into named buckets, first matching category
// wins. Unclaimed skills go to the Others bucket. Buckets keep the input
// ordering, which is alphabetical when the input comes from ExtractSkills.
func CategorizeSkills(skills []string) map[string][]string {
	categories := make(map[string][]string)
	for _, skill := range skills {
		placed := false
		for _, cat := range skillCategories {
			if cat.Skills[skill] {
				categories[cat.Name] = append(categories[cat.Name], skill)
				placed = true
				break
			}
		}
		if !placed {
			categories[CategoryOthers] = append(categories[CategoryOthers], skill)
		}
	}
	return categories
}
