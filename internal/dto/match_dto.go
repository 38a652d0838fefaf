package dto

import "github.com/talentbridge/profile-matcher/internal/matching"

// MatchEntryDTO is one ranked row of a match response. Key names are a
// stable contract with the dashboard and report consumers.
type MatchEntryDTO struct {
	CandidateID string               `json:"candidate_id"`
	EmpID       string               `json:"emp_id,omitempty"`
	Name        string               `json:"name,omitempty"`
	Vertical    string               `json:"vertical,omitempty"`
	JobTitle    string               `json:"job_title,omitempty"`
	Score       float64              `json:"score"`
	Label       string               `json:"label"`
	Explanation matching.Explanation `json:"explanation"`
	Latency     float64              `json:"latency"`
}

// MatchResponseDTO wraps a ranked batch result.
type MatchResponseDTO struct {
	Message    string          `json:"message,omitempty"`
	TopMatches []MatchEntryDTO `json:"top_matches"`
}

// OneToOneResponseDTO is the singleton result for a single-pair match.
type OneToOneResponseDTO struct {
	Score       float64              `json:"score"`
	Label       string               `json:"label"`
	Explanation matching.Explanation `json:"explanation"`
	Latency     float64              `json:"latency"`
}

// ProfileDTO is the search listing row.
type ProfileDTO struct {
	ID              string  `json:"id"`
	EmpID           string  `json:"emp_id"`
	Name            string  `json:"name"`
	Vertical        string  `json:"vertical"`
	Skills          string  `json:"skills"`
	ExperienceYears float64 `json:"experience_years"`
}

// AgentHealthDTO summarizes matcher activity for the health dashboard.
type AgentHealthDTO struct {
	TotalMatches  int64              `json:"total_matches"`
	JDToResume    int64              `json:"jd_to_resume"`
	ResumeToJD    int64              `json:"resume_to_jd"`
	OneToOne      int64              `json:"one_to_one"`
	LatencyStats  map[string]float64 `json:"latency_stats"`
	JDUploaded    int64              `json:"jd_uploaded"`
	Profiles      int64              `json:"profiles"`
	AvgMatchScore float64            `json:"avg_match_score"`
}
