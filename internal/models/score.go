package models

// ScoreRank is the assessment score and ranking detail for one user,
// flattened from the backend's nested rank envelope.
type ScoreRank struct {
	UserID string

	HireabilityIndex     float64
	ExperienceIndexScore float64
	SkillIndexScore      float64
	AwardScore           float64
	CertificationScore   float64
	EducationScore       float64
	WorkScore            float64
	ProjectScore         float64

	BaselineScore        float64
	CaseStudiesCompleted int
	AvgCaseStudyTime     float64

	GlobalRank  int
	CountryRank int
	StateRank   int
	CityRank    int

	Country string
	State   string
	City    string
}
