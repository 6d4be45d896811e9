package entities

import "strings"

// ScenarioQuestion is a single interview question tagged with the competence
// it probes.
type ScenarioQuestion struct {
	Competence string `json:"competence" bson:"competence"`
	Question   string `json:"question" bson:"question"`
}

// Scenario is the ordered question list for a vacancy. It is immutable once a
// session has started.
type Scenario []ScenarioQuestion

// Competence labels that do not count toward interview progress.
const (
	CompetenceIntro = "intro"
	CompetenceFinal = "final"
)

// IsPrimaryCompetence reports whether a competence label counts toward the
// completion thresholds.
func IsPrimaryCompetence(competence string) bool {
	switch strings.ToLower(strings.TrimSpace(competence)) {
	case CompetenceIntro, CompetenceFinal:
		return false
	}
	return true
}

// PrimaryCount returns the number of primary questions in the scenario.
func (s Scenario) PrimaryCount() int {
	count := 0
	for _, q := range s {
		if IsPrimaryCompetence(q.Competence) {
			count++
		}
	}
	return count
}

// TotalQuestions returns the progress denominator for the scenario: the
// primary question count, never less than one.
func (s Scenario) TotalQuestions() int {
	if n := s.PrimaryCount(); n > 0 {
		return n
	}
	return 1
}

// IsPrimaryAt reports whether the 1-based scenario position refers to a
// primary question. The second return value is false when the position is out
// of range.
func (s Scenario) IsPrimaryAt(position int) (bool, bool) {
	if position < 1 || position > len(s) {
		return false, false
	}
	return IsPrimaryCompetence(s[position-1].Competence), true
}

// FirstQuestion returns the text of the opening question, or "" for an empty
// scenario.
func (s Scenario) FirstQuestion() string {
	if len(s) == 0 {
		return ""
	}
	return strings.TrimSpace(s[0].Question)
}

// NormalizeLanguage maps a raw language value to one of the supported
// interview languages ("ru" or "en"). Unknown values default to English.
func NormalizeLanguage(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasPrefix(value, "ru"):
		return "ru"
	case strings.HasPrefix(value, "en"):
		return "en"
	}
	return "en"
}

// DefaultScenario is the fallback used when a vacancy carries no scenario of
// its own.
func DefaultScenario(lang string) Scenario {
	if NormalizeLanguage(lang) == "ru" {
		return Scenario{
			{Competence: CompetenceIntro, Question: "Расскажите о себе и своем опыте"},
			{Competence: "motivation", Question: "Почему вас заинтересовала эта вакансия?"},
			{Competence: "cases", Question: "Опишите свой самый сложный проект"},
			{Competence: "communication", Question: "Какие у вас есть вопросы о компании?"},
			{Competence: CompetenceFinal, Question: "Когда вы готовы приступить к работе?"},
		}
	}
	return Scenario{
		{Competence: CompetenceIntro, Question: "Please tell me about yourself and your experience"},
		{Competence: "motivation", Question: "Why are you interested in this position?"},
		{Competence: "cases", Question: "Describe the most challenging project you have worked on"},
		{Competence: "communication", Question: "What questions do you have about the company?"},
		{Competence: CompetenceFinal, Question: "When would you be able to start?"},
	}
}
