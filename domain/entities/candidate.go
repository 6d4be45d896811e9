package entities

import "time"

// Candidate is the persisted candidate record the relay reads at connection
// accept and writes results back to.
type Candidate struct {
	ID              string            `json:"id" bson:"_id,omitempty"`
	Name            string            `json:"name" bson:"name"`
	Email           string            `json:"email,omitempty" bson:"email,omitempty"`
	Phone           string            `json:"phone,omitempty" bson:"phone,omitempty"`
	Language        string            `json:"language" bson:"language"`
	VacancyID       string            `json:"vacancy_id,omitempty" bson:"vacancy_id,omitempty"`
	Skills          []string          `json:"skills,omitempty" bson:"skills,omitempty"`
	ExperienceYears int               `json:"experience_years,omitempty" bson:"experience_years,omitempty"`
	Interview       *InterviewOutcome `json:"interview,omitempty" bson:"interview,omitempty"`
	CreatedAt       time.Time         `json:"created_at" bson:"created_at"`
}

// Vacancy is the persisted vacancy record; its scenario drives the interview.
type Vacancy struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	Title           string    `json:"title" bson:"title"`
	MustHave        []string  `json:"must_have,omitempty" bson:"must_have,omitempty"`
	ExperienceYears int       `json:"experience_years,omitempty" bson:"experience_years,omitempty"`
	Language        string    `json:"language" bson:"language"`
	Scenario        Scenario  `json:"scenario,omitempty" bson:"scenario,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// InterviewOutcome is the result payload persisted against the candidate once
// an interview completes.
type InterviewOutcome struct {
	Completed             bool          `json:"completed" bson:"completed"`
	Score                 int           `json:"score" bson:"score"`
	Passed                bool          `json:"passed" bson:"passed"`
	Decision              string        `json:"decision" bson:"decision"`
	Recommendation        string        `json:"recommendation" bson:"recommendation"`
	Strengths             []string      `json:"strengths,omitempty" bson:"strengths,omitempty"`
	Weaknesses            []string      `json:"weaknesses,omitempty" bson:"weaknesses,omitempty"`
	Scores                []AnswerScore `json:"scores,omitempty" bson:"scores,omitempty"`
	ConversationItemCount int           `json:"conversation_item_count" bson:"conversation_item_count"`
	Duration              time.Duration `json:"duration" bson:"duration"`
	Report                string        `json:"report,omitempty" bson:"report,omitempty"`
	CompletedAt           time.Time     `json:"completed_at" bson:"completed_at"`
}
