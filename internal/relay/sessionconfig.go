package relay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/voxhire/voxhire/server/domain/entities"
)

// ErrEmptyScenario is returned when a session config is requested for an
// empty scenario; callers substitute entities.DefaultScenario instead.
var ErrEmptyScenario = errors.New("scenario is empty")

// SessionConfig is the upstream session.update payload.
type SessionConfig struct {
	Type                    string              `json:"type"`
	Model                   string              `json:"model"`
	Voice                   string              `json:"voice"`
	Instructions            string              `json:"instructions"`
	OutputModalities        []string            `json:"output_modalities"`
	InputAudioTranscription TranscriptionConfig `json:"input_audio_transcription"`
	Audio                   AudioConfig         `json:"audio"`
	Tools                   []ToolDefinition    `json:"tools"`
}

// TranscriptionConfig locks input transcription to the interview language.
type TranscriptionConfig struct {
	Model    string `json:"model"`
	Language string `json:"language"`
}

// AudioConfig carries the input/output audio formats and turn detection.
type AudioConfig struct {
	Input  AudioInputConfig  `json:"input"`
	Output AudioOutputConfig `json:"output"`
}

type AudioInputConfig struct {
	Format        string              `json:"format"`
	SampleRate    int                 `json:"sample_rate"`
	TurnDetection TurnDetectionConfig `json:"turn_detection"`
}

type AudioOutputConfig struct {
	Format     string  `json:"format"`
	SampleRate int     `json:"sample_rate"`
	Voice      string  `json:"voice"`
	Speed      float64 `json:"speed"`
}

// TurnDetectionConfig tunes the upstream voice-activity detector.
type TurnDetectionConfig struct {
	Type              string  `json:"type"`
	CreateResponse    bool    `json:"create_response"`
	Threshold         float64 `json:"threshold"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}

// ToolDefinition is one entry of the tool schema exposed to the model.
type ToolDefinition struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

// ToolParameters is a JSON-schema object definition.
type ToolParameters struct {
	Type       string                  `json:"type"`
	Properties map[string]ToolProperty `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// ToolProperty is a JSON-schema property definition.
type ToolProperty struct {
	Type        string        `json:"type"`
	Description string        `json:"description,omitempty"`
	Minimum     *int          `json:"minimum,omitempty"`
	Maximum     *int          `json:"maximum,omitempty"`
	Enum        []string      `json:"enum,omitempty"`
	Items       *ToolProperty `json:"items,omitempty"`
}

// ConfigInputs are the privacy-filtered facts interpolated into the
// instruction template. Raw resume or job-description text never enters the
// config; only compact derived facts do.
type ConfigInputs struct {
	Model           string
	Language        string
	Scenario        entities.Scenario
	RoleTitle       string
	ExperienceYears int
	Keywords        []string
	Skills          []string
}

// BuildConfigInputs derives the instruction facts from candidate and vacancy
// records. Either record may be nil.
func BuildConfigInputs(model string, candidate *entities.Candidate, vacancy *entities.Vacancy, scenario entities.Scenario, lang string) ConfigInputs {
	inputs := ConfigInputs{
		Model:    model,
		Language: entities.NormalizeLanguage(lang),
		Scenario: scenario,
	}
	if vacancy != nil {
		inputs.RoleTitle = strings.TrimSpace(vacancy.Title)
		inputs.Keywords = topN(vacancy.MustHave, 5)
	}
	if candidate != nil {
		inputs.ExperienceYears = candidate.ExperienceYears
		inputs.Skills = topN(candidate.Skills, 5)
	}
	return inputs
}

func topN(values []string, n int) []string {
	out := make([]string, 0, n)
	for _, v := range values {
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}

// BuildSessionConfig assembles the full upstream session configuration.
func BuildSessionConfig(inputs ConfigInputs) (*SessionConfig, error) {
	if len(inputs.Scenario) == 0 {
		return nil, ErrEmptyScenario
	}

	lang := entities.NormalizeLanguage(inputs.Language)
	return &SessionConfig{
		Type:             "realtime",
		Model:            inputs.Model,
		Voice:            VoiceForLanguage(lang),
		Instructions:     buildInstructions(inputs, lang),
		OutputModalities: []string{"audio"},
		InputAudioTranscription: TranscriptionConfig{
			Model:    "gpt-4o-transcribe",
			Language: lang,
		},
		Audio: AudioConfig{
			Input: AudioInputConfig{
				Format:     "pcm16",
				SampleRate: 24000,
				TurnDetection: TurnDetectionConfig{
					Type:              "semantic_vad",
					CreateResponse:    true,
					Threshold:         0.5,
					SilenceDurationMs: 700,
				},
			},
			Output: AudioOutputConfig{
				Format:     "pcm16",
				SampleRate: 24000,
				Voice:      VoiceForLanguage(lang),
				Speed:      1.0,
			},
		},
		Tools: ToolSchema(),
	}, nil
}

// VoiceForLanguage selects the upstream voice by interview language.
func VoiceForLanguage(lang string) string {
	if entities.NormalizeLanguage(lang) == "en" {
		return "alloy"
	}
	return "verse"
}

// LanguageSessionUpdate is the partial session.update re-issued when the
// client locks the interview language mid-session.
type LanguageSessionUpdate struct {
	Type    string                `json:"type"`
	Session LanguageSessionConfig `json:"session"`
}

type LanguageSessionConfig struct {
	Voice                   string              `json:"voice"`
	InputAudioTranscription TranscriptionConfig `json:"input_audio_transcription"`
}

// NewLanguageSessionUpdate builds the reconfiguration for a locked language.
func NewLanguageSessionUpdate(lang string) LanguageSessionUpdate {
	lang = entities.NormalizeLanguage(lang)
	return LanguageSessionUpdate{
		Type: FrameSessionUpdate,
		Session: LanguageSessionConfig{
			Voice: VoiceForLanguage(lang),
			InputAudioTranscription: TranscriptionConfig{
				Model:    "gpt-4o-transcribe",
				Language: lang,
			},
		},
	}
}

// ToolSchema is the tool set exposed to the upstream AI.
func ToolSchema() []ToolDefinition {
	score := ToolProperty{Type: "integer", Minimum: intPtr(0), Maximum: intPtr(100)}
	return []ToolDefinition{
		{
			Type:        "function",
			Name:        ToolQuestionAsked,
			Description: "Mark progress for a scenario question exactly once per question.",
			Parameters: ToolParameters{
				Type: "object",
				Properties: map[string]ToolProperty{
					"index":      {Type: "integer", Description: "1-based position of the question in the scenario"},
					"is_primary": {Type: "boolean", Description: "Whether the question is a primary competence question"},
				},
				Required: []string{"index"},
			},
		},
		{
			Type:        "function",
			Name:        ToolEvaluateAnswer,
			Description: "Score the candidate's last answer on a 0-100 scale.",
			Parameters: ToolParameters{
				Type: "object",
				Properties: map[string]ToolProperty{
					"score":     withDescription(score, "Score from 0 to 100"),
					"reasoning": {Type: "string", Description: "Justification for the score"},
				},
				Required: []string{"score", "reasoning"},
			},
		},
		{
			Type:        "function",
			Name:        ToolEndInterview,
			Description: "Finish the interview; the server verifies thresholds before honoring the request.",
			Parameters: ToolParameters{
				Type: "object",
				Properties: map[string]ToolProperty{
					"overall_score": withDescription(score, "Overall candidate score from 0 to 100"),
					"strengths":     {Type: "array", Description: "Candidate strengths", Items: &ToolProperty{Type: "string"}},
					"weaknesses":    {Type: "array", Description: "Candidate weaknesses", Items: &ToolProperty{Type: "string"}},
					"recommendation": {
						Type:        "string",
						Enum:        []string{"hire", "maybe", "reject"},
						Description: "Hiring recommendation",
					},
				},
				Required: []string{"overall_score", "recommendation"},
			},
		},
	}
}

func intPtr(v int) *int { return &v }

func withDescription(p ToolProperty, description string) ToolProperty {
	p.Description = description
	return p
}

func buildInstructions(inputs ConfigInputs, lang string) string {
	var b strings.Builder

	if lang == "ru" {
		b.WriteString("# Роль и цель\n")
		b.WriteString("Ты профессиональный HR-интервьюер. Проводи корректное, дружелюбное и структурированное интервью.\n\n")
		b.WriteString("## Язык\n")
		b.WriteString("- ГОВОРИ СТРОГО ТОЛЬКО НА РУССКОМ ЯЗЫКЕ.\n")
		b.WriteString("- НЕ ПЕРЕХОДИ на другие языки ни при каких условиях.\n\n")
	} else {
		b.WriteString("# Role and goal\n")
		b.WriteString("You are a professional HR interviewer. Run a correct, friendly and structured interview.\n\n")
		b.WriteString("## Language\n")
		b.WriteString("- Speak STRICTLY in English only.\n")
		b.WriteString("- Do NOT switch to other languages under any circumstances.\n\n")
	}

	b.WriteString(privateContext(inputs, lang))

	if lang == "ru" {
		b.WriteString("\n## Правила\n")
		b.WriteString("- НЕ зачитывай и НЕ пересказывай контекст дословно; используй его только для подготовки вопросов.\n")
		b.WriteString("- Один короткий вопрос за раз; жди ответ кандидата.\n")
		b.WriteString("- После каждого заданного вопроса вызывай инструмент question_asked с его номером.\n")
		b.WriteString("- После каждого содержательного ответа вызывай evaluate_answer. Оценки вслух не озвучивай.\n")
		b.WriteString("- Не завершай интервью сам; сервер подтверждает завершение через end_interview.\n\n")
		b.WriteString("## Сценарий интервью\n")
	} else {
		b.WriteString("\n## Rules\n")
		b.WriteString("- Do NOT read the context back verbatim; use it only to prepare questions.\n")
		b.WriteString("- One short question at a time; wait for the candidate's answer.\n")
		b.WriteString("- Call the question_asked tool with the question number after asking each question.\n")
		b.WriteString("- Call evaluate_answer after each substantive answer. Never voice the scores.\n")
		b.WriteString("- Do not end the interview on your own; the server confirms completion via end_interview.\n\n")
		b.WriteString("## Interview scenario\n")
	}

	for i, q := range inputs.Scenario {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, q.Competence, strings.TrimSpace(q.Question))
	}

	if lang == "ru" {
		fmt.Fprintf(&b, "\nВсего основных вопросов: %d.\n", inputs.Scenario.TotalQuestions())
		b.WriteString("\n## Приветствие\nНачни с короткого приветствия и сразу задай первый вопрос. Проводи именно интервью по сценарию, не свободный диалог.\n")
	} else {
		fmt.Fprintf(&b, "\nTotal primary questions: %d.\n", inputs.Scenario.TotalQuestions())
		b.WriteString("\n## Greeting\nStart with a short greeting and immediately ask the first question. Run the scripted interview, not a free-form chat.\n")
	}

	return b.String()
}

// privateContext renders the compact derived facts. Raw CV/JD text is never
// embedded here.
func privateContext(inputs ConfigInputs, lang string) string {
	var b strings.Builder
	if lang == "ru" {
		b.WriteString("## Контекст (только производные факты)\n")
		if inputs.RoleTitle != "" {
			fmt.Fprintf(&b, "- Позиция: %s\n", inputs.RoleTitle)
		}
		if inputs.ExperienceYears > 0 {
			fmt.Fprintf(&b, "- Опыт кандидата: %d лет\n", inputs.ExperienceYears)
		}
		if len(inputs.Keywords) > 0 {
			fmt.Fprintf(&b, "- Ключевые требования: %s\n", strings.Join(inputs.Keywords, ", "))
		}
		if len(inputs.Skills) > 0 {
			fmt.Fprintf(&b, "- Навыки кандидата: %s\n", strings.Join(inputs.Skills, ", "))
		}
		if labels := competenceLabels(inputs.Scenario); len(labels) > 0 {
			fmt.Fprintf(&b, "- Компетенции: %s\n", strings.Join(labels, ", "))
		}
		return b.String()
	}

	b.WriteString("## Context (derived facts only)\n")
	if inputs.RoleTitle != "" {
		fmt.Fprintf(&b, "- Role: %s\n", inputs.RoleTitle)
	}
	if inputs.ExperienceYears > 0 {
		fmt.Fprintf(&b, "- Candidate experience: %d years\n", inputs.ExperienceYears)
	}
	if len(inputs.Keywords) > 0 {
		fmt.Fprintf(&b, "- Key requirements: %s\n", strings.Join(inputs.Keywords, ", "))
	}
	if len(inputs.Skills) > 0 {
		fmt.Fprintf(&b, "- Candidate skills: %s\n", strings.Join(inputs.Skills, ", "))
	}
	if labels := competenceLabels(inputs.Scenario); len(labels) > 0 {
		fmt.Fprintf(&b, "- Competences: %s\n", strings.Join(labels, ", "))
	}
	return b.String()
}

func competenceLabels(scenario entities.Scenario) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, q := range scenario {
		label := strings.ToLower(strings.TrimSpace(q.Competence))
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

// SystemLanguageNotice is the system message injected right after session
// setup to pin the conversation language.
func SystemLanguageNotice(lang string) string {
	if entities.NormalizeLanguage(lang) == "ru" {
		return "ВАЖНО: Весь разговор должен вестись ТОЛЬКО на русском языке. НЕ используй другие языки."
	}
	return "IMPORTANT: You MUST speak ONLY in English. Do not switch languages."
}

// GreetingInstructions tells the model to greet and ask the opening question.
func GreetingInstructions(lang string, scenario entities.Scenario) string {
	question := scenario.FirstQuestion()
	if entities.NormalizeLanguage(lang) == "ru" {
		if question == "" {
			question = "Расскажите, пожалуйста, о себе."
		}
		return fmt.Sprintf("Поздоровайся кратко по-русски и сразу задай первый вопрос: %s", question)
	}
	if question == "" {
		question = "Please tell me about yourself."
	}
	return fmt.Sprintf("Greet briefly in English and immediately ask the first question: %s", question)
}

// AutoFinishInstructions compels an immediate end_interview call once the
// completion gates are satisfied.
func AutoFinishInstructions() string {
	return "Call the tool `end_interview` NOW with your final overall_score, strengths, weaknesses, " +
		"and recommendation (hire/maybe/reject). Then say a brief closing line. Do not ask new questions."
}
