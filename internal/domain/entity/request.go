package entity

type ModelProvider string

const (
	ModelProviderGroq       ModelProvider = "groq"
	ModelProviderGoogle     ModelProvider = "google"
	ModelProviderOllama     ModelProvider = "ollama"
	ModelProviderOpenRouter ModelProvider = "openrouter"
)

// ResearchRequest is the body of POST /research. Provider and key are
// optional; the service falls back to its own configuration without them.
type ResearchRequest struct {
	Query         string        `json:"query" validate:"required,notblank"`
	ModelProvider ModelProvider `json:"model_provider,omitempty" validate:"omitempty,oneof=groq google ollama openrouter"`
	APIKey        string        `json:"api_key,omitempty"`
}

func NewResearchRequest(query string) ResearchRequest {
	return ResearchRequest{Query: query}
}

type ResumeRequest struct {
	ResearchQuestions []string `json:"research_questions" validate:"required,min=1,dive,notblank"`
}
