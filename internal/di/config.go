package di

import (
	"io"
	"time"

	"research-client/internal/application/port/output"
	"research-client/internal/domain/entity"
)

const (
	defaultAPIURL         = "http://127.0.0.1:8000"
	defaultReportMaxWait  = 10 * time.Minute
	defaultLogFile        = "log/research.log"
	defaultLogLevel       = "info"
	defaultShortTimeout   = 30 * time.Second
	defaultLongTimeout    = 10 * time.Minute
	defaultPollInterval   = 2 * time.Second
	defaultApprovalDelay  = 2 * time.Second
	defaultApprovalWindow = 30 * time.Second
)

type Config struct {
	APIURL       string        `validate:"required,url"`
	ShortTimeout time.Duration `validate:"gt=0"`
	LongTimeout  time.Duration `validate:"gt=0"`

	PollInterval           time.Duration `validate:"gt=0"`
	ApprovalInterval       time.Duration `validate:"gt=0"`
	ApprovalDeadline       time.Duration `validate:"gt=0"`
	ReportMaxWait          time.Duration `validate:"gte=0"`
	MaxConsecutiveFailures int           `validate:"gte=0"`

	ModelProvider entity.ModelProvider `validate:"omitempty,oneof=groq google ollama openrouter"`
	APIKey        string

	LogFile  string `validate:"required"`
	LogLevel string `validate:"required,oneof=debug info warn error"`
	// LogConsole mirrors log entries to stderr.
	LogConsole bool

	In      io.Reader
	Out     io.Writer
	NoColor bool
}

func ConfigFromEnv(env output.ConfigPort) Config {
	return Config{
		APIURL:       env.GetWithDefault("RESEARCH_API_URL", defaultAPIURL),
		ShortTimeout: env.GetDuration("RESEARCH_SHORT_TIMEOUT", defaultShortTimeout),
		LongTimeout:  env.GetDuration("RESEARCH_LONG_TIMEOUT", defaultLongTimeout),

		PollInterval:           env.GetDuration("RESEARCH_POLL_INTERVAL", defaultPollInterval),
		ApprovalInterval:       env.GetDuration("RESEARCH_APPROVAL_INTERVAL", defaultApprovalDelay),
		ApprovalDeadline:       env.GetDuration("RESEARCH_APPROVAL_DEADLINE", defaultApprovalWindow),
		ReportMaxWait:          env.GetDuration("RESEARCH_REPORT_MAX_WAIT", defaultReportMaxWait),
		MaxConsecutiveFailures: env.GetInt("RESEARCH_MAX_FAILURES", 0),

		ModelProvider: entity.ModelProvider(env.Get("RESEARCH_MODEL_PROVIDER")),
		APIKey:        env.Get("RESEARCH_API_KEY"),

		LogFile:  env.GetWithDefault("LOG_FILE", defaultLogFile),
		LogLevel: env.GetWithDefault("LOG_LEVEL", defaultLogLevel),
	}
}

// NewRequest builds a research request carrying the configured provider.
func (c Config) NewRequest(query string) entity.ResearchRequest {
	req := entity.NewResearchRequest(query)
	req.ModelProvider = c.ModelProvider
	req.APIKey = c.APIKey
	return req
}
