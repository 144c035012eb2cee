package di

import (
	"fmt"

	"research-client/internal/application/port/input"
	"research-client/internal/application/port/output"
	"research-client/internal/infrastructure/logger"
	"research-client/internal/infrastructure/report"
	"research-client/internal/infrastructure/researchapi"
	"research-client/internal/infrastructure/userinteraction"
	"research-client/internal/infrastructure/validation"
	"research-client/internal/usecase/poller"
	"research-client/internal/usecase/research"
)

type Container struct {
	Logger  output.LoggerPort
	Service output.ResearchServicePort
	UI      output.UserInteractionPort
	Runner  input.ResearchRunner
}

func NewContainer(cfg Config) (*Container, error) {
	validator := validation.New()
	if err := validator.Struct(cfg); err != nil {
		return nil, err
	}

	logCfg := logger.DefaultConfig()
	logCfg.FilePath = cfg.LogFile
	logCfg.Level = cfg.LogLevel
	logCfg.Console = cfg.LogConsole
	log, err := logger.NewLoggerAdapter(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create report renderer: %w", err)
	}

	clientCfg := researchapi.DefaultConfig(cfg.APIURL)
	clientCfg.ShortTimeout = cfg.ShortTimeout
	clientCfg.LongTimeout = cfg.LongTimeout
	clientCfg.Logger = log
	client := researchapi.NewClient(clientCfg)

	taskPoller := poller.New(client, log, poller.Config{
		PollInterval:           cfg.PollInterval,
		ApprovalInterval:       cfg.ApprovalInterval,
		ApprovalDeadline:       cfg.ApprovalDeadline,
		ReportMaxWait:          cfg.ReportMaxWait,
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
	})

	console := userinteraction.NewConsoleUserInteraction(userinteraction.Config{
		In:       cfg.In,
		Out:      cfg.Out,
		NoColor:  cfg.NoColor,
		Renderer: renderer,
	})

	uc := research.NewUseCase(client, taskPoller, console, validator, log)

	return &Container{
		Logger:  log,
		Service: client,
		UI:      console,
		Runner:  uc,
	}, nil
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
