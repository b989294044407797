package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/betterhyq/LexPlain/pkg/domain"
	domainAnalysis "github.com/betterhyq/LexPlain/pkg/domain/analysis"
	"github.com/betterhyq/LexPlain/pkg/infra/providers"
	"github.com/betterhyq/LexPlain/pkg/infra/providers/factory"
	"github.com/sirupsen/logrus"
)

const (
	MinTextLength           = 20
	DefaultMaxInputChars    = 12000
	DefaultAnalyzeMaxTokens = 2000
	DefaultAskMaxTokens     = 400
	DefaultTemperature      = 0.2
)

type Analyzer interface {
	Analyze(ctx context.Context, text, locale string) (*domainAnalysis.Result, error)
	Ask(ctx context.Context, q domainAnalysis.Question) (string, error)
}

type Options struct {
	Provider         string
	APIKey           string
	BaseURL          string
	Model            string
	MaxInputChars    int
	AnalyzeMaxTokens int
	AskMaxTokens     int
	Temperature      float64
	Timeout          time.Duration
}

type analyzer struct {
	logger  *logrus.Logger
	locator factory.ProviderLocator
	opts    Options
}

func NewAnalyzer(logger *logrus.Logger, locator factory.ProviderLocator, opts Options) Analyzer {
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = DefaultMaxInputChars
	}
	if opts.AnalyzeMaxTokens <= 0 {
		opts.AnalyzeMaxTokens = DefaultAnalyzeMaxTokens
	}
	if opts.AskMaxTokens <= 0 {
		opts.AskMaxTokens = DefaultAskMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	return &analyzer{
		logger:  logger,
		locator: locator,
		opts:    opts,
	}
}

func (a *analyzer) Analyze(ctx context.Context, text, locale string) (*domainAnalysis.Result, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return nil, domain.ErrTextTooShort
	}

	content, err := a.complete(ctx, &providers.Config{
		MaxTokens:    a.opts.AnalyzeMaxTokens,
		SystemPrompt: analyzeSystemPrompt,
		Instructions: analyzeInstructions(locale),
	}, analyzeUserPrompt(truncateRunes(text, a.opts.MaxInputChars)))
	if err != nil {
		return nil, err
	}

	result, err := parseResult(content)
	if err != nil {
		a.logger.WithError(err).Warn("model returned an unusable analysis")
		return nil, err
	}
	return result, nil
}

func (a *analyzer) Ask(ctx context.Context, q domainAnalysis.Question) (string, error) {
	if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Summary) == "" {
		return "", domain.ErrMissingQuestion
	}

	answer, err := a.complete(ctx, &providers.Config{
		MaxTokens:    a.opts.AskMaxTokens,
		SystemPrompt: askSystemPrompt(q),
	}, askUserPrompt(q))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (a *analyzer) complete(ctx context.Context, cfg *providers.Config, prompt string) (string, error) {
	if a.opts.APIKey == "" {
		return "", domain.ErrProviderNotConfigured
	}

	client, err := a.locator.Get(a.opts.Provider)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderNotConfigured, err)
	}

	cfg.Credentials = providers.Credentials{
		ApiKey:  a.opts.APIKey,
		BaseURL: a.opts.BaseURL,
	}
	cfg.Model = a.opts.Model
	cfg.Temperature = a.opts.Temperature

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	resp, err := client.Ask(ctx, cfg, prompt)
	if err != nil {
		a.logger.WithError(err).WithField("provider", a.opts.Provider).Error("provider request failed")
		return "", fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	if resp == nil || strings.TrimSpace(resp.Response) == "" {
		return "", domain.ErrEmptyModelResponse
	}
	a.logger.WithFields(logrus.Fields{
		"provider":          a.opts.Provider,
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	}).Debug("provider call completed")
	return resp.Response, nil
}
