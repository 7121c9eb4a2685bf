// Package report aggregates per-channel and per-stage telemetry for one run.
// The report is purely additive; nothing reads it back into control flow.
package report

import (
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	// ChannelLocal labels local filesystem discovery.
	ChannelLocal = "local"
	// ChannelFetch labels direct URL fetch discovery.
	ChannelFetch = "fetch"
	// ChannelCrawl labels URL crawl discovery.
	ChannelCrawl = "crawl"
	// ChannelGit labels Git shallow-clone discovery.
	ChannelGit = "git"
)

// ChannelStatistics counts files and bytes discovered through one channel.
type ChannelStatistics struct {
	Files int
	Bytes int64
}

// Report aggregates counts and stage timings for one top-level run.
type Report struct {
	Channels       map[string]ChannelStatistics
	StageDurations map[string]time.Duration
	PromptTokens   int
}

// New constructs an empty Report.
func New() *Report {
	return &Report{
		Channels:       make(map[string]ChannelStatistics),
		StageDurations: make(map[string]time.Duration),
	}
}

// RecordChannel accumulates the files discovered through a channel, summing
// their on-disk sizes.
func (runReport *Report) RecordChannel(channelName string, files []string) {
	statistics := runReport.Channels[channelName]
	statistics.Files += len(files)
	for _, filePath := range files {
		if fileInformation, statError := os.Stat(filePath); statError == nil {
			statistics.Bytes += fileInformation.Size()
		}
	}
	runReport.Channels[channelName] = statistics
}

// ObserveStage accumulates the elapsed time of one named stage.
func (runReport *Report) ObserveStage(stageName string, startedAt time.Time) {
	runReport.StageDurations[stageName] += time.Since(startedAt)
}

// AddPromptTokens accumulates measured generation prompt tokens.
func (runReport *Report) AddPromptTokens(tokenCount int) {
	runReport.PromptTokens += tokenCount
}

// LogSummary emits the aggregated report at debug level.
func (runReport *Report) LogSummary(logger *zap.Logger) {
	for channelName, statistics := range runReport.Channels {
		logger.Debug("discovery channel",
			zap.String("channel", channelName),
			zap.Int("files", statistics.Files),
			zap.Int64("bytes", statistics.Bytes))
	}
	for stageName, duration := range runReport.StageDurations {
		logger.Debug("stage timing",
			zap.String("stage", stageName),
			zap.Duration("elapsed", duration))
	}
	if runReport.PromptTokens > 0 {
		logger.Debug("prompt tokens", zap.Int("tokens", runReport.PromptTokens))
	}
}
