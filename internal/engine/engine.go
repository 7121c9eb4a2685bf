// Package engine evaluates directive context trees: it resolves scopes,
// orchestrates discovery, concatenation, templating, generation, and output
// per context, and propagates named variables to descendants and back.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/temirov/weave/internal/backend"
	"github.com/temirov/weave/internal/classify"
	"github.com/temirov/weave/internal/clean"
	"github.com/temirov/weave/internal/directive"
	"github.com/temirov/weave/internal/discover"
	"github.com/temirov/weave/internal/envexp"
	"github.com/temirov/weave/internal/options"
	"github.com/temirov/weave/internal/pipeline"
	"github.com/temirov/weave/internal/readers"
	"github.com/temirov/weave/internal/report"
	"github.com/temirov/weave/internal/template"
	"github.com/temirov/weave/internal/tokencount"
	"github.com/temirov/weave/internal/types"
)

const (
	stageDiscovery  = "discovery"
	stageRender     = "render"
	stageTemplate   = "template"
	stageGeneration = "generation"

	temporaryOutputPattern = "weave-gen-*.txt"

	missingWorkingDirectoryFormat    = "working directory %s does not exist"
	missingWorkspaceDirectoryFormat  = "workspace directory %s does not exist"
	missingSystemPromptFormat        = "system prompt file %s: %w"
	writeOutputErrorFormat           = "writing output %s: %w"
	createTemporaryOutputErrorFormat = "creating temporary output in %s: %w"
	generationErrorPayloadFormat     = "[generation error] %v"
	currentDirectoryErrorFormat      = "unable to determine working directory: %w"
	expandTokensErrorFormat          = "expanding variables in context %q: %w"
	optionWarningMessage             = "option warning"
	clipboardWarningMessage          = "clipboard copy failed"
	generationWarningMessage         = "generation backend failed"
)

// Config assembles an Engine's collaborators. Zero values select the
// defaults: a live generation client, stdout echo, and the built-in reader
// and cleaning registries.
type Config struct {
	Logger         *zap.Logger
	Generator      backend.Generator
	Classifier     *classify.Classifier
	ReaderRegistry *readers.Registry
	CleanRegistry  *clean.Registry
	Stdout         *os.File
}

// Engine executes context trees. One Engine may run many trees; all
// run-scoped state lives in the per-run state object.
type Engine struct {
	logger         *zap.Logger
	generator      backend.Generator
	classifier     *classify.Classifier
	pipelineRunner *pipeline.Pipeline
	stdout         *os.File
}

// New constructs an Engine from the provided configuration.
func New(configuration Config) *Engine {
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	generator := configuration.Generator
	if generator == nil {
		generator = backend.NewClient(logger)
	}
	classifier := configuration.Classifier
	if classifier == nil {
		classifier = classify.NewClassifier()
	}
	readerRegistry := configuration.ReaderRegistry
	if readerRegistry == nil {
		readerRegistry = readers.NewRegistry()
	}
	cleanRegistry := configuration.CleanRegistry
	if cleanRegistry == nil {
		cleanRegistry = clean.NewRegistry()
	}
	stdout := configuration.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Engine{
		logger:         logger,
		generator:      generator,
		classifier:     classifier,
		pipelineRunner: pipeline.New(readerRegistry, cleanRegistry, logger),
		stdout:         stdout,
	}
}

// RunResult is the outcome of one top-level execution.
type RunResult struct {
	FinalText string
	Variables map[string]string
	Report    *report.Report
}

// Run executes the context tree rooted at rootNode. The defaults record acts
// as a synthetic parent of the root, so configuration-file values inherit
// with the same semantics as any parent context. Run-scoped caches, the
// seen-header set, the clone cache and the dump accumulator, are created
// here, so independent runs can never observe each other's state.
func (engine *Engine) Run(ctx context.Context, rootNode *directive.ContextNode, defaults *options.Record) (RunResult, error) {
	currentDirectory, directoryError := os.Getwd()
	if directoryError != nil {
		return RunResult{}, fmt.Errorf(currentDirectoryErrorFormat, directoryError)
	}

	state := &runState{
		discoverer:      discover.NewDiscoverer(engine.logger),
		seenHeaderPaths: make(map[string]struct{}),
		runReport:       report.New(),
	}
	rootScope := nodeScope{
		parentEffective:    defaults,
		workingDirectory:   currentDirectory,
		workspaceDirectory: "",
		environment:        map[string]string{},
		isRoot:             true,
	}

	rootResult, executionError := engine.executeNode(ctx, state, rootNode, rootScope)
	if executionError != nil {
		return RunResult{}, executionError
	}
	state.runReport.LogSummary(engine.logger)
	return RunResult{
		FinalText: rootResult.finalText,
		Variables: rootResult.exported,
		Report:    state.runReport,
	}, nil
}

// runState is the state shared across one top-level run.
type runState struct {
	discoverer      *discover.Discoverer
	seenHeaderPaths map[string]struct{}
	dumpAccumulator string
	runReport       *report.Report
	tokenCounters   map[string]tokencount.Counter
}

// nodeScope is the downward-flowing activation context of one node.
type nodeScope struct {
	parentEffective      *options.Record
	workingDirectory     string
	workspaceDirectory   string
	environment          map[string]string
	childTemplateDefault string
	isRoot               bool
}

// nodeResult is the upward-flowing outcome of one node.
type nodeResult struct {
	exported  map[string]string
	finalText string
	// childTemplateDefault hands the active child-template default back so
	// callers can see what propagated.
	childTemplateDefault string
}

// executeNode runs one activation of the execution state machine.
func (engine *Engine) executeNode(ctx context.Context, state *runState, node *directive.ContextNode, scope nodeScope) (nodeResult, error) {
	isRoot := scope.isRoot

	// Token resolution.
	expansion, expansionError := envexp.Expand(node.Tokens, scope.environment)
	if expansionError != nil {
		return nodeResult{}, fmt.Errorf(expandTokensErrorFormat, node.Name, expansionError)
	}
	ownRecord, optionWarnings := options.Resolve(expansion.Tokens)
	for _, warning := range optionWarnings {
		engine.logger.Warn(optionWarningMessage,
			zap.String("context", node.Name), zap.String("detail", warning))
	}
	ownRecord.Normalize()

	// Effective record.
	effectiveRecord := options.Merge(scope.parentEffective, ownRecord)

	// Scope resolution.
	workingDirectory, workspaceDirectory, scopeError := resolveScopeDirectories(ownRecord, scope, isRoot)
	if scopeError != nil {
		return nodeResult{}, scopeError
	}

	// Variable maps: localEnvironment backs expansion and templates;
	// exported is what flows to siblings, descendants, and the parent.
	localEnvironment := copyStringMap(scope.environment)
	exported := make(map[string]string)
	for _, binding := range expansion.Globals {
		localEnvironment[binding.Name] = binding.Value
		exported[binding.Name] = binding.Value
	}
	for _, binding := range expansion.Locals {
		localEnvironment[binding.Name] = binding.Value
	}

	// Discovery.
	discoveryStartedAt := time.Now()
	buckets := engine.classifier.Partition(effectiveRecord.AddTokens, effectiveRecord.ExcludeTokens, effectiveRecord.CrawlDepthValue())
	summary := state.discoverer.Discover(discover.Request{
		Buckets:            buckets,
		WorkingDirectory:   workingDirectory,
		WorkspaceDirectory: workspaceDirectory,
		CrawlDepth:         effectiveRecord.CrawlDepthValue(),
	})
	state.runReport.RecordChannel(report.ChannelLocal, summary.LocalFiles)
	state.runReport.RecordChannel(report.ChannelFetch, summary.FetchedFiles)
	state.runReport.RecordChannel(report.ChannelCrawl, summary.CrawledFiles)
	state.runReport.RecordChannel(report.ChannelGit, summary.GitFiles)
	state.runReport.ObserveStage(stageDiscovery, discoveryStartedAt)

	// Render raw text.
	renderStartedAt := time.Now()
	rawText := ""
	discoveredFiles := summary.Files()
	if len(discoveredFiles) > 0 {
		rawText = engine.pipelineRunner.Concatenate(discoveredFiles, pipeline.Settings{
			ShowHeaders:     effectiveRecord.ShowHeaders,
			RelativePaths:   effectiveRecord.RelativePaths,
			BaseDirectory:   workingDirectory,
			ListOnly:        effectiveRecord.ListOnly,
			SliceStart:      effectiveRecord.SliceStart,
			SliceCount:      effectiveRecord.SliceCount,
			KeepFirstLine:   effectiveRecord.KeepFirstLine,
			StripBlank:      effectiveRecord.StripBlank,
			CleanOptions:    cleanOptionsFrom(effectiveRecord),
			ReplaceSpecs:    effectiveRecord.ReplaceSpecs,
			PreserveSpecs:   effectiveRecord.PreserveSpecs,
			IncludeSuffixes: effectiveRecord.IncludeSuffixes,
			ExcludeSuffixes: effectiveRecord.ExcludeSuffixes,
			SeenHeaderPaths: state.seenHeaderPaths,
		})
	}
	state.runReport.ObserveStage(stageRender, renderStartedAt)

	// Raw-tier variable exposure.
	if node.Name != "" {
		bindVariable(localEnvironment, exported, types.RawTierPrefix+node.Name, node.Name, rawText)
	}
	state.dumpAccumulator += rawText

	// Recurse. Each child sees bindings exported by all earlier siblings.
	childEnvironment := copyStringMap(scope.environment)
	for name, value := range exported {
		childEnvironment[name] = value
	}
	childScope := nodeScope{
		parentEffective:      effectiveRecord,
		workingDirectory:     workingDirectory,
		workspaceDirectory:   workspaceDirectory,
		environment:          childEnvironment,
		childTemplateDefault: effectiveRecord.ChildTemplatePath,
	}
	for _, childNode := range node.Children {
		childScope.environment = childEnvironment
		childResult, childError := engine.executeNode(ctx, state, childNode, childScope)
		if childError != nil {
			return nodeResult{}, childError
		}
		for name, value := range childResult.exported {
			localEnvironment[name] = value
			exported[name] = value
			childEnvironment[name] = value
		}
	}

	// Template stage.
	templateStartedAt := time.Now()
	finalText := rawText
	templatePath := ownRecord.TemplatePath
	if templatePath == "" {
		templatePath = scope.childTemplateDefault
	}
	if templatePath != "" {
		resolvedTemplatePath := resolvePath(workingDirectory, templatePath)
		renderedText, renderError := template.Render(resolvedTemplatePath, localEnvironment, state.dumpAccumulator)
		if renderError != nil {
			return nodeResult{}, renderError
		}
		finalText = renderedText
	}
	// Without a template the rendered text equals the raw text; the tier key
	// is bound either way so later references never observe a gap.
	if node.Name != "" {
		bindVariable(localEnvironment, exported, types.RenderedTierPrefix+node.Name, node.Name, finalText)
	}
	state.runReport.ObserveStage(stageTemplate, templateStartedAt)

	// Generation stage.
	outputPath := ownRecord.OutputPath
	if outputPath != "" {
		outputPath = resolvePath(workingDirectory, outputPath)
	}
	outputWritten := false
	if ownRecord.GenerateOnce {
		generationStartedAt := time.Now()
		generatedText, generationOutputPath, generationError := engine.generate(ctx, state, effectiveRecord, outputPath, workingDirectory, workspaceDirectory, finalText)
		if generationError != nil {
			return nodeResult{}, generationError
		}
		finalText = generatedText
		outputPath = generationOutputPath
		outputWritten = true
		if node.Name != "" {
			bindVariable(localEnvironment, exported, types.GenerationTierPrefix+node.Name, node.Name, finalText)
		}
		state.runReport.ObserveStage(stageGeneration, generationStartedAt)
	}

	// Output.
	if outputPath != "" && !outputWritten {
		if writeError := os.WriteFile(outputPath, []byte(finalText), 0o644); writeError != nil {
			return nodeResult{}, fmt.Errorf(writeOutputErrorFormat, outputPath, writeError)
		}
		outputWritten = true
	}
	implicitEcho := isRoot && ownRecord.OutputPath == ""
	if effectiveRecord.EchoStdout || implicitEcho {
		fmt.Fprint(engine.stdout, finalText)
	}
	if ownRecord.CopyClipboard {
		if clipboardError := clipboard.WriteAll(finalText); clipboardError != nil {
			engine.logger.Warn(clipboardWarningMessage, zap.Error(clipboardError))
		}
	}

	return nodeResult{
		exported:             exported,
		finalText:            finalText,
		childTemplateDefault: effectiveRecord.ChildTemplatePath,
	}, nil
}

// generate invokes the generation backend once and persists its output.
// Backend failures become a textual error payload at the output location
// rather than a process failure.
func (engine *Engine) generate(
	ctx context.Context,
	state *runState,
	effectiveRecord *options.Record,
	outputPath string,
	workingDirectory string,
	workspaceDirectory string,
	prompt string,
) (string, string, error) {
	if outputPath == "" {
		temporaryFile, temporaryError := os.CreateTemp(workspaceDirectory, temporaryOutputPattern)
		if temporaryError != nil {
			return "", "", fmt.Errorf(createTemporaryOutputErrorFormat, workspaceDirectory, temporaryError)
		}
		outputPath = temporaryFile.Name()
		temporaryFile.Close()
	}

	systemPrompt := ""
	if effectiveRecord.SystemPromptPath != "" {
		systemPromptPath := resolvePath(workingDirectory, effectiveRecord.SystemPromptPath)
		systemPromptBytes, readError := os.ReadFile(systemPromptPath)
		if readError != nil {
			return "", "", fmt.Errorf(missingSystemPromptFormat, systemPromptPath, readError)
		}
		systemPrompt = string(systemPromptBytes)
	}

	state.runReport.AddPromptTokens(engine.countPromptTokens(state, effectiveRecord.Model, prompt))

	maxTokens := 0
	if effectiveRecord.MaxTokens != nil {
		maxTokens = *effectiveRecord.MaxTokens
	}
	generatedText, generationError := engine.generator.Generate(ctx, backend.Request{
		Model:        effectiveRecord.Model,
		MaxTokens:    maxTokens,
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
	})
	if generationError != nil {
		engine.logger.Warn(generationWarningMessage, zap.Error(generationError))
		generatedText = fmt.Sprintf(generationErrorPayloadFormat, generationError)
	}
	if writeError := os.WriteFile(outputPath, []byte(generatedText), 0o644); writeError != nil {
		return "", "", fmt.Errorf(writeOutputErrorFormat, outputPath, writeError)
	}
	return generatedText, outputPath, nil
}

// countPromptTokens measures a prompt with the model's counter, constructing
// counters lazily per model.
func (engine *Engine) countPromptTokens(state *runState, model string, prompt string) int {
	if state.tokenCounters == nil {
		state.tokenCounters = make(map[string]tokencount.Counter)
	}
	counter, present := state.tokenCounters[model]
	if !present {
		createdCounter, counterError := tokencount.NewCounter(model)
		if counterError != nil {
			engine.logger.Debug("token counter unavailable", zap.Error(counterError))
			state.tokenCounters[model] = nil
			return 0
		}
		counter = createdCounter
		state.tokenCounters[model] = counter
	}
	return tokencount.CountText(counter, prompt)
}

// resolveScopeDirectories computes the node's working and workspace
// directories; both must exist or the run aborts.
func resolveScopeDirectories(ownRecord *options.Record, scope nodeScope, isRoot bool) (string, string, error) {
	workingDirectory := scope.workingDirectory
	if ownRecord.WorkingDirectory != "" {
		workingDirectory = resolvePath(scope.workingDirectory, ownRecord.WorkingDirectory)
	}
	if !directoryExists(workingDirectory) {
		return "", "", fmt.Errorf(missingWorkingDirectoryFormat, workingDirectory)
	}

	workspaceDirectory := scope.workspaceDirectory
	if isRoot || workspaceDirectory == "" {
		workspaceDirectory = workingDirectory
	}
	if ownRecord.WorkspaceDirectory != "" {
		workspaceDirectory = resolvePath(workingDirectory, ownRecord.WorkspaceDirectory)
	}
	if !directoryExists(workspaceDirectory) {
		return "", "", fmt.Errorf(missingWorkspaceDirectoryFormat, workspaceDirectory)
	}
	return workingDirectory, workspaceDirectory, nil
}

func directoryExists(path string) bool {
	information, statError := os.Stat(path)
	return statError == nil && information.IsDir()
}

func resolvePath(baseDirectory string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(baseDirectory, path))
}

func cleanOptionsFrom(record *options.Record) clean.Options {
	return clean.Options{
		StripComments:    record.CleanComments,
		StripDocComments: record.StripDocComments,
		StripImports:     record.StripImports,
	}
}

// bindVariable stores a tier value under its tier key and refreshes the bare
// name alias to the most recently computed tier.
func bindVariable(localEnvironment map[string]string, exported map[string]string, tierKey string, bareName string, value string) {
	localEnvironment[tierKey] = value
	localEnvironment[bareName] = value
	exported[tierKey] = value
	exported[bareName] = value
}

func copyStringMap(source map[string]string) map[string]string {
	copied := make(map[string]string, len(source))
	for name, value := range source {
		copied[name] = value
	}
	return copied
}
