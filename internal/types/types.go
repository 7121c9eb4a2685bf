// Package types defines cross-package constants and data structures used by the weave CLI.
package types

const (
	// RawTierPrefix keys the raw discovered content of a named context.
	RawTierPrefix = "_r_"
	// RenderedTierPrefix keys the rendered output of a named context.
	RenderedTierPrefix = "_t_"
	// GenerationTierPrefix keys the generation-backend output of a named context.
	GenerationTierPrefix = "_ia_"

	// DumpVariableName keys the whole-run dump accumulator inside template data.
	DumpVariableName = "dump"

	// DisableSentinel removes a flag and its value when it appears as the flag's value.
	DisableSentinel = "none"

	// HeaderDelimiter surrounds a file's displayed path in its banner line.
	HeaderDelimiter = "====="

	// GitCacheDirectoryName is the dot-prefixed shallow-clone cache inside a workspace.
	GitCacheDirectoryName = ".weave-git"
	// FetchCacheDirectoryName is the dot-prefixed URL-fetch cache inside a workspace.
	FetchCacheDirectoryName = ".weave-fetch"

	// InsecureTLSEnvironmentKey enables insecure TLS for fetch and crawl operations.
	InsecureTLSEnvironmentKey = "WEAVE_INSECURE_TLS"
	// DisableGenerationEnvironmentKey disables the generation backend entirely.
	DisableGenerationEnvironmentKey = "WEAVE_NO_GENERATE"
	// CredentialEnvironmentKey provides the generation backend's credential.
	CredentialEnvironmentKey = "ANTHROPIC_API_KEY"
	// MaxTokensEnvironmentKey overrides the default generation token budget.
	MaxTokensEnvironmentKey = "WEAVE_MAX_TOKENS"
	// ReasoningEffortEnvironmentKey overrides the generation reasoning effort.
	ReasoningEffortEnvironmentKey = "WEAVE_REASONING_EFFORT"

	// DisabledGenerationMarker is written in place of backend output when generation is disabled.
	DisabledGenerationMarker = "[generation disabled]"
)

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}
