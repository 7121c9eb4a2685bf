// Package config loads weave.yaml configuration files and applies the merged
// defaults to the root context's options.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/weave/internal/options"
	"github.com/temirov/weave/internal/utils"
)

const (
	// ConfigFileName is the configuration file looked up in the working
	// directory and in the global configuration directory.
	ConfigFileName = "weave.yaml"
	// GlobalConfigDirectoryName is the per-user configuration directory
	// relative to the home directory.
	GlobalConfigDirectoryName = ".config/weave"

	statConfigurationErrorFormat      = "stat configuration %s: %w"
	configurationIsDirectoryFormat    = "configuration path %s is a directory"
	readConfigurationErrorFormat      = "read configuration from %s: %w"
	decodeConfigurationErrorFormat    = "decode configuration from %s: %w"
	determineWorkingDirectoryFormat   = "determine working directory: %w"
	resolveConfigurationPathErrFormat = "resolve configuration path %s: %w"
)

// LoadOptions controls how configuration files are discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds the defaults a weave.yaml may provide for
// the root context. Pointer fields distinguish "unset" from a zero value.
type ApplicationConfiguration struct {
	Model      string                  `mapstructure:"model"`
	MaxTokens  *int                    `mapstructure:"max_tokens"`
	CrawlDepth *int                    `mapstructure:"crawl_depth"`
	Headers    *bool                   `mapstructure:"headers"`
	StripBlank *bool                   `mapstructure:"strip_blank"`
	Exclude    []string                `mapstructure:"exclude"`
	Generation GenerationConfiguration `mapstructure:"generation"`
}

// GenerationConfiguration defines generation-backend defaults.
type GenerationConfiguration struct {
	SystemPrompt string `mapstructure:"system_prompt"`
}

// LoadApplicationConfiguration merges the global configuration file with the
// working directory's local one; local values win.
func LoadApplicationConfiguration(loadOptions LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := loadOptions.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, directoryError := os.Getwd()
		if directoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf(determineWorkingDirectoryFormat, directoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, filepath.FromSlash(GlobalConfigDirectoryName), ConfigFileName)
		globalConfiguration, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, loadOptions.ExplicitFilePath)
	if resolveError != nil {
		return ApplicationConfiguration{}, resolveError
	}
	if localPath != "" {
		localConfiguration, loadError := loadConfigurationFromPath(localPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(localConfiguration)
	}

	merged.Exclude = utils.DeduplicateStrings(merged.Exclude)
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory string, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolutePath, absoluteError := filepath.Abs(explicitPath)
			if absoluteError != nil {
				return "", fmt.Errorf(resolveConfigurationPathErrFormat, explicitPath, absoluteError)
			}
			return absolutePath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	information, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(statConfigurationErrorFormat, path, statError)
	}
	if information.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(configurationIsDirectoryFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf(readConfigurationErrorFormat, path, readError)
	}
	var configuration ApplicationConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf(decodeConfigurationErrorFormat, path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.MaxTokens != nil {
		result.MaxTokens = cloneInt(override.MaxTokens)
	}
	if override.CrawlDepth != nil {
		result.CrawlDepth = cloneInt(override.CrawlDepth)
	}
	if override.Headers != nil {
		result.Headers = cloneBool(override.Headers)
	}
	if override.StripBlank != nil {
		result.StripBlank = cloneBool(override.StripBlank)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicateStrings(override.Exclude)...)
	}
	if override.Generation.SystemPrompt != "" {
		result.Generation.SystemPrompt = override.Generation.SystemPrompt
	}
	return result
}

// ApplyDefaults fills the root record's unset fields from the configuration.
// Values the record already carries always win.
func (configuration ApplicationConfiguration) ApplyDefaults(record *options.Record) {
	if record.Model == "" {
		record.Model = configuration.Model
	}
	if record.MaxTokens == nil && configuration.MaxTokens != nil {
		record.MaxTokens = cloneInt(configuration.MaxTokens)
	}
	if record.CrawlDepth == nil && configuration.CrawlDepth != nil {
		record.CrawlDepth = cloneInt(configuration.CrawlDepth)
	}
	if record.HeadersResolved == nil && configuration.Headers != nil {
		record.HeadersResolved = cloneBool(configuration.Headers)
	}
	if record.BlankStripResolved == nil && configuration.StripBlank != nil {
		record.BlankStripResolved = cloneBool(configuration.StripBlank)
	}
	if len(configuration.Exclude) > 0 {
		record.ExcludeTokens = utils.DeduplicateStrings(append(append([]string{}, record.ExcludeTokens...), configuration.Exclude...))
	}
	if record.SystemPromptPath == "" {
		record.SystemPromptPath = configuration.Generation.SystemPrompt
	}
	record.Normalize()
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
