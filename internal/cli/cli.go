// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/weave/internal/config"
	"github.com/temirov/weave/internal/directive"
	"github.com/temirov/weave/internal/engine"
	"github.com/temirov/weave/internal/options"
	"github.com/temirov/weave/internal/utils"
)

const (
	rootUse              = "weave [flags] [inputs...]"
	rootShortDescription = "weave command line interface"
	rootLongDescription  = `weave collects local files, git repositories, and web pages into a single
text stream and optionally renders it through templates or a generation
backend. Inputs and flags may be given on the command line, in a directive
file selected with --file, or in both; command line tokens apply to the
root context and are inherited by every context the directive file defines.`
	rootUsageExample = `  # Concatenate a directory to stdout, Go files only
  weave ./src -s .go

  # Run a directive file
  weave -f prompts.weave

  # Slice a log file and copy the result
  weave build.log --start 100 --count 40 --copy`

	versionTemplate        = "weave version: %s\n"
	missingFlagValueFormat = "flag %s requires a value"

	tokenizationWarningMessage = "tokenization warning"
	fileFlagInDirectiveMessage = "the --file flag cannot appear inside a directive file"
	nestedGenerateMessage      = "a context with --generate cannot contain a descendant with --generate"

	generateFlagLong   = "--generate"
	fileFlagLongToken  = "--file"
	fileFlagShortToken = "-f"
	configFlagToken    = "--config"
	versionFlagToken   = "--version"
	helpFlagLongToken  = "--help"
	helpFlagShortToken = "-h"
)

// commandLine is the result of splitting raw arguments into the command's
// own flags and root context tokens.
type commandLine struct {
	directiveFilePath     string
	configurationFilePath string
	showVersion           bool
	showHelp              bool
	rootTokens            []string
}

// Execute runs the weave application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command. Flag parsing is disabled
// so every token that is not one of the command's own flags reaches the
// execution engine unchanged; the directive vocabulary works on the command
// line exactly as it does in a directive file.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:                rootUse,
		Short:              rootShortDescription,
		Long:               rootLongDescription,
		Example:            rootUsageExample,
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableFlagParsing: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			parsedLine, splitError := splitArguments(arguments)
			if splitError != nil {
				return splitError
			}
			if parsedLine.showHelp {
				return command.Help()
			}
			if parsedLine.showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			return runWeave(command.Context(), logger, parsedLine)
		},
	}
	return rootCommand
}

// splitArguments extracts the command's own flags from the argument list and
// keeps everything else as root context tokens, in order.
func splitArguments(arguments []string) (commandLine, error) {
	var parsedLine commandLine
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		switch argument {
		case fileFlagShortToken, fileFlagLongToken:
			if index+1 >= len(arguments) {
				return commandLine{}, fmt.Errorf(missingFlagValueFormat, argument)
			}
			index++
			parsedLine.directiveFilePath = arguments[index]
		case configFlagToken:
			if index+1 >= len(arguments) {
				return commandLine{}, fmt.Errorf(missingFlagValueFormat, argument)
			}
			index++
			parsedLine.configurationFilePath = arguments[index]
		case versionFlagToken:
			parsedLine.showVersion = true
		case helpFlagShortToken, helpFlagLongToken:
			parsedLine.showHelp = true
		default:
			parsedLine.rootTokens = append(parsedLine.rootTokens, argument)
		}
	}
	return parsedLine, nil
}

// runWeave parses the directive tree, validates it, loads configuration
// defaults, and hands the tree to the execution engine.
func runWeave(runContext context.Context, logger *zap.Logger, parsedLine commandLine) error {
	if runContext == nil {
		runContext = context.Background()
	}

	rootNode := &directive.ContextNode{}
	if parsedLine.directiveFilePath != "" {
		parsedRoot, warnings, parseError := directive.ParseFile(parsedLine.directiveFilePath)
		if parseError != nil {
			return parseError
		}
		for _, warning := range warnings {
			logger.Warn(tokenizationWarningMessage, zap.String("detail", warning.String()))
		}
		rootNode = parsedRoot
	}
	rootNode.Tokens = append(append([]string{}, parsedLine.rootTokens...), rootNode.Tokens...)

	if validationError := validateTree(rootNode, false); validationError != nil {
		return validationError
	}

	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: parsedLine.configurationFilePath,
	})
	if configurationError != nil {
		return configurationError
	}
	defaults := &options.Record{}
	applicationConfiguration.ApplyDefaults(defaults)

	weaveEngine := engine.New(engine.Config{Logger: logger})
	_, runError := weaveEngine.Run(runContext, rootNode, defaults)
	return runError
}

// validateTree rejects directive trees the engine refuses to execute: a
// --file token anywhere, and --generate on both a context and one of its
// descendants.
func validateTree(node *directive.ContextNode, generateAbove bool) error {
	hasGenerate := false
	for _, token := range node.Tokens {
		switch token {
		case fileFlagShortToken, fileFlagLongToken:
			return errors.New(fileFlagInDirectiveMessage)
		case generateFlagLong:
			hasGenerate = true
		}
	}
	if hasGenerate && generateAbove {
		return errors.New(nestedGenerateMessage)
	}
	for _, childNode := range node.Children {
		if childError := validateTree(childNode, generateAbove || hasGenerate); childError != nil {
			return childError
		}
	}
	return nil
}
