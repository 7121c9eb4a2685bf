// Package envexp expands variable assignments and references inside context
// token lists.
//
// Assignments are collected from designated assignment flags, resolved against
// themselves to a fixed point, substituted across the remaining tokens, and
// finally any flag whose value is the disable sentinel is removed together
// with the flag itself.
package envexp

import (
	"errors"
	"os"
	"strings"

	"github.com/temirov/weave/internal/options"
	"github.com/temirov/weave/internal/types"
)

// maximumExpansionIterations bounds the fixed-point substitution loop. A map
// that still changes after this many passes is treated as non-convergent.
const maximumExpansionIterations = 16

// ErrExpansionDiverged reports that fixed-point substitution did not stabilize.
var ErrExpansionDiverged = errors.New("variable expansion did not converge")

// Binding is one NAME=VAL assignment in declaration order, with its value
// fully expanded.
type Binding struct {
	Name  string
	Value string
}

// Result carries the expanded token list and the assignments declared by the
// context, split by visibility.
type Result struct {
	Tokens  []string
	Globals []Binding
	Locals  []Binding
}

// Expand applies assignment collection, fixed-point map substitution, token
// substitution, and sentinel stripping to the provided tokens. The inherited
// map seeds the working bindings and is not mutated.
func Expand(tokens []string, inherited map[string]string) (Result, error) {
	workingMap := make(map[string]string, len(inherited))
	for name, value := range inherited {
		workingMap[name] = value
	}

	globalNames, localNames := collectAssignments(tokens, workingMap)

	if convergenceError := resolveFixedPoint(workingMap); convergenceError != nil {
		return Result{}, convergenceError
	}

	substituted := substituteTokens(tokens, workingMap)
	stripped := stripDisabledFlags(substituted)

	result := Result{Tokens: stripped}
	for _, name := range globalNames {
		result.Globals = append(result.Globals, Binding{Name: name, Value: workingMap[name]})
	}
	for _, name := range localNames {
		result.Locals = append(result.Locals, Binding{Name: name, Value: workingMap[name]})
	}
	return result, nil
}

// collectAssignments stores NAME=VAL pairs following assignment flags into the
// working map and returns the declared names in order, split by visibility.
// References to names already bound, inherited or declared earlier in the same
// token list, resolve positionally against the value in force at that point;
// forward references stay literal for the fixed-point pass. A declaration that
// follows a reference therefore cannot rewrite what the reference saw, and a
// redefinition such as X=$X/more reads the prior X instead of itself.
func collectAssignments(tokens []string, workingMap map[string]string) ([]string, []string) {
	var globalNames []string
	var localNames []string
	for index := 0; index+1 < len(tokens); index++ {
		token := tokens[index]
		if !options.IsAssignmentFlag(token) {
			continue
		}
		assignment := tokens[index+1]
		separatorIndex := strings.Index(assignment, "=")
		if separatorIndex <= 0 {
			index++
			continue
		}
		name := assignment[:separatorIndex]
		value := os.Expand(assignment[separatorIndex+1:], func(referencedName string) string {
			if boundValue, present := workingMap[referencedName]; present {
				return boundValue
			}
			return "${" + referencedName + "}"
		})
		workingMap[name] = value
		if options.CanonicalFlagName(token) == options.GlobalFlagLong {
			globalNames = append(globalNames, name)
		} else {
			localNames = append(localNames, name)
		}
		index++
	}
	return globalNames, localNames
}

// resolveFixedPoint substitutes the map's values against the map itself until
// no value changes, computing each pass from a snapshot of the previous one.
func resolveFixedPoint(workingMap map[string]string) error {
	for iteration := 0; iteration < maximumExpansionIterations; iteration++ {
		snapshot := make(map[string]string, len(workingMap))
		for name, value := range workingMap {
			snapshot[name] = value
		}
		changed := false
		for name, value := range snapshot {
			expandedValue := os.Expand(value, lookupIn(snapshot))
			if expandedValue != value {
				workingMap[name] = expandedValue
				changed = true
			}
		}
		if !changed {
			return nil
		}
	}
	return ErrExpansionDiverged
}

// substituteTokens expands variable references across tokens, leaving the
// value immediately following an assignment flag literal so that definitions
// are preserved as written.
func substituteTokens(tokens []string, workingMap map[string]string) []string {
	substituted := make([]string, 0, len(tokens))
	for index := 0; index < len(tokens); index++ {
		token := tokens[index]
		if options.IsAssignmentFlag(token) && index+1 < len(tokens) {
			substituted = append(substituted, token, tokens[index+1])
			index++
			continue
		}
		substituted = append(substituted, os.Expand(token, lookupIn(workingMap)))
	}
	return substituted
}

// lookupIn resolves a variable name against the working map first and the
// process environment second; unknown names expand to the empty string.
func lookupIn(workingMap map[string]string) func(string) string {
	return func(name string) string {
		if value, present := workingMap[name]; present {
			return value
		}
		if value, present := os.LookupEnv(name); present {
			return value
		}
		return ""
	}
}

// stripDisabledFlags removes every flag/value pair whose value equals the
// disable sentinel. The first pass marks each flag with any disabled
// occurrence; the second drops all occurrences of the marked flags, which
// keeps behavior deterministic when a flag repeats with mixed values.
func stripDisabledFlags(tokens []string) []string {
	disabledFlags := make(map[string]struct{})
	for index := 0; index+1 < len(tokens); index++ {
		token := tokens[index]
		if !options.FlagTakesValue(token) {
			continue
		}
		if strings.EqualFold(tokens[index+1], types.DisableSentinel) {
			disabledFlags[options.CanonicalFlagName(token)] = struct{}{}
		}
		index++
	}
	if len(disabledFlags) == 0 {
		return tokens
	}

	var kept []string
	for index := 0; index < len(tokens); index++ {
		token := tokens[index]
		if options.FlagTakesValue(token) {
			if _, disabled := disabledFlags[options.CanonicalFlagName(token)]; disabled {
				index++
				continue
			}
		}
		kept = append(kept, token)
	}
	return kept
}
