package util

import (
	"os"
	"strings"
)

// GetEnvironmentVariables returns the process environment as a map. Entries
// without a value separator are skipped.
func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) != 2 {
			continue
		}

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// GetPrefixedEnvironmentVariables returns the variables starting with prefix,
// keyed without it.
func GetPrefixedEnvironmentVariables(prefix string) map[string]string {
	prefixed := map[string]string{}

	for key, value := range GetEnvironmentVariables() {
		if name, found := strings.CutPrefix(key, prefix); found && name != "" {
			prefixed[name] = value
		}
	}

	return prefixed
}
