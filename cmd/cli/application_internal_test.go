package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	internalTestConfigFileNameConstant     = "config.yaml"
	internalTestConfigContentConstant      = "common:\n  log_level: warn\n  log_format: console\nactivity:\n  repository_path: /srv/activity\n  remote_name: upstream\n  iteration_limit: 5\n  inter_iteration_delay: 2s\n"
	internalTestSubtestNameTemplate        = "%d_%s"
	internalTestCaseFileConfiguration      = "file_configuration_applied"
	internalTestCaseFlagOverridesLogLevel  = "flag_overrides_log_level"
	internalTestCaseEmbeddedDefaults       = "embedded_defaults_applied"
	internalTestOverriddenLogLevelConstant = "debug"
)

func writeInternalTestConfiguration(testInstance *testing.T) string {
	configurationPath := filepath.Join(testInstance.TempDir(), internalTestConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(internalTestConfigContentConstant), 0o600))
	return configurationPath
}

func TestApplicationInitializeConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name   string
		verify func(testInstance *testing.T)
	}{
		{
			name: internalTestCaseFileConfiguration,
			verify: func(testInstance *testing.T) {
				application := NewApplication()
				application.configurationFilePath = writeInternalTestConfiguration(testInstance)

				require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

				require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
				require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
				require.True(testInstance, application.humanReadableLoggingEnabled())
				require.Equal(testInstance, "/srv/activity", application.configuration.Activity.RepositoryPath)
				require.Equal(testInstance, "upstream", application.configuration.Activity.RemoteName)
				require.Equal(testInstance, 5, application.configuration.Activity.IterationLimit)
				require.Equal(testInstance, 2*time.Second, application.configuration.Activity.InterIterationDelay)
				require.NotNil(testInstance, application.logger)
			},
		},
		{
			name: internalTestCaseFlagOverridesLogLevel,
			verify: func(testInstance *testing.T) {
				application := NewApplication()
				application.configurationFilePath = writeInternalTestConfiguration(testInstance)
				require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, internalTestOverriddenLogLevelConstant))

				require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

				require.Equal(testInstance, internalTestOverriddenLogLevelConstant, application.configuration.Common.LogLevel)
			},
		},
		{
			name: internalTestCaseEmbeddedDefaults,
			verify: func(testInstance *testing.T) {
				application := NewApplication()

				require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

				require.Equal(testInstance, string("info"), application.configuration.Common.LogLevel)
				require.False(testInstance, application.humanReadableLoggingEnabled())
				require.Equal(testInstance, ".", application.configuration.Activity.RepositoryPath)
				require.Equal(testInstance, "assets", application.configuration.Activity.AssetDirectory)
				require.Equal(testInstance, "origin", application.configuration.Activity.RemoteName)
				require.Zero(testInstance, application.configuration.Activity.IterationLimit)
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(internalTestSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			testCase.verify(testInstance)
		})
	}
}

func TestApplicationCommandTree(testInstance *testing.T) {
	application := NewApplication()

	commandNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		commandNames[registeredCommand.Name()] = true
	}
	require.True(testInstance, commandNames["activity"])
}
