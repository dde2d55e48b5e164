package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
	expectedLogLevelConstant         = "info"
	expectedLogFormatConstant        = "structured"
	expectedRepositoryPathConstant   = "/srv/demo"
	expectedAssetDirectoryConstant   = "assets"
	expectedRemoteNameConstant       = "origin"
	expectedDelayConstant            = 30 * time.Second
)

type readmeApplicationConfiguration struct {
	Common   readmeCommonConfiguration   `yaml:"common"`
	Activity readmeActivityConfiguration `yaml:"activity"`
}

type readmeCommonConfiguration struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type readmeActivityConfiguration struct {
	RepositoryPath      string `yaml:"repository_path"`
	AssetDirectory      string `yaml:"asset_directory"`
	RemoteName          string `yaml:"remote_name"`
	IterationLimit      int    `yaml:"iteration_limit"`
	InterIterationDelay string `yaml:"inter_iteration_delay"`
}

func TestReadmeConfigurationExampleParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	var applicationConfiguration readmeApplicationConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &applicationConfiguration))

	require.Equal(testInstance, expectedLogLevelConstant, applicationConfiguration.Common.LogLevel)
	require.Equal(testInstance, expectedLogFormatConstant, applicationConfiguration.Common.LogFormat)
	require.Equal(testInstance, expectedRepositoryPathConstant, applicationConfiguration.Activity.RepositoryPath)
	require.Equal(testInstance, expectedAssetDirectoryConstant, applicationConfiguration.Activity.AssetDirectory)
	require.Equal(testInstance, expectedRemoteNameConstant, applicationConfiguration.Activity.RemoteName)
	require.Zero(testInstance, applicationConfiguration.Activity.IterationLimit)

	parsedDelay, delayParseError := time.ParseDuration(applicationConfiguration.Activity.InterIterationDelay)
	require.NoError(testInstance, delayParseError)
	require.Equal(testInstance, expectedDelayConstant, parsedDelay)
}
