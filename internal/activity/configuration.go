package activity

import (
	"strings"
	"time"
)

const (
	defaultRepositoryPathConstant        = "."
	defaultAssetDirectoryConstant        = "assets"
	defaultRemoteNameConstant            = "origin"
	defaultIterationLimitConstant        = 0
	defaultInterIterationDelayConstant   = time.Duration(0)
	repositoryPathConfigurationKey       = "repository_path"
	assetDirectoryConfigurationKey       = "asset_directory"
	remoteNameConfigurationKey           = "remote_name"
	iterationLimitConfigurationKey       = "iteration_limit"
	interIterationDelayConfigurationKey  = "inter_iteration_delay"
	configurationKeySeparatorConstant    = "."
)

// CommandConfiguration captures persisted configuration for the activity loop.
type CommandConfiguration struct {
	RepositoryPath      string        `mapstructure:"repository_path"`
	AssetDirectory      string        `mapstructure:"asset_directory"`
	RemoteName          string        `mapstructure:"remote_name"`
	IterationLimit      int           `mapstructure:"iteration_limit"`
	InterIterationDelay time.Duration `mapstructure:"inter_iteration_delay"`
}

// DefaultCommandConfiguration returns baseline configuration values for the activity loop.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath:      defaultRepositoryPathConstant,
		AssetDirectory:      defaultAssetDirectoryConstant,
		RemoteName:          defaultRemoteNameConstant,
		IterationLimit:      defaultIterationLimitConstant,
		InterIterationDelay: defaultInterIterationDelayConstant,
	}
}

// DefaultConfigurationValues exposes the baseline values keyed for the
// configuration loader under the supplied section prefix.
func DefaultConfigurationValues(sectionPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		sectionPrefix + configurationKeySeparatorConstant + repositoryPathConfigurationKey:      defaults.RepositoryPath,
		sectionPrefix + configurationKeySeparatorConstant + assetDirectoryConfigurationKey:      defaults.AssetDirectory,
		sectionPrefix + configurationKeySeparatorConstant + remoteNameConfigurationKey:          defaults.RemoteName,
		sectionPrefix + configurationKeySeparatorConstant + iterationLimitConfigurationKey:      defaults.IterationLimit,
		sectionPrefix + configurationKeySeparatorConstant + interIterationDelayConfigurationKey: defaults.InterIterationDelay,
	}
}

// Sanitize trims configured values and restores defaults for empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = defaults.RepositoryPath
	}
	sanitized.AssetDirectory = strings.TrimSpace(configuration.AssetDirectory)
	if len(sanitized.AssetDirectory) == 0 {
		sanitized.AssetDirectory = defaults.AssetDirectory
	}
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaults.RemoteName
	}
	if sanitized.IterationLimit < 0 {
		sanitized.IterationLimit = defaults.IterationLimit
	}
	if sanitized.InterIterationDelay < 0 {
		sanitized.InterIterationDelay = defaults.InterIterationDelay
	}
	return sanitized
}
