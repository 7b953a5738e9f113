package cli

import _ "embed"

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

const embeddedConfigurationTypeConstant = "yaml"

// EmbeddedDefaultConfiguration returns a copy of the embedded default
// configuration document along with its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	configurationCopy := make([]byte, len(embeddedDefaultConfiguration))
	copy(configurationCopy, embeddedDefaultConfiguration)
	return configurationCopy, embeddedConfigurationTypeConstant
}
