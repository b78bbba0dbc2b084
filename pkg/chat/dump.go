package chat

import (
	"gopkg.in/yaml.v3"
)

// DumpYAML renders a conversation as YAML for debugging and test fixtures.
func DumpYAML(c Conversation) (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
