package help

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestColdstartYAML_Parses(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(ColdstartYAML), &doc))

	for _, key := range []string{"setup", "access_types", "commands", "output_files", "exit_codes", "config"} {
		assert.Contains(t, doc, key)
	}
}
