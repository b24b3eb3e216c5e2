package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_String_NamesEachPipelineStep(t *testing.T) {
	assert.Equal(t, "Parsing", StageParsing.String())
	assert.Equal(t, "Querying stores", StageCoordinating.String())
	assert.Equal(t, "Done", StageComplete.String())
	assert.Equal(t, "Unknown", Stage(99).String())
}

func TestDetectCI_TrueWhenCIEnvSet(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, DetectCI())
}

func TestDetectCI_FalseWhenNoCIVarsSet(t *testing.T) {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"} {
		t.Setenv(v, "")
		assert.NoError(t, os.Unsetenv(v))
	}
	assert.False(t, DetectCI())
}

func TestDetectNoColor_TrueWhenSet(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}

func TestSpinner_DisabledOnNonTerminalWriter_NoOutput(t *testing.T) {
	// A bytes.Buffer is never a terminal, so the spinner must stay silent.
	buf := &bytes.Buffer{}
	sp := NewSpinner(buf)
	sp.Start("Querying stores")
	sp.Stop()
	assert.Empty(t, buf.String())
}
