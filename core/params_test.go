package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfilesDiffer(t *testing.T) {
	p := DefaultProfiles()

	assert.Greater(t, p.LQ.StepSize, p.HQ.StepSize)
	assert.Less(t, p.LQ.MaxSteps, p.HQ.MaxSteps)
	assert.False(t, p.LQ.Shading)
	assert.True(t, p.HQ.Shading)
	require.NoError(t, p.LQ.validate())
	require.NoError(t, p.HQ.validate())
}

func TestLoadProfilesMissingFileUsesDefaults(t *testing.T) {
	p, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.yaml"), NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, DefaultProfiles(), p)
}

func TestLoadProfilesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	yaml := `
hq:
  stepSize: 0.002
  maxSteps: 3000
lq:
  stepSize: 0.02
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	p, err := LoadProfiles(path, NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, float32(0.002), p.HQ.StepSize)
	assert.Equal(t, 3000, p.HQ.MaxSteps)
	assert.Equal(t, float32(0.02), p.LQ.StepSize)
	// Unspecified fields keep their defaults.
	assert.Equal(t, DefaultProfiles().HQ.Ambient, p.HQ.Ambient)
}

func TestLoadProfilesRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hq:\n  stepSize: -1\n"), 0o644))

	_, err := LoadProfiles(path, NewNopLogger())
	assert.Error(t, err)
}

func TestParseColorMode(t *testing.T) {
	m, err := ParseColorMode("")
	require.NoError(t, err)
	assert.Equal(t, ColorModeWL, m)

	m, err = ParseColorMode("ctf")
	require.NoError(t, err)
	assert.Equal(t, ColorModeCTF, m)

	_, err = ParseColorMode("rainbow")
	assert.Error(t, err)
}

func TestCuttingCubeKeepsOrdering(t *testing.T) {
	c := NewCuttingCube()

	// Lowering max below min pins it at min.
	c.SetMin(0, 0.5)
	c.SetMax(0, 0.2)
	assert.Equal(t, float32(0.5), c.Max[0])
	assert.LessOrEqual(t, c.Min[0], c.Max[0])

	c.SetMin(1, -5)
	assert.Equal(t, float32(-1), c.Min[1])

	c.Reset()
	assert.Equal(t, float32(-1), c.Min[0])
	assert.Equal(t, float32(1), c.Max[0])
}
