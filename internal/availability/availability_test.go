package availability

import (
	"testing"

	semver "github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndSatisfied(t *testing.T) {
	c, err := Parse(">=1.2")
	require.NoError(t, err)
	assert.Equal(t, ">=1.2", c.String())

	assert.True(t, c.Satisfied(semver.MustParse("1.2.0")))
	assert.True(t, c.Satisfied(semver.MustParse("2.0.0")))
	assert.False(t, c.Satisfied(semver.MustParse("1.1.9")))
}

func TestEmptyConstraintAlwaysAvailable(t *testing.T) {
	c, err := Parse("")
	require.NoError(t, err)
	assert.True(t, c.Satisfied(semver.MustParse("0.0.1")))
}

func TestNilTargetIsSatisfiable(t *testing.T) {
	c, err := Parse(">=99.0")
	require.NoError(t, err)
	assert.True(t, c.Satisfied(nil))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not a version")
	assert.Error(t, err)
}

func TestRangeConstraint(t *testing.T) {
	c, err := Parse(">=1.2, <2.0")
	require.NoError(t, err)
	assert.True(t, c.Satisfied(semver.MustParse("1.5.0")))
	assert.False(t, c.Satisfied(semver.MustParse("2.1.0")))
}
