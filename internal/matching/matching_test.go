package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yesminehe/CVHelperBot/pkg/types"
)

type fakeGenerator struct {
	answer string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func TestCompare(t *testing.T) {
	job := types.NewSkillSet("Go", "SQL", "Docker", "AWS")
	cv := types.NewSkillSet("Go", "Docker", "Python")

	c := Compare(job, cv)
	assert.Equal(t, []string{"Docker", "Go"}, c.Common.Sorted())
	assert.Equal(t, []string{"AWS", "SQL"}, c.OnlyA.Sorted())
	assert.Equal(t, []string{"Python"}, c.OnlyB.Sorted())
	assert.InDelta(t, 50.0, c.Percentage, 1e-9)
	assert.False(t, Matches(c))
}

func TestCompare_IntersectionIsSymmetric(t *testing.T) {
	a := types.NewSkillSet("go", "rust", "sql")
	b := types.NewSkillSet("sql", "go", "java", "kotlin")

	assert.Equal(t, Compare(a, b).Common, Compare(b, a).Common)
	assert.Equal(t, Compare(a, b).OnlyA, Compare(b, a).OnlyB)
}

func TestCompare_EmptyRequirementSet(t *testing.T) {
	c := Compare(types.NewSkillSet(), types.NewSkillSet("Go"))
	assert.Equal(t, 0.0, c.Percentage)
	assert.Equal(t, []string{"Go"}, c.OnlyB.Sorted())
}

func TestCompare_IsCaseSensitive(t *testing.T) {
	c := Compare(types.NewSkillSet("go"), types.NewSkillSet("Go"))
	assert.Equal(t, 0, c.Common.Len())
}

func TestMatches_AboveThreshold(t *testing.T) {
	c := Compare(types.NewSkillSet("a1", "b2", "c3"), types.NewSkillSet("a1", "b2"))
	assert.True(t, Matches(c))
}

func TestSuggestCourses(t *testing.T) {
	gen := &fakeGenerator{answer: "```\n- AWS: AWS Cloud Practitioner\n```"}
	out, err := SuggestCourses(context.Background(), gen, types.NewSkillSet("SQL", "AWS", "Rust"), 2)
	require.NoError(t, err)
	assert.Equal(t, "- AWS: AWS Cloud Practitioner", out)
	assert.Contains(t, gen.prompt, "AWS, Rust")
	assert.NotContains(t, gen.prompt, "SQL")
}

func TestSuggestCourses_NothingMissing(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("should not be called")}
	out, err := SuggestCourses(context.Background(), gen, types.NewSkillSet(), 5)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, gen.prompt)
}
