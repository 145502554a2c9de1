package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/shotclass/internal/providers"
)

var testExamples = []Example{
	{Message: "Win a free cruise!", Categories: "spam"},
	{Message: "Meeting moved to 3pm", Categories: "work"},
	{Message: "Mom's birthday dinner", Categories: "family, personal"},
}

func assemble(scenario Scenario, template string, categories []string, examples []Example, message string) []providers.ChatMessage {
	return NewBuilder(scenario, SystemPrompt(template, categories), examples).Build(message)
}

func TestSystemPrompt(t *testing.T) {
	got := SystemPrompt("Pick from: {categories}. Only {categories}.", []string{"spam", "work", "family"})
	assert.Equal(t, "Pick from: spam, work, family. Only spam, work, family.", got)
	assert.Equal(t, "no placeholder", SystemPrompt("no placeholder", []string{"a"}))
}

func TestBuildZeroShot(t *testing.T) {
	turns := assemble(ZeroShot, "Use {categories}", []string{"a", "b"}, testExamples, "hello")

	require.Len(t, turns, 2)
	assert.Equal(t, providers.ChatMessage{Role: providers.RoleSystem, Content: "Use a, b"}, turns[0])
	assert.Equal(t, providers.ChatMessage{Role: providers.RoleUser, Content: "hello"}, turns[1])
}

func TestBuildOneShot(t *testing.T) {
	turns := assemble(OneShot, "sys", nil, testExamples, "hello")

	assert.Equal(t, []providers.ChatMessage{
		{Role: providers.RoleSystem, Content: "sys"},
		{Role: providers.RoleUser, Content: "Win a free cruise!"},
		{Role: providers.RoleAssistant, Content: "spam"},
		{Role: providers.RoleUser, Content: "hello"},
	}, turns)
}

func TestBuildFewShot(t *testing.T) {
	for n := 0; n <= len(testExamples); n++ {
		turns := assemble(FewShot, "sys", nil, testExamples[:n], "target")
		require.Len(t, turns, 2*n+2)

		assert.Equal(t, providers.RoleSystem, turns[0].Role)
		for i := 0; i < n; i++ {
			assert.Equal(t, providers.ChatMessage{Role: providers.RoleUser, Content: testExamples[i].Message}, turns[1+2*i])
			assert.Equal(t, providers.ChatMessage{Role: providers.RoleAssistant, Content: testExamples[i].Categories}, turns[2+2*i])
		}
		assert.Equal(t, providers.ChatMessage{Role: providers.RoleUser, Content: "target"}, turns[len(turns)-1])
	}
}

func TestBuildOneShotWithoutExamples(t *testing.T) {
	turns := assemble(OneShot, "sys", nil, nil, "hello")
	assert.Len(t, turns, 2)
}

func TestBuilderDoesNotMutateInputs(t *testing.T) {
	categories := []string{"b", "a"}
	examples := append([]Example(nil), testExamples...)

	builder := NewBuilder(FewShot, SystemPrompt("{categories}", categories), examples)
	first := builder.Build("one")
	first[1].Content = "changed"
	examples[0].Message = "changed too"

	second := builder.Build("two")
	assert.Equal(t, "Win a free cruise!", second[1].Content)
	assert.Equal(t, []string{"b", "a"}, categories)
	assert.Equal(t, FewShot, builder.Scenario())
}

func TestParseScenario(t *testing.T) {
	for input, want := range map[string]Scenario{
		"zero_shot":  ZeroShot,
		"One-Shot":   OneShot,
		" few_shot ": FewShot,
	} {
		got, err := ParseScenario(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseScenario("two_shot")
	assert.Error(t, err)
}

func TestScenarioExampleCount(t *testing.T) {
	assert.Equal(t, 0, ZeroShot.ExampleCount(5))
	assert.Equal(t, 1, OneShot.ExampleCount(5))
	assert.Equal(t, 0, OneShot.ExampleCount(0))
	assert.Equal(t, 5, FewShot.ExampleCount(5))
	assert.Equal(t, []Scenario{ZeroShot, OneShot, FewShot}, Scenarios())
}
