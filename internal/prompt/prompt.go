// Package prompt assembles the chat turns sent for each classification request.
package prompt

import (
	"fmt"
	"strings"

	"github.com/mwiater/shotclass/internal/providers"
)

// CategoriesPlaceholder is replaced by the comma-separated category list in the system template.
const CategoriesPlaceholder = "{categories}"

// Scenario selects how many worked examples precede the target message.
type Scenario string

const (
	ZeroShot Scenario = "zero_shot"
	OneShot  Scenario = "one_shot"
	FewShot  Scenario = "few_shot"
)

// Scenarios returns every scenario in run order.
func Scenarios() []Scenario {
	return []Scenario{ZeroShot, OneShot, FewShot}
}

// ParseScenario resolves a scenario by name. Hyphens are accepted in place of underscores.
func ParseScenario(name string) (Scenario, error) {
	normalized := Scenario(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	for _, s := range Scenarios() {
		if s == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown scenario %q (expected one of %s, %s, %s)", name, ZeroShot, OneShot, FewShot)
}

// ExampleCount returns how many of total examples the scenario injects.
func (s Scenario) ExampleCount(total int) int {
	switch s {
	case OneShot:
		return min(1, total)
	case FewShot:
		return total
	default:
		return 0
	}
}

func (s Scenario) String() string { return string(s) }

// Example is a worked example: a message and the category text the model should answer with.
type Example struct {
	Message    string `json:"message"`
	Categories string `json:"categories"`
}

// SystemPrompt renders template with the categories joined by ", ".
func SystemPrompt(template string, categories []string) string {
	return strings.ReplaceAll(template, CategoriesPlaceholder, strings.Join(categories, ", "))
}

// Builder produces turn lists for one scenario. The system prompt and the
// example prefix are fixed at construction; Build only appends the message.
type Builder struct {
	scenario Scenario
	system   string
	examples []Example
}

// NewBuilder prepares a Builder for scenario. The examples slice is copied.
func NewBuilder(scenario Scenario, systemPrompt string, examples []Example) *Builder {
	n := scenario.ExampleCount(len(examples))
	return &Builder{
		scenario: scenario,
		system:   systemPrompt,
		examples: append([]Example(nil), examples[:n]...),
	}
}

// Scenario reports the scenario the builder was created for.
func (b *Builder) Scenario() Scenario { return b.scenario }

// Build returns a fresh turn list: system, one user/assistant pair per
// injected example, then the target message as the final user turn.
func (b *Builder) Build(message string) []providers.ChatMessage {
	turns := make([]providers.ChatMessage, 0, 2*len(b.examples)+2)
	turns = append(turns, providers.ChatMessage{Role: providers.RoleSystem, Content: b.system})
	for _, ex := range b.examples {
		turns = append(turns,
			providers.ChatMessage{Role: providers.RoleUser, Content: ex.Message},
			providers.ChatMessage{Role: providers.RoleAssistant, Content: ex.Categories},
		)
	}
	return append(turns, providers.ChatMessage{Role: providers.RoleUser, Content: message})
}
