package agent

import (
	"fmt"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from the conversation context.
type Provider interface {
	Instruction(conv *core.ConversationContext) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(conv *core.ConversationContext) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(conv *core.ConversationContext) (string, error) { return f(conv) }

// Instruction represents either a static instruction string or a dynamic provider.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(conv *core.ConversationContext) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(conv *core.ConversationContext) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(conv)
	}
	return i.text, nil
}

var levelHints = map[core.StudentLevel]string{
	core.LevelIntermediate: "這位小朋友的程度是中等，可以稍微深入說明，但仍要淺顯易懂。",
	core.LevelAdvanced:     "這位小朋友的程度較好，可以介紹更進階的概念和延伸思考。",
}

// RenderPersona renders the descriptor's persona template.
func RenderPersona(d Descriptor) (string, error) {
	text, err := util.RenderTemplate(d.Persona, map[string]any{"ReplyBudget": d.ReplyBudget})
	if err != nil {
		return "", fmt.Errorf("render persona %s: %w", d.ID, err)
	}
	return text, nil
}

// PersonaInstruction returns the default dynamic instruction of a specialist:
// the rendered persona, followed by a level hint when the student is not at
// the elementary level.
func PersonaInstruction(d Descriptor) Instruction {
	return NewInstructionFromFunc(func(conv *core.ConversationContext) (string, error) {
		text, err := RenderPersona(d)
		if err != nil {
			return "", err
		}
		if conv == nil {
			return text, nil
		}
		if hint, ok := levelHints[conv.StudentLevel]; ok {
			text += "\n\n" + hint
		}
		return text, nil
	})
}
