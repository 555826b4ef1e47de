package decision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stellarlinkco/lorewright/internal/card"
	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

const (
	maxPromptMessages = 8
	maxSnippetLen     = 300
)

const systemPreamble = `You are the planner of a character and worldbook generation agent. Each turn
you pick exactly one next action. Work incrementally: research if needed,
build the character card first, then the three structural worldbook entries,
then at least five supplement entries, then declare completion.

Reply with a single JSON object, no prose around it:
{"action": "use_tool" | "ask_user" | "complete_task" | "request_clarification",
 "tool": "<tool id when action is use_tool>",
 "parameters": { ... tool parameters ... },
 "reasoning": "<one sentence>",
 "question": "<when asking the user>",
 "finished": <true when action is complete_task and the work is done>}`

func buildSystemPrompt(decls []tool.Declaration) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nAvailable tools:\n")
	// The declaration surface is serialized verbatim; the model depends on
	// this exact shape.
	data, err := json.MarshalIndent(decls, "", "  ")
	if err != nil {
		data = []byte("[]")
	}
	b.Write(data)
	return b.String()
}

func buildStatePrompt(exec *session.ExecContext, remaining int) string {
	var b strings.Builder

	if req := firstUserMessage(exec.History); req != "" {
		fmt.Fprintf(&b, "Original request: %s\n\n", req)
	}

	b.WriteString("Character fields:\n")
	for _, name := range card.RequiredFields {
		state := "MISSING"
		if strings.TrimSpace(exec.Output.Character.Field(name)) != "" {
			state = "set"
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, state)
	}

	wb := &exec.Output.Worldbook
	fmt.Fprintf(&b, "\nWorldbook entries: status=%d user_setting=%d world_view=%d supplements=%d (need >=%d)\n",
		wb.Count(card.EntryStatus), wb.Count(card.EntryUserSetting),
		wb.Count(card.EntryWorldView), wb.Count(card.EntrySupplement), card.MinSupplements)

	fmt.Fprintf(&b, "Knowledge base entries: %d\n", len(exec.Research.Knowledge))

	if len(exec.Research.Tasks) > 0 {
		b.WriteString("\nPlanned tasks:\n")
		for _, t := range exec.Research.Tasks {
			fmt.Fprintf(&b, "- [%s] %s (tool %s", t.Status, t.Description, t.Tool)
			if len(t.DependsOn) > 0 {
				fmt.Fprintf(&b, ", depends on %s", strings.Join(t.DependsOn, ", "))
			}
			b.WriteString(")\n")
		}
	}

	if msgs := tail(exec.History, maxPromptMessages); len(msgs) > 0 {
		b.WriteString("\nRecent messages:\n")
		for _, m := range msgs {
			fmt.Fprintf(&b, "[%s] %s\n", m.Role, snippet(m.Content))
		}
	}

	fmt.Fprintf(&b, "\nRemaining iterations: %d\n", remaining)
	b.WriteString("Decide the next action.")
	return b.String()
}

func firstUserMessage(history []session.Message) string {
	for _, m := range history {
		if m.Role == "user" {
			return snippet(m.Content)
		}
	}
	return ""
}

func tail(msgs []session.Message, n int) []session.Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxSnippetLen {
		return s
	}
	return string(runes[:maxSnippetLen]) + "..."
}
