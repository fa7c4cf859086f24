package core

import "sort"

// HookEventMapping pairs a Claude Code hook event with its OpenCode equivalent
type HookEventMapping struct {
	Claude        string `json:"claude"`
	OpenCode      string `json:"opencode"`
	Description   string `json:"description"`
	Bidirectional bool   `json:"bidirectional"`
}

// HookEventMappings is the single translation table for hook events.
// Reverse lookups pick the first bidirectional row.
var HookEventMappings = []HookEventMapping{
	{Claude: "PreToolUse", OpenCode: "beforeTool", Description: "Before a tool is executed", Bidirectional: true},
	{Claude: "PostToolUse", OpenCode: "afterTool", Description: "After a tool completes successfully", Bidirectional: true},
	{Claude: "PostToolUseFailure", OpenCode: "afterToolError", Description: "After a tool fails", Bidirectional: true},
	{Claude: "UserPromptSubmit", OpenCode: "beforePrompt", Description: "Before a user prompt is processed", Bidirectional: true},
	{Claude: "SessionStart", OpenCode: "sessionStart", Description: "When a session starts", Bidirectional: true},
	{Claude: "SessionEnd", OpenCode: "sessionEnd", Description: "When a session ends", Bidirectional: true},
	{Claude: "Notification", OpenCode: "notification", Description: "When a notification is emitted", Bidirectional: true},
	{Claude: "TeammateIdle", OpenCode: "idle", Description: "When the agent becomes idle", Bidirectional: true},
	{Claude: "TaskCompleted", OpenCode: "taskComplete", Description: "When a task is completed", Bidirectional: true},
	{Claude: "PermissionRequest", OpenCode: "permissionCheck", Description: "When a permission is requested", Bidirectional: true},
	{Claude: "PreCompact", OpenCode: "beforeCompact", Description: "Before context compaction", Bidirectional: true},
	{Claude: "Compact", OpenCode: "afterCompact", Description: "After context compaction", Bidirectional: true},
	{Claude: "Stop", OpenCode: "sessionEnd", Description: "When the main agent stops responding", Bidirectional: false},
}

// openCodeOnlyEvents are OpenCode events with no Claude Code counterpart
var openCodeOnlyEvents = []string{"afterPrompt"}

// LookupClaudeEvent returns the mapping row for a Claude Code event
func LookupClaudeEvent(event string) (HookEventMapping, bool) {
	for _, m := range HookEventMappings {
		if m.Claude == event {
			return m, true
		}
	}
	return HookEventMapping{}, false
}

// LookupOpenCodeEvent returns the bidirectional mapping row for an OpenCode event
func LookupOpenCodeEvent(event string) (HookEventMapping, bool) {
	for _, m := range HookEventMappings {
		if m.OpenCode == event && m.Bidirectional {
			return m, true
		}
	}
	return HookEventMapping{}, false
}

// ClaudeEvents lists the known Claude Code events in table order
func ClaudeEvents() []string {
	events := make([]string, 0, len(HookEventMappings))
	for _, m := range HookEventMappings {
		events = append(events, m.Claude)
	}
	return events
}

// OpenCodeEvents lists the known OpenCode events, deduplicated and sorted
func OpenCodeEvents() []string {
	seen := make(map[string]bool)
	var events []string
	for _, m := range HookEventMappings {
		if !seen[m.OpenCode] {
			seen[m.OpenCode] = true
			events = append(events, m.OpenCode)
		}
	}
	events = append(events, openCodeOnlyEvents...)
	sort.Strings(events)
	return events
}

// IsOpenCodeEvent reports whether the event belongs to the OpenCode enumeration
func IsOpenCodeEvent(event string) bool {
	for _, e := range OpenCodeEvents() {
		if e == event {
			return true
		}
	}
	return false
}
