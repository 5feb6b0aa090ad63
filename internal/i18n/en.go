package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Panel titles
	"panel.chat":    "Chat",
	"panel.rollout": "Rollout",
	"panel.diag":    "Diagnostics",

	// Status bar
	"status.ready": "Ready",
	"status.busy":  "Waiting for reply...",

	// Chat terminal
	"input.placeholder": "Ask the rollout assistant...",
	"chat.empty_reply":  "(empty reply)",
	"chat.status_line":  "answered in %d ms via %s",
	"chat.failed_line":  "request failed: %s",
	"chat.tokens":       "%d tokens",

	// Diagnostics panel
	"diag.actions_hint": "h health · p ping · d dbcheck",
	"diag.render_fault": "Diagnostics panel failed to render. Restart to recover.",
	"diag.no_calls":     "No calls yet",

	// Rollout pie
	"rollout.play_hint": "space to replay",
}
