// Package templates loads the governance text templates and fills in their
// {{PLACEHOLDER}} tokens.
package templates

import (
	"regexp"
	"sort"
	"strings"
)

// Placeholder keys understood by the bundled templates.
const (
	AlertUsers         = "ALERT_USERS"
	ProtectionSettings = "PROTECTION_SETTINGS"
	BodyMarkdown       = "BODY_MARKDOWN"
)

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// Render replaces every literal "{{KEY}}" in text with subs[KEY]. Keys are
// applied in sorted order so the result does not depend on map iteration.
func Render(text string, subs map[string]string) string {
	keys := make([]string, 0, len(subs))
	for k := range subs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		text = strings.ReplaceAll(text, "{{"+k+"}}", subs[k])
	}
	return text
}

// EscapeQuotes turns every `"` into `\"` so s can sit inside a JSON string.
func EscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// CollapseLineBreaks replaces each run of CR/LF characters with the two
// characters `\n`.
func CollapseLineBreaks(s string) string {
	return lineBreaks.ReplaceAllLiteralString(s, `\n`)
}

// ComposeIssue builds the JSON issue payload. The alert users go into the
// body first, then the escaped protection document; the finished body has
// its line breaks collapsed before it is embedded in the issue wrapper.
func ComposeIssue(bodyTemplate, issueTemplate, alertUsers, protection string) string {
	body := Render(bodyTemplate, map[string]string{AlertUsers: alertUsers})
	body = Render(body, map[string]string{ProtectionSettings: EscapeQuotes(protection)})
	return Render(issueTemplate, map[string]string{BodyMarkdown: CollapseLineBreaks(body)})
}
