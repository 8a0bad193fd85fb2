package git

import (
	"fmt"
	"strings"
)

// Commit types used by alttag.
const (
	CommitTypeFix   = "fix"
	CommitTypeChore = "chore"
)

// Footer is appended to every message alttag writes.
const Footer = "Rewritten-by: alttag"

// FormatCommitMessage builds a Conventional Commit message:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Rewritten-by: alttag
func FormatCommitMessage(ctype, scope, subject, body string) string {
	var sb strings.Builder

	if ctype == "" {
		ctype = CommitTypeChore
	}
	sb.WriteString(ctype)

	if scope != "" {
		sb.WriteString("(")
		sb.WriteString(scope)
		sb.WriteString(")")
	}

	sb.WriteString(": ")
	sb.WriteString(subject)

	if body = strings.TrimSpace(body); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}

	sb.WriteString("\n\n")
	sb.WriteString(Footer)

	return sb.String()
}

// ImageCommitMessage is the message for a body rewritten by the pipeline.
func ImageCommitMessage(id string) string {
	return FormatCommitMessage(CommitTypeFix, "images", fmt.Sprintf("sync alt text of %s", id), "")
}
