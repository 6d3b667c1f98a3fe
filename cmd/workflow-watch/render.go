package main

import (
	"fmt"
	"strings"

	"github.com/skybooklabs/skybook-backend/internal/workflow"
)

var statusMarks = map[workflow.Status]string{
	workflow.StatusDone:    "[x]",
	workflow.StatusActive:  "[>]",
	workflow.StatusPending: "[ ]",
}

// renderView formats one poller view as a terminal frame. The frame is
// re-printed wholesale on every update.
func renderView(orderID string, view workflow.View) string {
	var b strings.Builder

	b.WriteString("Workflow: Outbox + Inbox + Saga (choreography)\n")
	fmt.Fprintf(&b, "Order ID: %s\n", orderID)
	if view.Snapshot != nil && view.Snapshot.Order != nil {
		fmt.Fprintf(&b, "Order status: %s\n", view.Snapshot.Order.Status)
	}
	if view.Err != "" {
		fmt.Fprintf(&b, "Last fetch error: %s\n", view.Err)
	}
	b.WriteString("\n")

	steps := view.Steps()
	if len(steps) == 0 {
		b.WriteString("Waiting for workflow data...\n")
		return b.String()
	}

	for _, step := range steps {
		badges := make([]string, 0, len(step.Badges))
		for _, badge := range step.Badges {
			badges = append(badges, string(badge))
		}
		fmt.Fprintf(&b, "%s %d. %s (%s)\n", statusMarks[step.Status], step.Index+1, step.Title, strings.Join(badges, ", "))
		fmt.Fprintf(&b, "    %s\n", step.Rationale)
		if step.Detail.Waiting != "" {
			fmt.Fprintf(&b, "    %s\n", step.Detail.Waiting)
		}
		for _, section := range step.Detail.Sections {
			if section.Title != "" {
				fmt.Fprintf(&b, "    %s:\n", section.Title)
			}
			for _, field := range section.Fields {
				fmt.Fprintf(&b, "      %-16s %s\n", field.Key, field.Value)
			}
			if section.Note != "" {
				fmt.Fprintf(&b, "      %s\n", section.Note)
			}
		}
	}
	return b.String()
}
