package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/inboxpilot/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// renderMessagePreview renders an inbound message with its
// classification and summary for the reviewer.
func renderMessagePreview(
	msg model.Message, cl model.Classification, sum model.Summary,
) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("EMAIL PREVIEW") + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("From:"), msg.Sender)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Subject:"), msg.Subject)
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("Date:"), msg.Date.Format("2006-01-02 15:04"))

	fmt.Fprintf(&b, "%s %s  %s %s  %s %.0f%%\n\n",
		labelStyle.Render("Category:"), strings.ToUpper(string(cl.Category)),
		labelStyle.Render("Priority:"), strings.ToUpper(string(cl.Priority)),
		labelStyle.Render("Confidence:"), cl.Confidence*100,
	)

	b.WriteString(labelStyle.Render("Summary:") + "\n")
	b.WriteString(sum.Summary + "\n")

	if len(sum.KeyPoints) > 0 {
		b.WriteString("\n" + labelStyle.Render("Key points:") + "\n")
		for _, p := range sum.KeyPoints {
			b.WriteString("  - " + p + "\n")
		}
	}
	if len(sum.ActionItems) > 0 {
		b.WriteString("\n" + labelStyle.Render("Action items:") + "\n")
		for _, a := range sum.ActionItems {
			b.WriteString("  - " + a + "\n")
		}
	}

	fmt.Fprintf(&b, "\n%s %s\n",
		labelStyle.Render("Sentiment:"), strings.ToUpper(string(sum.Sentiment)))

	return boxStyle.Render(b.String())
}

// renderDraftPreview renders a candidate reply for the reviewer. round
// is 1-based; rounds past the first indicate a refined draft.
func renderDraftPreview(msg model.Message, draft model.Draft, round int) string {
	var b strings.Builder

	header := "DRAFT REPLY"
	if round > 1 {
		header = fmt.Sprintf("DRAFT REPLY (round %d)", round)
	}
	b.WriteString(titleStyle.Render(header) + "\n\n")

	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("To:"), msg.Sender)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Subject:"), draft.Subject)
	fmt.Fprintf(&b, "%s %s  %s %.0f%%\n\n",
		labelStyle.Render("Tone:"), strings.ToUpper(string(draft.Tone)),
		labelStyle.Render("Confidence:"), draft.Confidence*100,
	)

	b.WriteString(draft.Body + "\n")

	return boxStyle.Render(b.String())
}

// renderFollowUp renders one due follow-up line.
func renderFollowUp(fu model.FollowUp) string {
	return fmt.Sprintf("%s %s\n  %s %s\n  %s %s  %s %s",
		labelStyle.Render("Subject:"), fu.Subject,
		labelStyle.Render("From:"), fu.Sender,
		labelStyle.Render("Due:"), fu.DueAt.Format("2006-01-02"),
		labelStyle.Render("Priority:"), strings.ToUpper(string(fu.Priority)),
	)
}
