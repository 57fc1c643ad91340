package llm

import (
	"fmt"
	"strings"
)

func chunkSummaryPrompt(chunkText, priorContext string) string {
	var sb strings.Builder
	sb.WriteString("You are summarizing a meeting transcript excerpt.\n")
	if strings.TrimSpace(priorContext) != "" {
		sb.WriteString("\nSummary of the discussion so far:\n")
		sb.WriteString(strings.TrimSpace(priorContext))
		sb.WriteString("\n")
	}
	sb.WriteString("\nTranscript excerpt:\n")
	sb.WriteString(chunkText)
	sb.WriteString("\n\nWrite a concise summary of the excerpt above. ")
	sb.WriteString("Cover the topics discussed, decisions made, and action items. ")
	sb.WriteString("Do not repeat the earlier summary; continue from it. ")
	sb.WriteString("Respond with the summary only.")
	return sb.String()
}

func mergeSummariesPrompt(summaries []string) string {
	var sb strings.Builder
	sb.WriteString("The following are sequential summaries of consecutive parts of one meeting.\n\n")
	for i, s := range summaries {
		fmt.Fprintf(&sb, "Part %d:\n%s\n\n", i+1, s)
	}
	sb.WriteString("Combine them into a single coherent meeting summary in markdown. ")
	sb.WriteString("Use sections for key topics, decisions, and action items. ")
	sb.WriteString("Remove duplication between parts. Respond with the summary only.")
	return sb.String()
}

func titlePrompt(transcript string) string {
	var sb strings.Builder
	sb.WriteString("Meeting transcript:\n")
	sb.WriteString(transcript)
	sb.WriteString("\n\nWrite a short descriptive title for this meeting, at most eight words. ")
	sb.WriteString("Start the title with one fitting emoji. ")
	sb.WriteString("Respond with the title only, no quotes.")
	return sb.String()
}
