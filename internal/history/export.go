// Package history exports and searches the room's message history.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diogo/roomchat/internal/models"
)

// ExportFormat represents the format for exporting the room
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseFormat accepts the names of the export formats
func ParseFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(name) {
	case "md", "markdown":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use markdown or json)", name)
	}
}

// ExportOptions configures how the room is exported
type ExportOptions struct {
	Format ExportFormat
	// Title heads the markdown export
	Title string
	// IncludeImages keeps the inline image data; otherwise images are
	// exported as their caption only
	IncludeImages bool
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format: ExportFormatMarkdown,
		Title:  "roomchat",
	}
}

// Export renders msgs in the requested format
func Export(msgs []models.Message, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatJSON:
		return ExportJSON(msgs, opts)
	case ExportFormatMarkdown, "":
		return []byte(ExportMarkdown(msgs, opts)), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", opts.Format)
	}
}

// ExportMarkdown renders msgs as a markdown transcript
func ExportMarkdown(msgs []models.Message, opts ExportOptions) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(opts.Title)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("**Messages:** %d\n", len(msgs)))
	if len(msgs) > 0 {
		first, last := msgs[0].CreatedAt, msgs[len(msgs)-1].CreatedAt
		if !first.IsZero() {
			sb.WriteString("**From:** ")
			sb.WriteString(first.Format("2006-01-02 15:04:05"))
			sb.WriteString("\n")
		}
		if !last.IsZero() {
			sb.WriteString("**To:** ")
			sb.WriteString(last.Format("2006-01-02 15:04:05"))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n---\n\n")

	for i, msg := range msgs {
		user := msg.User
		if user == "" {
			user = "unknown"
		}

		sb.WriteString("## ")
		sb.WriteString(user)
		if !msg.CreatedAt.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.CreatedAt.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		if msg.IsImage() {
			if opts.IncludeImages && msg.ImageURL != "" {
				sb.WriteString("![")
				sb.WriteString(msg.Text)
				sb.WriteString("](")
				sb.WriteString(msg.ImageURL)
				sb.WriteString(")")
			} else {
				sb.WriteString("*[image]* ")
				sb.WriteString(msg.Text)
			}
		} else {
			sb.WriteString(msg.Text)
		}
		sb.WriteString("\n")

		// Separator between messages (except last)
		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	SenderUID string    `json:"senderUid,omitempty"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type exportRoom struct {
	Title      string          `json:"title"`
	ExportedAt time.Time       `json:"exported_at"`
	Messages   []exportMessage `json:"messages"`
}

// ExportJSON renders msgs as an indented JSON document
func ExportJSON(msgs []models.Message, opts ExportOptions) ([]byte, error) {
	export := exportRoom{
		Title:      opts.Title,
		ExportedAt: time.Now().UTC(),
		Messages:   make([]exportMessage, len(msgs)),
	}
	for i, msg := range msgs {
		export.Messages[i] = exportMessage{
			ID:        msg.ID,
			User:      msg.User,
			SenderUID: msg.SenderUID,
			Type:      string(msg.Type),
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
		}
		if opts.IncludeImages {
			export.Messages[i].ImageURL = msg.ImageURL
		}
	}
	return json.MarshalIndent(export, "", "  ")
}

// SearchResult is one message matching a search
type SearchResult struct {
	Message      models.Message
	MatchSnippet string // Snippet where the term was found
	MatchField   string // "user" or "text"
	Index        int    // position in the searched list
}

// Search finds messages whose sender or text contains query,
// case-insensitively. Image data is never searched.
func Search(msgs []models.Message, query string) []SearchResult {
	queryLower := strings.ToLower(query)
	if queryLower == "" {
		return nil
	}

	var results []SearchResult
	for i, msg := range msgs {
		switch {
		case strings.Contains(strings.ToLower(msg.Text), queryLower):
			results = append(results, SearchResult{
				Message:      msg,
				MatchSnippet: extractSnippet(msg.Text, query, 80),
				MatchField:   "text",
				Index:        i,
			})
		case strings.Contains(strings.ToLower(msg.User), queryLower):
			results = append(results, SearchResult{
				Message:      msg,
				MatchSnippet: msg.User,
				MatchField:   "user",
				Index:        i,
			})
		}
	}
	return results
}

// extractSnippet extracts a snippet around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	idx := strings.Index(strings.ToLower(content), strings.ToLower(query))
	if idx == -1 {
		if len(content) > maxLen {
			return content[:maxLen] + "..."
		}
		return content
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(query) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(content) {
		end = len(content)
		start = max(end-maxLen, 0)
	}

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}

// FormatRelativeTime formats t relative to now, like "2h ago" or "yesterday"
func FormatRelativeTime(t time.Time, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d min ago", mins)
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
