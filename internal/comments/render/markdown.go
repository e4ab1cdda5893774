package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/entity"
)

// Markdown renders an assembled thread into the text report handed back to
// the caller. The layout keeps one block per comment so long threads stay
// readable when truncated.
type Markdown struct {
	tmpl *template.Template
}

func NewMarkdown() *Markdown {
	tmpl := template.New("report").Funcs(template.FuncMap{
		"ts":        timestamp,
		"header":    commentHeader,
		"quote":     blockquote,
		"replyline": replyLine,
	})
	return &Markdown{tmpl: template.Must(tmpl.Parse(reportTemplate))}
}

func (m *Markdown) Render(thread entity.Thread) (string, error) {
	var buf bytes.Buffer
	if err := m.tmpl.Execute(&buf, newReportData(thread)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const reportTemplate = `# Comments: {{ .Video.Title }}

- Video: {{ .Video.BVid }} (av{{ .Video.Aid }}) by {{ .Video.Owner }}
- Comments: {{ .Info.AllCount }} total, {{ .Info.Count }} top-level
- Page: {{ .Info.Num }} of {{ .TotalPages }}, sorted by {{ .Sort }}
- Fetched: {{ .FetchedAt }}
{{ range .Pinned }}
---

[pinned] {{ header . }}

{{ quote .Message }}
{{ end }}
{{- if not .Comments }}
---

No comments on this page.
{{ end }}
{{- range .Comments }}
---

{{ header . }}

{{ quote .Message }}
{{- range .Replies }}
- {{ replyline . }}
{{- end }}
{{- if .RepliesFailed }}
- (replies unavailable)
{{- end }}
{{ end }}`

// reportData flattens the thread for the template. Pinned is a zero-or-one
// slice so the comment block renders through the same pipeline.
type reportData struct {
	Video      entity.Video
	Sort       entity.Sort
	Info       entity.PageInfo
	TotalPages int64
	FetchedAt  string
	Pinned     []entity.Comment
	Comments   []entity.Comment
}

func newReportData(thread entity.Thread) reportData {
	data := reportData{
		Video:      thread.Video,
		Sort:       thread.Sort,
		Info:       thread.Page.Info,
		TotalPages: totalPages(thread.Page.Info),
		FetchedAt:  timestamp(thread.FetchedAt),
		Comments:   thread.Page.Comments,
	}
	if thread.Page.Pinned != nil {
		data.Pinned = []entity.Comment{*thread.Page.Pinned}
	}
	return data
}

func totalPages(info entity.PageInfo) int64 {
	if info.Size <= 0 {
		return 1
	}
	pages := (info.Count + int64(info.Size) - 1) / int64(info.Size)
	if pages < 1 {
		return 1
	}
	return pages
}

func timestamp(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04") + " UTC"
}

func commentHeader(c entity.Comment) string {
	header := fmt.Sprintf("**%s** Lv%d | %d likes | %s", c.Author.Name, c.Author.Level, c.Likes, timestamp(c.CreatedAt))
	if c.ReplyCount > 0 {
		header += fmt.Sprintf(" | %d replies", c.ReplyCount)
	}
	return header
}

// blockquote prefixes every message line so multi-line comments stay inside
// one quoted block.
func blockquote(message string) string {
	lines := strings.Split(strings.TrimRight(message, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

// replyLine renders a nested reply as a single bullet; embedded newlines
// would otherwise break out of the list.
func replyLine(c entity.Comment) string {
	message := strings.ReplaceAll(c.Message, "\n", " ")
	return fmt.Sprintf("**%s** Lv%d: %s", c.Author.Name, c.Author.Level, message)
}
