package main

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
)

// printReport 终端渲染
func printReport(r *model.IntelReport) {
	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		WithFullWidth().
		Println("Travel intel: " + r.Country)
	pterm.Println(pterm.Gray(fmt.Sprintf("run %s • %s • %d items", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04 MST"), r.ItemCount())))
	pterm.Println()

	if r.IsNeutral() {
		pterm.Info.Println(r.Notice)
		return
	}

	for _, id := range categoryOrder(r) {
		pterm.DefaultSection.Println(id)
		items := r.Categories[id]
		if len(items) == 0 {
			pterm.Println(pterm.Gray("  nothing notable"))
			continue
		}
		bullets := make([]pterm.BulletListItem, 0, len(items)*2)
		for _, it := range items {
			bullets = append(bullets,
				pterm.BulletListItem{Level: 0, Text: it.Summary},
				pterm.BulletListItem{Level: 1, Text: pterm.LightBlue(it.Source), Bullet: "↳"},
			)
		}
		_ = pterm.DefaultBulletList.WithItems(bullets).Render()
	}
}

func printTrace(lines []string) {
	pterm.DefaultSection.Println("trace")
	for _, l := range lines {
		pterm.Println(pterm.Gray(l))
	}
}

func categoryOrder(r *model.IntelReport) []string {
	ids := make([]string, 0, len(r.Categories))
	for id := range r.Categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// htmlData 用于模板渲染的数据
type htmlData struct {
	Report     *model.IntelReport
	Categories []htmlCategory
	Trace      []string
}

type htmlCategory struct {
	ID    string
	Items []model.IntelItem
}

func writeHTML(path string, r *model.IntelReport, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return renderHTML(f, r, lines)
}

func renderHTML(w io.Writer, r *model.IntelReport, lines []string) error {
	t, err := template.New("report").Funcs(template.FuncMap{"title": title}).Parse(htmlTpl)
	if err != nil {
		return err
	}
	data := htmlData{Report: r, Trace: lines}
	for _, id := range categoryOrder(r) {
		data.Categories = append(data.Categories, htmlCategory{ID: id, Items: r.Categories[id]})
	}
	return t.Execute(w, data)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

const htmlTpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Travel Radar | {{.Report.Country}}</title>
    <style>
        :root { --primary-color: #2563eb; --bg-color: #f8fafc; --card-bg: #ffffff; --text-main: #1e293b; --text-secondary: #64748b; --border-color: #e2e8f0; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; background: var(--bg-color); color: var(--text-main); line-height: 1.6; margin: 0; padding: 20px; }
        .container { max-width: 900px; margin: 0 auto; }
        header { text-align: center; margin-bottom: 40px; }
        .meta { color: var(--text-secondary); }
        .notice { background: #eff6ff; border-left: 4px solid var(--primary-color); padding: 16px; border-radius: 8px; }
        .card { background: var(--card-bg); border-radius: 12px; padding: 24px; margin-bottom: 30px; border: 1px solid var(--border-color); }
        .card h2 { margin-top: 0; }
        .empty { color: var(--text-secondary); }
        .source a { color: var(--primary-color); text-decoration: none; font-size: 0.9rem; }
        details { color: var(--text-secondary); font-size: 0.85rem; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Travel Radar: {{.Report.Country}}</h1>
            <div class="meta">{{.Report.GeneratedAt.Format "2006-01-02 15:04 MST"}} • {{len .Report.Sources}} sources</div>
        </header>

        {{if .Report.Notice}}<div class="notice">{{.Report.Notice}}</div>{{end}}

        {{range .Categories}}
        <div class="card">
            <h2>{{title .ID}}</h2>
            {{if .Items}}
            <ul>
                {{range .Items}}
                <li>{{.Summary}} <span class="source"><a href="{{.Source}}" target="_blank">{{.Source}}</a></span></li>
                {{end}}
            </ul>
            {{else}}
            <p class="empty">Nothing notable found.</p>
            {{end}}
        </div>
        {{end}}

        {{if .Trace}}
        <details>
            <summary>Execution trace</summary>
            <pre>{{range .Trace}}{{.}}
{{end}}</pre>
        </details>
        {{end}}
    </div>
</body>
</html>
`

// printQueries 按主题列出来源范围与将要发出的查询
func printQueries(w io.Writer, cats []model.Category, qs []model.SearchQuery) {
	byID := make(map[string]string, len(qs))
	for _, q := range qs {
		byID[q.Category.ID] = q.Text
	}
	for _, c := range cats {
		scopes := make([]string, len(c.Scopes))
		for i, s := range c.Scopes {
			scopes[i] = string(s)
		}
		fmt.Fprintf(w, "%-12s %-18s %s\n", c.ID, strings.Join(scopes, ","), byID[c.ID])
	}
}
