package report

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

// htmlReportTemplate mirrors the crawler's original HTML report: a
// meta block of summary fields followed by one table per registry.
// html/template escapes every field automatically, so URLs and error
// strings reaching the page from crawled content can't inject markup.
const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Broken Links Crawler Report</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            padding: 20px;
            background-color: #f9f9f9;
        }
        h1 { color: #333; }
        h2 { color: #333; margin-top: 30px; }
        table {
            width: 100%;
            border-collapse: collapse;
            margin-top: 20px;
            table-layout: fixed;
        }
        th, td {
            border: 1px solid #ccc;
            padding: 8px;
            text-align: left;
            vertical-align: top;
            overflow-wrap: break-word;
        }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .meta { margin-bottom: 20px; }
        .col-num { width: 4ch; }
        .col-url { max-width: 300px; word-break: break-word; }
        .col-depth { width: 6ch; }
        .col-status { width: 21ch; }
        .col-error { width: 24ch; }
    </style>
</head>
<body>
    <h1>Broken Links Crawler Report</h1>
    <div class="meta">
        <p><strong>Generated at:</strong> {{.GeneratedAt}}</p>
        <p><strong>Execution Time:</strong> {{.ElapsedStr}}</p>
        <p><strong>Target Url:</strong> <a href="{{.TargetURL}}" target="_blank" rel="noopener noreferrer">{{.TargetURL}}</a></p>
        <p><strong>Discovered URLs:</strong> {{.DiscoveredCount}}</p>
        <p><strong>Processed URLs:</strong> {{.ProcessedCount}}</p>
        <p><strong>Broken URLs:</strong> {{len .Broken}}</p>
        <p><strong>Fetch Errors:</strong> {{len .FetchErrors}}</p>
        <p><strong>Workers Used:</strong> {{.WorkersNum}}</p>
    </div>
    {{template "linkTable" .BrokenTable}}
    {{template "linkTable" .FetchErrorTable}}
</body>
</html>
{{define "linkTable"}}
    <h2>{{.Title}}</h2>
    <table>
        <thead>
            <tr>
                <th class="col-num">#</th>
                <th class="col-url">URL</th>
                <th class="col-depth">Depth</th>
                <th>Appeared In</th>
                <th class="col-status">Status</th>
                <th class="col-error">Error</th>
            </tr>
        </thead>
        <tbody>
        {{range $i, $link := .Links}}
            <tr>
                <td class="col-num">{{inc $i}}</td>
                <td class="col-url"><a href="{{$link.URL}}" target="_blank" rel="noopener noreferrer">{{$link.URL}}</a></td>
                <td class="col-depth">{{$link.Depth}}</td>
                <td><a href="{{$link.FoundOn}}" target="_blank" rel="noopener noreferrer">{{$link.FoundOn}}</a></td>
                <td class="col-status">{{$link.Status}}</td>
                <td class="col-error">{{$link.Error}}</td>
            </tr>
        {{else}}
            <tr><td colspan="6">None</td></tr>
        {{end}}
        </tbody>
    </table>
{{end}}
`

var htmlFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

type htmlTableData struct {
	Title string
	Links []linkRecord
}

// htmlPageData is the template's root value. It is built entirely by
// WriteHTML rather than passed a *Result directly, so the template
// never has to format a time.Duration or reach for toRecords itself.
type htmlPageData struct {
	TargetURL       string
	GeneratedAt     string
	ElapsedStr      string
	DiscoveredCount int
	ProcessedCount  int
	WorkersNum      int
	Broken          []linkRecord
	FetchErrors     []linkRecord
	BrokenTable     htmlTableData
	FetchErrorTable htmlTableData
}

// WriteHTML renders res as a standalone HTML report to w.
func WriteHTML(w io.Writer, res *Result, generatedAt time.Time) error {
	tmpl, err := template.New("report").Funcs(htmlFuncs).Parse(htmlReportTemplate)
	if err != nil {
		return fmt.Errorf("parse html report template: %w", err)
	}

	broken := toRecords(res.Broken)
	fetchErrors := toRecords(res.FetchErrors)
	data := htmlPageData{
		TargetURL:       res.TargetURL,
		GeneratedAt:     generatedAt.Format("2006-01-02 15:04:05 MST"),
		ElapsedStr:      FormatElapsed(res.Elapsed),
		DiscoveredCount: res.DiscoveredCount,
		ProcessedCount:  res.ProcessedCount,
		WorkersNum:      res.WorkersNum,
		Broken:          broken,
		FetchErrors:     fetchErrors,
		BrokenTable:     htmlTableData{Title: "Broken Links", Links: broken},
		FetchErrorTable: htmlTableData{Title: "Fetch Errors", Links: fetchErrors},
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute html report template: %w", err)
	}
	return nil
}
