// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vgirpc

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
)

// --- HTML templates ---

const pageStyle = `<style>
  body { font-family: system-ui, -apple-system, sans-serif; max-width: 900px;
         margin: 0 auto; padding: 40px 20px 0; color: #2c2c1e; background: #faf8f0; }
  h1 { color: #2d5016; margin-bottom: 4px; }
  code { font-family: monospace; background: #f0ece0; padding: 2px 6px;
         border-radius: 3px; font-size: 0.9em; }
  a { color: #2d5016; }
  .meta { color: #6b6b5a; font-size: 0.9em; }
  .card { border: 1px solid #f0ece0; border-radius: 8px; padding: 16px 20px;
          margin-bottom: 14px; background: #fff; }
  .method-name { font-family: monospace; font-size: 1.1em; font-weight: 600; color: #2d5016; }
  .doc { color: #4a4a3a; margin: 8px 0; }
  table { width: 100%%; border-collapse: collapse; font-size: 0.9em; }
  th { text-align: left; padding: 6px 10px; background: #f0ece0; }
  td { padding: 6px 10px; border-bottom: 1px solid #f0ece0; }
  .no-params { color: #6b6b5a; font-style: italic; font-size: 0.9em; }
</style>`

const notFoundHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>404 &mdash; vgi-rpc endpoint</title>
` + pageStyle + `
</head>
<body>
<h1>404 &mdash; Not Found</h1>
<p>This is a <code>vgi-rpc</code> service endpoint%s.</p>
<p>RPC methods are available under <code>%s/&lt;method&gt;</code>.</p>
</body>
</html>`

const landingHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s &mdash; vgi-rpc</title>
` + pageStyle + `
</head>
<body>
<h1>%s</h1>
<p class="meta">Powered by <code>vgi-rpc</code> (Go) &middot; server <code>%s</code></p>
<p>%s</p>
</body>
</html>`

const describeHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s API Reference &mdash; vgi-rpc</title>
` + pageStyle + `
</head>
<body>
<h1>%s</h1>
<p class="meta">API Reference &middot; server <code>%s</code> &middot; %d methods%s</p>
%s
</body>
</html>`

// --- Page builders ---

func buildNotFoundHTML(prefix, protocolName string) []byte {
	var fragment string
	if protocolName != "" {
		fragment = " serving <strong>" + html.EscapeString(protocolName) + "</strong>"
	}
	return []byte(fmt.Sprintf(notFoundHTMLTemplate, fragment, html.EscapeString(prefix)))
}

func buildLandingHTML(protocolName, serverID, describePath, repoURL string) []byte {
	links := fmt.Sprintf(`<a href="%s">View service API</a>`, html.EscapeString(describePath))
	if repoURL != "" {
		links += fmt.Sprintf(` &middot; <a href="%s">Source repository</a>`, html.EscapeString(repoURL))
	}
	return []byte(fmt.Sprintf(landingHTMLTemplate,
		html.EscapeString(protocolName), // <title>
		html.EscapeString(protocolName), // <h1>
		html.EscapeString(serverID),
		links,
	))
}

func buildDescribeHTML(s *Server, protocolName, repoURL string) []byte {
	var repoLink string
	if repoURL != "" {
		repoLink = fmt.Sprintf(` &middot; <a href="%s">Source repository</a>`, html.EscapeString(repoURL))
	}

	methods := s.Describe()
	var cards strings.Builder
	for _, d := range methods {
		buildMethodCard(&cards, d, s.methods[d.Name])
	}

	return []byte(fmt.Sprintf(describeHTMLTemplate,
		html.EscapeString(protocolName),
		html.EscapeString(protocolName),
		html.EscapeString(s.serverID),
		len(methods),
		repoLink,
		cards.String(),
	))
}

func buildMethodCard(w *strings.Builder, d MethodDescription, info *methodInfo) {
	w.WriteString(`<div class="card">`)
	fmt.Fprintf(w, `<span class="method-name">%s</span>`, html.EscapeString(d.Name))
	if d.Doc != "" {
		fmt.Fprintf(w, `<p class="doc">%s</p>`, html.EscapeString(d.Doc))
	}

	if len(d.ParamTypes) == 0 {
		w.WriteString(`<p class="no-params">No parameters</p>`)
	} else {
		names := make([]string, 0, len(d.ParamTypes))
		for _, f := range info.ParamsSchema.Fields() {
			names = append(names, f.Name)
		}
		if len(names) != len(d.ParamTypes) {
			names = names[:0]
			for name := range d.ParamTypes {
				names = append(names, name)
			}
			sort.Strings(names)
		}

		w.WriteString(`<table><tr><th>Parameter</th><th>Type</th><th>Default</th></tr>`)
		for _, name := range names {
			defaultStr := "&mdash;"
			if dv, ok := d.ParamDefaults[name]; ok {
				b, _ := json.Marshal(dv)
				defaultStr = html.EscapeString(string(b))
			}
			fmt.Fprintf(w, `<tr><td><code>%s</code></td><td><code>%s</code></td><td>%s</td></tr>`,
				html.EscapeString(name), html.EscapeString(d.ParamTypes[name]), defaultStr)
		}
		w.WriteString(`</table>`)
	}

	if d.ResultType != "" {
		fmt.Fprintf(w, `<p class="meta">Returns <code>%s</code></p>`, html.EscapeString(d.ResultType))
	}
	w.WriteString("</div>\n")
}

// --- HTTP handlers ---

func (h *HttpServer) handleLandingPage(w http.ResponseWriter, _ *http.Request) {
	writeHTML(w, http.StatusOK, h.landingHTML)
}

func (h *HttpServer) handleDescribePage(w http.ResponseWriter, _ *http.Request) {
	writeHTML(w, http.StatusOK, h.describeHTML)
}

func (h *HttpServer) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeHTML(w, http.StatusNotFound, h.notFoundHTML)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
