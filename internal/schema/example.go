package schema

import "contentcms/internal/config"

// Example returns a small schema with a shared page template, a home page
// and a welcome email. It is served in development when no schema file is
// configured.
func Example(cfg config.Content) (*Schema, error) {
	return Build(cfg,
		NewModule("pages", "file-text",
			NewGroup("template", "Template").
				Image("banner", "Banner").
				HTML("header", "Header").
				HTML("footer", "Footer"),
			Page("home", "Home", "/").
				HTML("info", "Info", "#info").
				ImageWithAltText("banner", "Banner").
				ArrayOf("features", "Features", Element().
					Text("title", "Title").
					HTML("body", "Body")).
				PreviewTemplate(examplePreview),
		),
		NewModule("emails", "envelope",
			Email("home", "Home").
				HTML("info", "Info"),
		),
	)
}

const examplePreview = `{{ $tpl := content "pages.template" -}}
<html>
<head>{{ raw .RenderMetadataHTML }}</head>
<body>
<header>{{ raw ($tpl.HTML "header") }}</header>
{{ if .HasImage "banner" }}<img src="{{ .ImageURL "banner" }}" alt="{{ .ImageAltText "banner" }}">{{ end }}
<div id="info">{{ raw (.HTML "info") }}</div>
{{ range .ArrayOf "features" }}<section><h2>{{ .Text "title" }}</h2>{{ raw (.HTML "body") }}</section>
{{ end -}}
<footer>{{ raw ($tpl.HTML "footer") }}</footer>
</body>
</html>`
