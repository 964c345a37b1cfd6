package view

import (
	"bytes"
	"html/template"
)

// ErrorPageData provides the dynamic fields of the redirect error page.
type ErrorPageData struct {
	Title   string
	Heading string
	Message string
}

var errorPageTmpl = template.Must(template.New("error_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{.Title}}</title>
	<style>
		body {
			font-family: system-ui, -apple-system, sans-serif;
			display: flex;
			align-items: center;
			justify-content: center;
			min-height: 100vh;
			margin: 0;
			background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
		}
		.container {
			background: white;
			padding: 2rem;
			border-radius: 1rem;
			text-align: center;
			max-width: 400px;
		}
		h1 { color: #dc2626; margin: 0 0 1rem 0; }
		p { color: #6b7280; margin: 0 0 1.5rem 0; }
		a {
			display: inline-block;
			padding: 0.75rem 1.5rem;
			background: #667eea;
			color: white;
			text-decoration: none;
			border-radius: 0.5rem;
			font-weight: 600;
		}
	</style>
</head>
<body>
	<div class="container">
		<h1>{{.Heading}}</h1>
		<p>{{.Message}}</p>
		<a href="/">Go to Homepage</a>
	</div>
</body>
</html>
`))

// RenderNotFoundPage renders the page served when a short link is missing or
// has been deleted.
func RenderNotFoundPage() (string, error) {
	return renderErrorPage(ErrorPageData{
		Title:   "Link Not Found",
		Heading: "404 - Link Not Found",
		Message: "This short link does not exist or has been deleted.",
	})
}

// RenderServerErrorPage renders the page served on unexpected store failures.
func RenderServerErrorPage() (string, error) {
	return renderErrorPage(ErrorPageData{
		Title:   "Error",
		Heading: "500 - Internal Server Error",
		Message: "Something went wrong. Please try again later.",
	})
}

func renderErrorPage(data ErrorPageData) (string, error) {
	var buf bytes.Buffer
	if err := errorPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
