package artifact

import (
	"fmt"

	"golang.org/x/net/html"
)

const harnessTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <script src="https://unpkg.com/react@18/umd/react.development.js"></script>
    <script src="https://unpkg.com/react-dom@18/umd/react-dom.development.js"></script>
    <script src="https://unpkg.com/@babel/standalone/babel.min.js"></script>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body>
    <div id="root"></div>
    <script type="text/babel">
%s
        ReactDOM.render(React.createElement(typeof App !== 'undefined' ? App : (() => React.createElement('div', null, 'Component not found'))), document.getElementById('root'));
    </script>
</body>
</html>
`

// WrapComponent embeds a component definition in a standalone page that loads
// React, ReactDOM, Babel and Tailwind from public CDNs and mounts App into #root.
func WrapComponent(title, source string) string {
	if title == "" {
		title = "React Component"
	}
	return fmt.Sprintf(harnessTemplate, html.EscapeString(title), source)
}
