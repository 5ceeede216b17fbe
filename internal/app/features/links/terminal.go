// internal/app/features/links/terminal.go
package links

import (
	"html/template"
	"net/http"
)

// terminalTmpl is the plain page shown when a participant re-opens a
// link whose interview already completed. No redirect: redirecting to
// the engine again would invite a redirect loop on a dead token.
var terminalTmpl = template.Must(template.New("terminal").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Interview complete</title>
</head>
<body>
  <h1>This interview has already been completed</h1>
  <p>Thank you for participating in {{.StudyTitle}}. Each interview link
  can only be used once, and our records show this one has already been
  finished.</p>
  <p>If you believe this is an error, please contact the research team
  that sent you the link.</p>
</body>
</html>
`))

// renderTerminalPage answers 400: re-opening a spent link is a client
// error, even though the page itself stays friendly.
func renderTerminalPage(w http.ResponseWriter, studyTitle string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_ = terminalTmpl.Execute(w, struct{ StudyTitle string }{StudyTitle: studyTitle})
}
