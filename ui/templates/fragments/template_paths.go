// Package fragments provides template name constants for the page templates
package fragments

// Page templates, named by their file under ui/templates
const (
	LoginPage = "login.html"
	IndexPage = "index.html"
	HelpPage  = "help.html"
)

// Pages lists every page template the server must parse
var Pages = []string{LoginPage, IndexPage, HelpPage}
