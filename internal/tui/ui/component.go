package ui

// MenuHint is one "<key> description" entry of the header menu.
type MenuHint struct {
	Key         string
	Description string
	// Numeric marks digit shortcuts, which get their own color.
	Numeric bool
}

// Component is a page of the shell. Title goes into the breadcrumbs and
// Hints into the header menu while the page is on top.
type Component interface {
	Name() string
	Title() string
	Hints() []MenuHint
}
