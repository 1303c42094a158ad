package source

// Page is a fetched upstream document.
type Page struct {
	URL    string
	Status int
	Body   string
}
