// Package mason builds hypermedia JSON documents in the Mason format:
// entity fields at the top level plus @namespaces, @controls and, for
// failures, @error. Handlers assemble a Document, attach the controls for
// the valid follow-up actions, and hand it to the response writer.
package mason

// MediaType is the content type of every hypermedia response body.
const MediaType = "application/vnd.mason+json"

// Namespace is the prefix for application-specific link relations.
const Namespace = "inlibris"

// BasePath is the URL prefix under which every API route is mounted.
const BasePath = "/inlibris/api"

// Link-relation and profile URLs advertised in response documents.
const (
	LinkRelationsURL = "/inlibris/link-relations/"
	ErrorProfile     = "/profiles/error/"
	PatronProfile    = "/profiles/patron/"
	BookProfile      = "/profiles/book/"
	LoanProfile      = "/profiles/loan/"
	HoldProfile      = "/profiles/hold/"
)

// Control describes one valid follow-up HTTP action. Href is the only
// mandatory property; the rest are omitted from JSON when unset.
type Control struct {
	Href     string `json:"href"`
	Method   string `json:"method,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Title    string `json:"title,omitempty"`
	Schema   any    `json:"schema,omitempty"`
}

// Document is a Mason object under construction. Entity fields are set
// directly as map entries; the builder methods manage the @-prefixed ones.
type Document map[string]any

// New returns an empty document.
func New() Document {
	return Document{}
}

// NewItems returns a collection document with an empty ordered items list.
func NewItems() Document {
	return Document{"items": []Document{}}
}

// AppendItem adds an entry to the document's ordered items list.
func (d Document) AppendItem(item Document) {
	items, _ := d["items"].([]Document)
	d["items"] = append(items, item)
}

// AddNamespace registers a link-relation namespace prefix on the document.
func (d Document) AddNamespace(prefix, uri string) {
	namespaces, ok := d["@namespaces"].(map[string]any)
	if !ok {
		namespaces = map[string]any{}
		d["@namespaces"] = namespaces
	}
	namespaces[prefix] = map[string]any{"name": uri}
}

// AddControl attaches a named control to the document.
func (d Document) AddControl(name string, ctrl Control) {
	controls, ok := d["@controls"].(map[string]Control)
	if !ok {
		controls = map[string]Control{}
		d["@controls"] = controls
	}
	controls[name] = ctrl
}

// AddError attaches an @error element. Should only be set on the root
// document of a failure response.
func (d Document) AddError(title, details string) {
	messages := []string{}
	if details != "" {
		messages = append(messages, details)
	}
	d["@error"] = map[string]any{
		"@message":  title,
		"@messages": messages,
	}
}

// NewError builds a complete error document for the given request path:
// resource_url, the @error element, and the error profile control.
func NewError(resourceURL, title, details string) Document {
	d := Document{"resource_url": resourceURL}
	d.AddError(title, details)
	d.AddControl("profile", Control{Href: ErrorProfile})
	return d
}
