package order

// Document is a purchase-order file attached to the session (stored by reference only)
type Document struct {
	Name string `json:"name" mapstructure:"name"`
	Path string `json:"path" mapstructure:"path"`
	Type string `json:"type,omitempty" mapstructure:"type"`
}
