package domain

// ToolOption describes one input tool for the selector UI.
type ToolOption struct {
	ID          Tool   `json:"id"`
	Label       string `json:"label"`
	Icon        string `json:"icon,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Description string `json:"description,omitempty"`
}

// FormatOption describes one output format with its display accent.
type FormatOption struct {
	ID       Format `json:"id"`
	Label    string `json:"label"`
	Accent   string `json:"accent"`
	Gradient string `json:"gradient"`
}
