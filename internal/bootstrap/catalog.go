package bootstrap

import "quicky/internal/domain"

var toolCatalog = []domain.ToolOption{
	{
		ID:          domain.ToolVideo,
		Label:       "Video",
		Icon:        "🎬",
		Placeholder: "Paste a YouTube link...",
		Description: "Summarize a video from its transcript.",
	},
	{
		ID:          domain.ToolBlog,
		Label:       "Blog",
		Icon:        "📰",
		Placeholder: "Paste an article URL...",
		Description: "Summarize a blog post or article.",
	},
	{
		ID:          domain.ToolText,
		Label:       "Text",
		Icon:        "✍️",
		Placeholder: "Paste raw text...",
		Description: "Summarize pasted text.",
	},
	{
		ID:          domain.ToolFile,
		Label:       "File",
		Icon:        "📄",
		Description: "Upload a PDF or Word document.",
	},
}

var formatCatalog = []domain.FormatOption{
	{ID: domain.FormatBullets, Label: "Bullet Points", Accent: "#667eea", Gradient: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)"},
	{ID: domain.FormatParagraphs, Label: "Paragraphs", Accent: "#f093fb", Gradient: "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)"},
	{ID: domain.FormatNotes, Label: "Quick Notes", Accent: "#4facfe", Gradient: "linear-gradient(135deg, #4facfe 0%, #00f2fe 100%)"},
	{ID: domain.FormatMindmap, Label: "Mind Map", Accent: "#43e97b", Gradient: "linear-gradient(135deg, #43e97b 0%, #38f9d7 100%)"},
	{ID: domain.FormatKeywords, Label: "Keywords", Accent: "#fa709a", Gradient: "linear-gradient(135deg, #fa709a 0%, #fee140 100%)"},
	{ID: domain.FormatSlides, Label: "Slides", Accent: "#a18cd1", Gradient: "linear-gradient(135deg, #a18cd1 0%, #fbc2eb 100%)"},
}

// Tools returns the input tool catalog for the selector UI.
func (a *App) Tools() []domain.ToolOption {
	out := make([]domain.ToolOption, len(toolCatalog))
	copy(out, toolCatalog)
	return out
}

// Formats returns the output format catalog with display accents.
func (a *App) Formats() []domain.FormatOption {
	out := make([]domain.FormatOption, len(formatCatalog))
	copy(out, formatCatalog)
	return out
}

// toolIDs lists catalog tool identifiers in declaration order.
func toolIDs() []string {
	out := make([]string, len(toolCatalog))
	for i, option := range toolCatalog {
		out[i] = string(option.ID)
	}
	return out
}

// formatIDs lists catalog format identifiers in declaration order.
func formatIDs() []string {
	out := make([]string, len(formatCatalog))
	for i, option := range formatCatalog {
		out[i] = string(option.ID)
	}
	return out
}
