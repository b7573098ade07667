package i18n

var englishTranslations = map[string]string{
	// Slide defaults
	"slide.title_format":        "Slide %d",
	"slide.title_placeholder":   "Click to add title",
	"slide.content_placeholder": "Click to add content",
	"slide.copy_suffix":         " Copy",
	"slide.imported_title":      "Imported Slide",
	"slide.imported_content":    "Content imported from PowerPoint",

	// Export
	"export.success":         "Exported %s (%s)",
	"export.failed":          "Export failed: %s",
	"export.unknown_format":  "Unsupported export format: %s",
	"export.diagnostics":     "%d element(s) could not be exported exactly:",
	"export.handout_title":   "Presentation",
	"export.renderer_chrome": "Rendering slides with Chrome at %s",

	// Import
	"import.success":          "Successfully imported %d slides!",
	"import.failed":           "Import failed: %s",
	"import.unsupported_file": "Unsupported file format",
	"import.password_needed":  "This deck is encrypted, please provide a password",

	// Versions
	"version.saved":    "Saved %s of %s",
	"version.restored": "Restored %s",
	"version.none":     "No versions saved yet",

	// Info
	"info.slides":   "%d slides",
	"info.elements": "%d elements",
	"info.created":  "Created %s",
}
