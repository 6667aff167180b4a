// Package assets embeds the prompt templates sent to the language models.
//
// Prompts live as text files under prompts/ so they can be edited without
// touching Go code.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// IdeaPrompt asks a model for one brainrot character as a JSON object with
// idea_name, audio_words and image_description.
//
//go:embed prompts/idea.txt
var IdeaPrompt string

//go:embed prompts/selection.txt
var selectionTemplate string

// template.Must panics on a malformed template at startup, not at call time.
var selectionPromptTmpl = template.Must(template.New("selection").Parse(selectionTemplate))

// SelectionData is the dynamic data injected into the selection prompt.
type SelectionData struct {
	IdeaName   string
	SpokenText string
	Count      int
}

// RenderSelectionPrompt renders the best-candidate selection prompt.
func RenderSelectionPrompt(data SelectionData) string {
	var buf bytes.Buffer
	// Execution cannot fail for a plain struct with string and int fields.
	_ = selectionPromptTmpl.Execute(&buf, data)
	return buf.String()
}
