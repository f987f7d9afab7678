// Package cards describes the add-on screens as JSON card definitions the
// host renders, and the response envelopes that carry them.
package cards

// Action ids dispatched back to the service by the host.
const (
	ActionOpen         = "open"
	ActionSend         = "send"
	ActionSendAgain    = "send_again"
	ActionAutocomplete = "autocomplete"
	ActionAuthCheck    = "auth_check"
)

// Form field names.
const (
	FieldChannel = "channel"
	FieldComment = "comment"
)

// Card is one screen.
type Card struct {
	Header   *Header   `json:"header,omitempty"`
	Sections []Section `json:"sections"`
}

// Header is the card title bar.
type Header struct {
	Title string `json:"title"`
}

// Section groups widgets.
type Section struct {
	Widgets []Widget `json:"widgets"`
}

// Widget holds exactly one of its fields.
type Widget struct {
	TextInput  *TextInput  `json:"textInput,omitempty"`
	KeyValue   *KeyValue   `json:"keyValue,omitempty"`
	TextButton *TextButton `json:"textButton,omitempty"`
}

// TextInput is a form field.
type TextInput struct {
	Name              string  `json:"name"`
	Title             string  `json:"title"`
	Multiline         bool    `json:"multiline,omitempty"`
	SuggestionsAction *Action `json:"suggestionsAction,omitempty"`
}

// KeyValue shows a labelled read-only value.
type KeyValue struct {
	TopLabel string `json:"topLabel"`
	Content  string `json:"content"`
}

// TextButton triggers OnClick.
type TextButton struct {
	Text    string `json:"text"`
	OnClick Action `json:"onClick"`
}

// Action names the event the host sends back.
type Action struct {
	Function string `json:"function"`
}

// FormInput is the submitted form.
type FormInput struct {
	Channel string `json:"channel"`
	Comment string `json:"comment,omitempty"`
}
