package cards

// FormCard is the compose screen: channel (with suggestions), comment and a
// send button.
func FormCard() Card {
	return Card{
		Header: &Header{Title: "Send to Slack"},
		Sections: []Section{{
			Widgets: []Widget{
				{TextInput: &TextInput{
					Name:              FieldChannel,
					Title:             "Channel",
					SuggestionsAction: &Action{Function: ActionAutocomplete},
				}},
				{TextInput: &TextInput{
					Name:      FieldComment,
					Title:     "Comment",
					Multiline: true,
				}},
				{TextButton: &TextButton{
					Text:    "Send to Slack",
					OnClick: Action{Function: ActionSend},
				}},
			},
		}},
	}
}

// SentCard confirms a post. The comment row is shown only for a non-empty
// comment.
func SentCard(input FormInput) Card {
	widgets := []Widget{
		{KeyValue: &KeyValue{TopLabel: "Channel", Content: input.Channel}},
	}
	if input.Comment != "" {
		widgets = append(widgets, Widget{KeyValue: &KeyValue{TopLabel: "Comment", Content: input.Comment}})
	}
	widgets = append(widgets, Widget{TextButton: &TextButton{
		Text:    "Send to another Channel",
		OnClick: Action{Function: ActionSendAgain},
	}})

	return Card{
		Header:   &Header{Title: "Your message has been posted!"},
		Sections: []Section{{Widgets: widgets}},
	}
}
