package cards

// Response is what an action handler returns. At most one field is set; an
// empty Response acknowledges the event without UI changes.
type Response struct {
	Universal             *UniversalActionResponse `json:"universal,omitempty"`
	Action                *ActionResponse          `json:"action,omitempty"`
	Suggestions           *SuggestionsResponse     `json:"suggestions,omitempty"`
	AuthorizationRequired *AuthorizationRequired   `json:"authorization_required,omitempty"`
}

// UniversalActionResponse replaces the add-on panel with Cards.
type UniversalActionResponse struct {
	Cards []Card `json:"displayAddOnCards"`
}

// ActionResponse moves within the card stack.
type ActionResponse struct {
	Navigation Navigation `json:"navigation"`
}

// Navigation pops to the root card, then pushes PushCard.
type Navigation struct {
	PopToRoot bool  `json:"popToRoot,omitempty"`
	PushCard  *Card `json:"pushCard,omitempty"`
}

// SuggestionsResponse fills an autocomplete dropdown.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// AuthorizationRequired asks the host to prompt for authorization.
type AuthorizationRequired struct {
	AuthorizationURL    string `json:"authorization_url"`
	ResourceDisplayName string `json:"resource_display_name"`
}

// DisplayCards shows cards as the add-on's root.
func DisplayCards(cards ...Card) Response {
	return Response{Universal: &UniversalActionResponse{Cards: cards}}
}

// PopToRootAndPush resets the stack to card.
func PopToRootAndPush(card Card) Response {
	return Response{Action: &ActionResponse{Navigation: Navigation{PopToRoot: true, PushCard: &card}}}
}

// Suggestions returns an autocomplete response. A nil list is sent as empty.
func Suggestions(names []string) Response {
	if names == nil {
		names = []string{}
	}
	return Response{Suggestions: &SuggestionsResponse{Suggestions: names}}
}

// AuthorizationPrompt returns the authorization-required response.
func AuthorizationPrompt(url, displayName string) Response {
	return Response{AuthorizationRequired: &AuthorizationRequired{
		AuthorizationURL:    url,
		ResourceDisplayName: displayName,
	}}
}

// IsEmpty reports whether r carries nothing.
func (r Response) IsEmpty() bool {
	return r.Universal == nil && r.Action == nil && r.Suggestions == nil && r.AuthorizationRequired == nil
}
