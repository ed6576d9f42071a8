package webhook

// Client callbacks are a round trip: a handler returns a Result carrying a
// CallbackRequest, the client shows the dialog, then re-invokes the same
// endpoint with the CallbackResult attached to the context.

type CallbackType string

const (
	CallbackStringInput CallbackType = "STRING_INPUT"
	CallbackOKPopup     CallbackType = "DISPLAY_OK_POPUP"
	CallbackErrorPopup  CallbackType = "DISPLAY_ERROR_POPUP"
	CallbackListDialog  CallbackType = "LIST_DIALOG"
	CallbackYesNoDialog CallbackType = "YES_NO_DIALOG"
)

type CallbackRequest struct {
	Type      CallbackType `json:"callbackType"`
	Title     string       `json:"title,omitempty"`
	Message   string       `json:"message,omitempty"`
	FieldName string       `json:"fieldName,omitempty"`

	// Options populates a list dialog; MultiSelect allows more than one.
	Options     []string `json:"options,omitempty"`
	MultiSelect bool     `json:"multiSelect,omitempty"`
}

type CallbackResult struct {
	Type      CallbackType `json:"callbackType"`
	FieldName string       `json:"fieldName,omitempty"`
	Value     string       `json:"value,omitempty"`
	Cancelled bool         `json:"cancelled,omitempty"`

	// SelectedOptions carries the list-dialog choice; Confirmed carries the
	// yes/no answer.
	SelectedOptions []string `json:"selectedOptions,omitempty"`
	Confirmed       bool     `json:"confirmed,omitempty"`
}

// NewStringInputRequest prompts the user for a single text value.
func NewStringInputRequest(title, message, fieldName string) *Result {
	return &Result{
		Passed: true,
		ClientCallbackRequest: &CallbackRequest{
			Type:      CallbackStringInput,
			Title:     title,
			Message:   message,
			FieldName: fieldName,
		},
	}
}

// NewOKPopupResult passes and shows an informational popup.
func NewOKPopupResult(title, message string) *Result {
	return &Result{
		Passed: true,
		ClientCallbackRequest: &CallbackRequest{
			Type:    CallbackOKPopup,
			Title:   title,
			Message: message,
		},
	}
}

// NewErrorPopupResult fails and shows an error popup.
func NewErrorPopupResult(message string) *Result {
	return &Result{
		Passed: false,
		ClientCallbackRequest: &CallbackRequest{
			Type:    CallbackErrorPopup,
			Message: message,
		},
	}
}

// NewListDialogRequest prompts the user to pick one option from a list.
func NewListDialogRequest(title string, options []string) *Result {
	return &Result{
		Passed: true,
		ClientCallbackRequest: &CallbackRequest{
			Type:    CallbackListDialog,
			Title:   title,
			Options: options,
		},
	}
}

// NewYesNoRequest asks the user to confirm or decline.
func NewYesNoRequest(title, message string) *Result {
	return &Result{
		Passed: true,
		ClientCallbackRequest: &CallbackRequest{
			Type:    CallbackYesNoDialog,
			Title:   title,
			Message: message,
		},
	}
}
