package errors

import "errors"

// Alert is the user-facing form of an error: a title and one line of text
type Alert struct {
	Title   string
	Message string
}

// Alerts shown by the chat screen
var (
	AlertSendFailed       = Alert{Title: "Send failed", Message: "Check your internet connection"}
	AlertPermissionDenied = Alert{Title: "Permission denied", Message: "The app needs gallery access."}
	AlertNoImageData      = Alert{Title: "Failed", Message: "Could not read the image data."}
	AlertImageSaveFailed  = Alert{Title: "Failed", Message: "Could not save the image to the database."}
)

// IsZero reports whether the alert is empty
func (a Alert) IsZero() bool {
	return a.Title == "" && a.Message == ""
}

// AlertFor maps an error to the alert that names the failed action.
// Errors that carry no user-facing meaning get a generic alert.
func AlertFor(err error) Alert {
	if err == nil {
		return Alert{}
	}

	var sendErr *SendError
	switch {
	case errors.As(err, &sendErr):
		if sendErr.Action == ActionSendImage {
			return AlertImageSaveFailed
		}
		return AlertSendFailed
	case errors.Is(err, ErrPermissionDenied):
		return AlertPermissionDenied
	case errors.Is(err, ErrNoImageData):
		return AlertNoImageData
	default:
		return Alert{Title: "Error", Message: err.Error()}
	}
}
