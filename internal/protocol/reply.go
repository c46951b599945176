package protocol

import "github.com/beevik/etree"

// Daemon error strings with a dedicated classification. Anything else
// under an <error> tag falls back to DataParse carrying the text.
const (
	errTextUnauthorized    = "unauthorized"
	errTextMissingAuth     = "Missing authenticator"
	errTextMissingURL      = "Missing URL"
	errTextAlreadyAttached = "Already attached to project"
)

// statusFallback is reported when a <status> element carries no
// parseable integer.
const statusFallback = 9999

// VerifyReply classifies the control elements of one reply in
// document order. It returns whether a <success/> marker was seen;
// the first terminal control element wins. A <success/> does not
// short-circuit, since a reply may carry both success and payload.
func VerifyReply(children []*etree.Element) (bool, error) {
	success := false
	for _, node := range children {
		switch node.Tag {
		case "success":
			success = true
		case "status":
			code, ok := IntContent(node)
			if !ok {
				code = statusFallback
			}
			return success, NewStatus(int(code))
		case "unauthorized":
			return success, New(KindAuth, "daemon refused credentials")
		case "error":
			text, ok := AnyText(node)
			if !ok {
				return success, New(KindDataParse, "daemon error with no text")
			}
			return success, classifyErrorText(text)
		}
	}
	return success, nil
}

func classifyErrorText(text string) *Error {
	switch text {
	case errTextUnauthorized, errTextMissingAuth:
		return New(KindAuth, text)
	case errTextMissingURL:
		return New(KindInvalidURL, text)
	case errTextAlreadyAttached:
		return New(KindAlreadyAttached, text)
	default:
		return New(KindDataParse, text)
	}
}
