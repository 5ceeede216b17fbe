// Package engine builds URLs for the external interview-conducting
// engine. The engine is a remote collaborator: participants are sent to
// its entry point with their access token, and it calls back to this
// service's handoff and completion endpoints at the callback base.
package engine

import (
	"net/url"
	"strings"
)

// EntryURL is the engine entry point carrying the access token and the
// callback base URL as query parameters.
func EntryURL(engineBaseURL, accessToken, callbackBaseURL string) string {
	q := url.Values{}
	q.Set("access_token", accessToken)
	q.Set("callback_base", callbackBaseURL)
	return strings.TrimRight(engineBaseURL, "/") + "/session?" + q.Encode()
}
