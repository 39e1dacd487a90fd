package inbound

import (
	"net/url"
	"sort"
	"strings"
)

const StateParameter = "state"

// Redirect is what the bank app sent back to the host's callback URI.
type Redirect struct {
	State      string
	Parameters map[string]string
}

// ParseRedirect reads a callback URL. Only the first value of a repeated
// parameter is kept and state is lifted out of Parameters.
func ParseRedirect(rawURL string) (Redirect, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Redirect{}, inboundBadInput("inbound: redirect url is required", nil)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Redirect{}, inboundWrapBadInput(err, "inbound: parse redirect url")
	}
	return RedirectFromValues(parsed.Query())
}

// RedirectFromValues builds a Redirect from already decoded query or form
// values.
func RedirectFromValues(values url.Values) (Redirect, error) {
	redirect := Redirect{Parameters: make(map[string]string, len(values))}
	for key, entries := range values {
		if len(entries) == 0 {
			continue
		}
		if key == StateParameter {
			redirect.State = strings.TrimSpace(entries[0])
			continue
		}
		redirect.Parameters[key] = entries[0]
	}
	if redirect.State == "" {
		return Redirect{}, inboundBadInput("inbound: redirect state is required", map[string]any{
			"parameters": parameterNames(redirect.Parameters),
		})
	}
	return redirect, nil
}

func parameterNames(parameters map[string]string) []string {
	names := make([]string, 0, len(parameters))
	for name := range parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
