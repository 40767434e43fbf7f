// Package probe classifies the deployment environment to decide whether
// the push transport may be used at all. Some hosting environments strip
// or block long-lived WebSocket connections; in those the realtime layer
// must run on polling from the start.
//
// Classification happens once per Connect() call, not continuously.
package probe

import (
	"net/url"
	"os"
	"strconv"
)

// EnvForcePolling, when set to a truthy value, forces polling regardless
// of configuration.
const EnvForcePolling = "PROPSTREAM_FORCE_POLLING"

// Decision is the probe's verdict for one connect attempt.
type Decision struct {
	PushDisallowed bool
	Reason         string // human-readable, for logs and /status
}

// Classifier decides whether push is usable in this deployment.
type Classifier interface {
	Classify() Decision
}

// Func adapts a plain function to the Classifier interface.
type Func func() Decision

func (f Func) Classify() Decision { return f() }

// Inputs are the signals the default classifier consults.
type Inputs struct {
	ForcePolling bool                // config pin: realtime.force_polling
	WSURL        string              // configured push endpoint, empty = none
	Getenv       func(string) string // defaults to os.Getenv
}

// New returns the default classifier over the given inputs.
func New(in Inputs) Classifier {
	if in.Getenv == nil {
		in.Getenv = os.Getenv
	}
	return Func(func() Decision { return classify(in) })
}

func classify(in Inputs) Decision {
	if in.ForcePolling {
		return Decision{PushDisallowed: true, Reason: "polling forced by configuration"}
	}

	if v := in.Getenv(EnvForcePolling); v != "" {
		if truthy, err := strconv.ParseBool(v); err == nil && truthy {
			return Decision{PushDisallowed: true, Reason: "polling forced by " + EnvForcePolling}
		}
	}

	if in.WSURL == "" {
		return Decision{PushDisallowed: true, Reason: "no push endpoint configured"}
	}
	u, err := url.Parse(in.WSURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return Decision{PushDisallowed: true, Reason: "push endpoint is not a ws:// or wss:// URL"}
	}

	return Decision{}
}
