// Package event defines the push wire contract and per-event payload
// shapes.
//
// Every push message is an envelope {event, payload}. Payloads are kept
// as raw JSON until dispatch; a Schema maps event names to decoders so
// known payload shapes are validated at the boundary instead of drifting
// silently between producer and subscriber. Events without a registered
// decoder pass through unvalidated.
package event
