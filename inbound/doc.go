// Package inbound relays third-party authentication redirects back to the
// platform.
//
// Each redirect state is claimed before it is relayed. A failed relay
// releases the claim so the redirect can be replayed; a successful one keeps
// it for the claim TTL so browser reloads do not resend the callback.
package inbound
