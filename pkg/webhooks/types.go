// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

// IdentityStateEvent is the payload the identity provider posts when an
// identity changes state (banned, deleted, reinstated).
type IdentityStateEvent struct {
	Event string    `json:"event"`
	User  EventUser `json:"user"`
}

type EventUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
