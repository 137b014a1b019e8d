package app

import (
	"fmt"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

// User-facing notification texts.
const (
	MsgWelcome        = "Welcome back!"
	MsgSignInFailed   = "Could not sign in. Check email and password."
	MsgSignedOut      = "You have signed out."
	MsgSessionExpired = "Your session has expired. Sign in again."
	MsgLoadFailed     = "Could not load data."
	MsgSaved          = "Saved successfully!"
	MsgSaveFailed     = "Could not save."
	MsgUpdated        = "Updated!"
	MsgUpdateFailed   = "Could not update."
	MsgDeleted        = "Deleted."
	MsgDeleteFailed   = "Could not delete."
	MsgBulkFailed     = "Could not update the selected proposals."
)

func statusMessage(n int, status domain.Status) string {
	return fmt.Sprintf("%d %s marked as %s!", n, plural(n), status.Label())
}

func archiveMessage(n int, archived bool) string {
	verb := "restored"
	if archived {
		verb = "archived"
	}
	return fmt.Sprintf("%d %s %s.", n, plural(n), verb)
}

func plural(n int) string {
	if n == 1 {
		return "proposal"
	}
	return "proposals"
}
