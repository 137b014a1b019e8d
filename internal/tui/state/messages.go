package state

// loadedMsg reports the end of the start-up or a full-list fetch.
type loadedMsg struct {
	err error
}

// opDoneMsg reports the end of a write. The app has already re-read the list.
type opDoneMsg struct {
	op  string
	err error
}

// signedInMsg reports a sign-in attempt.
type signedInMsg struct {
	err error
}

// signedOutMsg reports a sign-out.
type signedOutMsg struct{}

// clearToastMsg hides the toast with the given sequence number.
type clearToastMsg struct {
	seq int
}
