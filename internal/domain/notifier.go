package domain

// Notifier is the outbound notification channel. Send reports whether the
// message was delivered; callers must treat failures as non-fatal and must
// not assume immediate delivery (implementations may rate-limit).
type Notifier interface {
	Send(text string) bool
}

// NopNotifier discards all messages
type NopNotifier struct{}

func (NopNotifier) Send(string) bool { return true }
