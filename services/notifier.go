package services

const (
	EventFriendRequestReceived = "friend_request.received"
	EventFriendRequestAccepted = "friend_request.accepted"
)

// Notifier pushes an event to a user's live connections. Delivery is best
// effort; offline users miss the event.
type Notifier interface {
	Notify(userID, event string, data any)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, any) {}
