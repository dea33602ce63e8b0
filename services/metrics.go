package services

import "github.com/prometheus/client_golang/prometheus"

var friendRequestOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "friend_request_outcomes_total",
		Help: "Friend request operations by action and result",
	},
	[]string{"action", "result"},
)

// Collectors returns the service metrics for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{friendRequestOutcomes}
}

func outcomeLabel(err error) string {
	switch err {
	case nil:
		return "ok"
	case ErrUserNotFound, ErrRequestNotFound:
		return "not_found"
	case ErrSelfRequest:
		return "self"
	case ErrAlreadyFriends:
		return "already_friends"
	case ErrDuplicateRequest:
		return "duplicate"
	case ErrRateLimited:
		return "rate_limited"
	case ErrInvalidAction:
		return "invalid_action"
	}
	return "error"
}

func actionLabel(action string) string {
	if action == ActionAccept || action == ActionReject {
		return action
	}
	return "other"
}

func recordOutcome(action string, err error) {
	friendRequestOutcomes.WithLabelValues(action, outcomeLabel(err)).Inc()
}
