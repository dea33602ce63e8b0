package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"socialnet/database"
	"socialnet/models"
	"socialnet/utils"
)

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// FriendService is the friendship ledger. It owns the directional request
// records and derives the friend and pending views from them.
type FriendService struct {
	store    *database.Store
	notifier Notifier
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewFriendService allows at most limit requests per sender within any
// window-long span. A nil notifier disables notifications.
func NewFriendService(store *database.Store, notifier Notifier, limit int, window time.Duration) *FriendService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &FriendService{
		store:    store,
		notifier: notifier,
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for request timestamps and the
// rate window.
func (s *FriendService) WithClock(now func() time.Time) *FriendService {
	s.now = now
	return s
}

// Send creates a pending request from fromUserID to toUserID. The returned
// request carries the sender's summary.
//
// The duplicate check is directional: a pending request in the opposite
// direction does not block this one.
func (s *FriendService) Send(ctx context.Context, fromUserID, toUserID string) (fr *models.FriendRequestWithSender, err error) {
	defer func() { recordOutcome("send", err) }()

	now := s.now().UTC().Truncate(time.Microsecond)
	err = s.store.InTx(ctx, func(tx *database.Store) error {
		to, err := tx.GetUserByID(ctx, toUserID)
		if errors.Is(err, database.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		if fromUserID == to.ID {
			return ErrSelfRequest
		}

		// serialises concurrent sends from one sender through the checks below
		if err := tx.LockUser(ctx, fromUserID); err != nil {
			return err
		}
		from, err := tx.GetUserByID(ctx, fromUserID)
		if errors.Is(err, database.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		friends, err := tx.FriendIDs(ctx, fromUserID)
		if err != nil {
			return err
		}
		if friends[to.ID] {
			return ErrAlreadyFriends
		}

		exists, err := tx.FriendRequestExists(ctx, fromUserID, to.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateRequest
		}

		sent, err := tx.CountFriendRequestsSince(ctx, fromUserID, now.Add(-s.window))
		if err != nil {
			return err
		}
		if sent >= s.limit {
			return ErrRateLimited
		}

		fr = &models.FriendRequestWithSender{
			FriendRequest: models.FriendRequest{
				ID:         utils.GenerateUUID(),
				FromUserID: fromUserID,
				ToUserID:   to.ID,
				CreatedAt:  now,
			},
			FromUser: *from.ToResponse(),
		}
		if err := tx.CreateFriendRequest(ctx, &fr.FriendRequest); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return ErrDuplicateRequest
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": fr.ID,
		"from":       fr.FromUserID,
		"to":         fr.ToUserID,
	}).Info("Friend request sent")

	s.notifier.Notify(fr.ToUserID, EventFriendRequestReceived, fr.ToResponse())
	return fr, nil
}

// Respond accepts or rejects a request addressed to responderID. Requests
// addressed to anyone else are reported as not found. Accepting twice is a
// no-op; rejecting deletes the request.
func (s *FriendService) Respond(ctx context.Context, responderID, requestID, action string) (fr *models.FriendRequest, err error) {
	defer func() { recordOutcome(actionLabel(action), err) }()

	accepted := false
	err = s.store.InTx(ctx, func(tx *database.Store) error {
		found, err := tx.GetReceivedFriendRequest(ctx, requestID, responderID)
		if errors.Is(err, database.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return err
		}
		fr = found

		switch action {
		case ActionAccept:
			if fr.Accepted {
				return nil
			}
			if err := tx.AcceptFriendRequest(ctx, fr.ID); err != nil {
				return err
			}
			fr.Accepted = true
			accepted = true
		case ActionReject:
			if err := tx.DeleteFriendRequest(ctx, fr.ID); err != nil {
				return err
			}
		default:
			return ErrInvalidAction
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": fr.ID,
		"responder":  responderID,
		"action":     action,
	}).Info("Friend request answered")

	if accepted {
		s.notifier.Notify(fr.FromUserID, EventFriendRequestAccepted, fr)
	}
	return fr, nil
}

// ListFriends returns the users with an accepted request to or from userID,
// ordered by when that request was sent.
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	return s.store.ListFriends(ctx, userID)
}

// ListPending returns the unanswered requests addressed to userID, newest first.
func (s *FriendService) ListPending(ctx context.Context, userID string) ([]models.FriendRequestWithSender, error) {
	return s.store.ListPendingFriendRequests(ctx, userID)
}
