package karma

import (
	"github.com/forumforge/reputation/internal/models"
)

// Vote transition actions
const (
	ActionCreate = "create"
	ActionRemove = "remove"
	ActionFlip   = "flip"
)

// Transition describes the state change one vote request causes: which
// mutation to apply to the vote row and the adjustments every downstream
// counter must absorb. Delta is the single number applied to the target's
// vote score, the author's karma and the community reputation alike.
type Transition struct {
	Action    string
	Delta     int64
	UpDelta   int64
	DownDelta int64
}

// resolveTransition maps (existing vote, requested value) to a transition:
//
//	no existing vote        -> create, delta = v
//	existing value == v     -> remove, delta = -v
//	existing value == -v    -> flip,   delta = 2v
//
// value must already be validated to be +1 or -1.
func resolveTransition(existing *models.Vote, value int16) Transition {
	v := int64(value)

	if existing == nil {
		t := Transition{Action: ActionCreate, Delta: v}
		if value == 1 {
			t.UpDelta = 1
		} else {
			t.DownDelta = 1
		}
		return t
	}

	if existing.Value == value {
		// Casting the same value again removes the vote
		t := Transition{Action: ActionRemove, Delta: -v}
		if value == 1 {
			t.UpDelta = -1
		} else {
			t.DownDelta = -1
		}
		return t
	}

	// Opposite value: flip in place
	t := Transition{Action: ActionFlip, Delta: 2 * v}
	if value == 1 {
		t.UpDelta = 1
		t.DownDelta = -1
	} else {
		t.UpDelta = -1
		t.DownDelta = 1
	}
	return t
}

// validateVotePolicy rejects votes the ledger must never record. Runs
// before any counter moves.
func validateVotePolicy(authorID, voterID int64) error {
	if authorID == voterID {
		return ErrSelfVote
	}
	return nil
}

// contentEffects lists the counters one new piece of content moves
type contentEffects struct {
	// BumpParentComments increments the parent post's comment_count
	BumpParentComments bool
	// ReputationColumn is the community content counter to increment,
	// empty when the content has no community
	ReputationColumn string
}

// resolveContentCreated maps new content to its counter effects: comments
// with a known parent bump the post's comment count, and content in a
// community bumps the author's content counter there
func resolveContentCreated(contentType string, communityID, parentPostID *int64) contentEffects {
	var e contentEffects
	if contentType == models.TargetTypeComment && parentPostID != nil {
		e.BumpParentComments = true
	}
	if communityID != nil {
		if contentType == models.TargetTypePost {
			e.ReputationColumn = "posts_count"
		} else {
			e.ReputationColumn = "comments_count"
		}
	}
	return e
}

// validVoteValue reports whether v is one of the two legal vote values
func validVoteValue(v int16) bool {
	return v == 1 || v == -1
}

// validTargetType reports whether t names a votable target
func validTargetType(t string) bool {
	return t == models.TargetTypePost || t == models.TargetTypeComment
}
