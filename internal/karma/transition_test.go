package karma

import (
	"errors"
	"testing"

	"github.com/forumforge/reputation/internal/models"
)

func existingVote(value int16) *models.Vote {
	return &models.Vote{ID: 1, VoterID: 10, TargetType: models.TargetTypePost, TargetID: 20, Value: value}
}

func TestResolveTransition(t *testing.T) {
	tests := []struct {
		name      string
		existing  *models.Vote
		value     int16
		action    string
		delta     int64
		upDelta   int64
		downDelta int64
	}{
		{
			name:    "new upvote",
			value:   1,
			action:  ActionCreate,
			delta:   1,
			upDelta: 1,
		},
		{
			name:      "new downvote",
			value:     -1,
			action:    ActionCreate,
			delta:     -1,
			downDelta: 1,
		},
		{
			name:     "repeat upvote removes",
			existing: existingVote(1),
			value:    1,
			action:   ActionRemove,
			delta:    -1,
			upDelta:  -1,
		},
		{
			name:      "repeat downvote removes",
			existing:  existingVote(-1),
			value:     -1,
			action:    ActionRemove,
			delta:     1,
			downDelta: -1,
		},
		{
			name:      "downvote flips to upvote",
			existing:  existingVote(-1),
			value:     1,
			action:    ActionFlip,
			delta:     2,
			upDelta:   1,
			downDelta: -1,
		},
		{
			name:      "upvote flips to downvote",
			existing:  existingVote(1),
			value:     -1,
			action:    ActionFlip,
			delta:     -2,
			upDelta:   -1,
			downDelta: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := resolveTransition(tt.existing, tt.value)
			if tr.Action != tt.action {
				t.Errorf("action = %s, want %s", tr.Action, tt.action)
			}
			if tr.Delta != tt.delta {
				t.Errorf("delta = %d, want %d", tr.Delta, tt.delta)
			}
			if tr.UpDelta != tt.upDelta {
				t.Errorf("upDelta = %d, want %d", tr.UpDelta, tt.upDelta)
			}
			if tr.DownDelta != tt.downDelta {
				t.Errorf("downDelta = %d, want %d", tr.DownDelta, tt.downDelta)
			}
			// The score delta must always equal the count adjustment
			if tr.Delta != tr.UpDelta-tr.DownDelta {
				t.Errorf("delta %d != upDelta-downDelta %d", tr.Delta, tr.UpDelta-tr.DownDelta)
			}
		})
	}
}

// voteState simulates one target's counters and the per-voter ledger the
// way the transaction applies them
type voteState struct {
	votes     map[int64]int16 // voter -> current value
	voteScore int64
	upvotes   int64
	downvotes int64
}

func newVoteState() *voteState {
	return &voteState{votes: make(map[int64]int16)}
}

// castBy runs the policy check before applying, the way the transaction
// orders them: a rejected vote leaves every counter untouched
func (s *voteState) castBy(authorID, voterID int64, value int16) error {
	if err := validateVotePolicy(authorID, voterID); err != nil {
		return err
	}
	s.cast(voterID, value)
	return nil
}

func (s *voteState) cast(voterID int64, value int16) {
	var existing *models.Vote
	if v, ok := s.votes[voterID]; ok {
		existing = &models.Vote{VoterID: voterID, Value: v}
	}
	tr := resolveTransition(existing, value)
	switch tr.Action {
	case ActionCreate, ActionFlip:
		s.votes[voterID] = value
	case ActionRemove:
		delete(s.votes, voterID)
	}
	s.voteScore += tr.Delta
	s.upvotes += tr.UpDelta
	s.downvotes += tr.DownDelta
}

// recompute derives the counters from the surviving vote records, the way
// the reconciler would from ground truth
func (s *voteState) recompute() (score, up, down int64) {
	for _, v := range s.votes {
		score += int64(v)
		if v == 1 {
			up++
		} else {
			down++
		}
	}
	return
}

func (s *voteState) check(t *testing.T, step int) {
	t.Helper()
	if s.voteScore != s.upvotes-s.downvotes {
		t.Fatalf("step %d: voteScore %d != upvotes-downvotes %d", step, s.voteScore, s.upvotes-s.downvotes)
	}
	if s.upvotes < 0 || s.downvotes < 0 {
		t.Fatalf("step %d: negative counts up=%d down=%d", step, s.upvotes, s.downvotes)
	}
	score, up, down := s.recompute()
	if score != s.voteScore || up != s.upvotes || down != s.downvotes {
		t.Fatalf("step %d: incremental (%d,%d,%d) != recomputed (%d,%d,%d)",
			step, s.voteScore, s.upvotes, s.downvotes, score, up, down)
	}
}

func TestVoteSequences(t *testing.T) {
	type cast struct {
		voter int64
		value int16
	}

	tests := []struct {
		name      string
		sequence  []cast
		voteScore int64
	}{
		{
			name:      "single upvote",
			sequence:  []cast{{1, 1}},
			voteScore: 1,
		},
		{
			name:      "upvote then un-vote returns to neutral",
			sequence:  []cast{{1, 1}, {1, 1}},
			voteScore: 0,
		},
		{
			name:      "upvote then downvote moves by -2",
			sequence:  []cast{{1, 1}, {1, -1}},
			voteScore: -1,
		},
		{
			name:      "downvote from neutral moves by -1",
			sequence:  []cast{{1, -1}},
			voteScore: -1,
		},
		{
			name:      "full toggle cycle",
			sequence:  []cast{{1, 1}, {1, -1}, {1, -1}, {1, 1}, {1, 1}},
			voteScore: 0,
		},
		{
			name:      "many voters",
			sequence:  []cast{{1, 1}, {2, 1}, {3, -1}, {2, -1}, {4, 1}, {3, -1}, {1, 1}},
			voteScore: 0, // surviving votes: voter 2 at -1, voter 4 at +1
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newVoteState()
			for i, c := range tt.sequence {
				state.cast(c.voter, c.value)
				state.check(t, i)
			}
			if state.voteScore != tt.voteScore {
				t.Errorf("final voteScore = %d, want %d", state.voteScore, tt.voteScore)
			}
		})
	}
}

func TestVoteSequencesExhaustiveSingleVoter(t *testing.T) {
	// Every sequence of five casts by one voter must preserve the counter
	// invariants and match recomputation at every step
	values := []int16{1, -1}
	var walk func(state *voteState, depth int)
	walk = func(state *voteState, depth int) {
		if depth == 5 {
			return
		}
		for _, v := range values {
			next := newVoteState()
			for voter, val := range state.votes {
				next.votes[voter] = val
			}
			next.voteScore = state.voteScore
			next.upvotes = state.upvotes
			next.downvotes = state.downvotes

			next.cast(1, v)
			next.check(t, depth)
			walk(next, depth+1)
		}
	}
	walk(newVoteState(), 0)
}

func TestSelfVotePolicy(t *testing.T) {
	if err := validateVotePolicy(7, 7); !errors.Is(err, ErrSelfVote) {
		t.Fatalf("self-vote: got %v, want ErrSelfVote", err)
	}
	if err := validateVotePolicy(7, 8); err != nil {
		t.Fatalf("vote by another user: got %v, want nil", err)
	}

	// A rejected self-vote must not move any counter
	state := newVoteState()
	state.cast(8, 1)
	if err := state.castBy(7, 7, 1); !errors.Is(err, ErrSelfVote) {
		t.Fatalf("castBy self-vote: got %v, want ErrSelfVote", err)
	}
	if state.voteScore != 1 || state.upvotes != 1 || state.downvotes != 0 {
		t.Errorf("counters moved on rejected vote: score=%d up=%d down=%d",
			state.voteScore, state.upvotes, state.downvotes)
	}
	if _, ok := state.votes[7]; ok {
		t.Error("vote record created for rejected self-vote")
	}
	state.check(t, 1)
}

func TestResolveContentCreated(t *testing.T) {
	community := int64(3)
	parent := int64(9)

	tests := []struct {
		name         string
		contentType  string
		communityID  *int64
		parentPostID *int64
		bumpParent   bool
		column       string
	}{
		{
			name:        "post in community",
			contentType: models.TargetTypePost,
			communityID: &community,
			column:      "posts_count",
		},
		{
			name:        "post without community",
			contentType: models.TargetTypePost,
		},
		{
			name:         "comment on known post in community",
			contentType:  models.TargetTypeComment,
			communityID:  &community,
			parentPostID: &parent,
			bumpParent:   true,
			column:       "comments_count",
		},
		{
			name:         "comment on known post without community",
			contentType:  models.TargetTypeComment,
			parentPostID: &parent,
			bumpParent:   true,
		},
		{
			name:        "comment with unknown parent",
			contentType: models.TargetTypeComment,
			communityID: &community,
			column:      "comments_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff := resolveContentCreated(tt.contentType, tt.communityID, tt.parentPostID)
			if eff.BumpParentComments != tt.bumpParent {
				t.Errorf("BumpParentComments = %v, want %v", eff.BumpParentComments, tt.bumpParent)
			}
			if eff.ReputationColumn != tt.column {
				t.Errorf("ReputationColumn = %q, want %q", eff.ReputationColumn, tt.column)
			}
		})
	}
}

func TestValidVoteValue(t *testing.T) {
	for _, v := range []int16{1, -1} {
		if !validVoteValue(v) {
			t.Errorf("validVoteValue(%d) = false, want true", v)
		}
	}
	for _, v := range []int16{0, 2, -2, 10} {
		if validVoteValue(v) {
			t.Errorf("validVoteValue(%d) = true, want false", v)
		}
	}
}

func TestValidTargetType(t *testing.T) {
	if !validTargetType(models.TargetTypePost) || !validTargetType(models.TargetTypeComment) {
		t.Error("post and comment must be valid target types")
	}
	if validTargetType("user") || validTargetType("") {
		t.Error("unexpected target type accepted")
	}
}
