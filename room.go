/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

// Phase is derived from the votingActive/votesRevealed pair and never stored.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseVoting   Phase = "voting"
	PhaseRevealed Phase = "revealed"
)

// Participant is the per-room record of a single connection.
type Participant struct {
	ID          string
	Name        string
	IsSpectator bool
	IsCreator   bool
	Vote        *Card
	JoinedAt    time.Time
}

// Room holds everything about a single voting session. It is only ever
// touched from the coordinator goroutine.
type Room struct {
	ID            string
	CreatorID     string
	CurrentStory  string
	VotingActive  bool
	VotesRevealed bool
	CreatedAt     time.Time
	LastActive    time.Time

	participants map[string]*Participant
	order        []string // join order
	votes        map[string]Card

	// coverage signal already sent for the current set of voters
	allVotedSent bool
}

func newRoom(id string, now time.Time) *Room {
	return &Room{
		ID:           id,
		CreatedAt:    now,
		LastActive:   now,
		participants: make(map[string]*Participant),
		votes:        make(map[string]Card),
	}
}

func (r *Room) Phase() Phase {
	switch {
	case !r.VotingActive:
		return PhaseIdle
	case r.VotesRevealed:
		return PhaseRevealed
	default:
		return PhaseVoting
	}
}

func (r *Room) Len() int {
	return len(r.order)
}

func (r *Room) participant(id string) (*Participant, bool) {
	p, ok := r.participants[id]

	return p, ok
}

// Participants returns the members in join order.
func (r *Room) Participants() []*Participant {
	return lo.Map(r.order, func(id string, _ int) *Participant {
		return r.participants[id]
	})
}

func (r *Room) memberIDs() []string {
	return slices.Clone(r.order)
}

// add appends p to the join order. The first participant of an empty room
// becomes its creator.
func (r *Room) add(p *Participant) {
	p.IsCreator = false
	if len(r.order) == 0 {
		p.IsCreator = true
		r.CreatorID = p.ID
	}

	r.participants[p.ID] = p
	r.order = append(r.order, p.ID)

	if r.Phase() == PhaseVoting && !p.IsSpectator {
		r.allVotedSent = false
	}
}

// update changes a member's name and role without touching join order or
// creator status. Becoming a spectator discards any vote already cast.
func (r *Room) update(p *Participant, name string, spectator bool) {
	p.Name = name

	if spectator && !p.IsSpectator {
		delete(r.votes, p.ID)
		p.Vote = nil
	}

	if !spectator && p.IsSpectator && r.Phase() == PhaseVoting {
		r.allVotedSent = false
	}

	p.IsSpectator = spectator
}

// remove drops a participant and their vote. When the creator leaves a
// non-empty room the earliest remaining joiner takes over; the new creator
// is returned alongside the removed record.
func (r *Room) remove(id string) (removed, successor *Participant) {
	p, ok := r.participants[id]
	if !ok {
		return nil, nil
	}

	delete(r.participants, id)
	delete(r.votes, id)
	r.order = slices.DeleteFunc(r.order, func(other string) bool {
		return other == id
	})

	if len(r.order) == 0 {
		r.CreatorID = ""

		return p, nil
	}

	if p.IsCreator {
		successor = r.participants[r.order[0]]
		successor.IsCreator = true
		r.CreatorID = successor.ID
	}

	return p, successor
}

func (r *Room) voters() []*Participant {
	return lo.Filter(r.Participants(), func(p *Participant, _ int) bool {
		return !p.IsSpectator
	})
}

// allVoted reports whether there is at least one voter and every voter has
// a recorded vote.
func (r *Room) allVoted() bool {
	voters := r.voters()

	return len(voters) > 0 && lo.EveryBy(voters, func(p *Participant) bool {
		_, ok := r.votes[p.ID]

		return ok
	})
}

func (r *Room) recordVote(p *Participant, card Card) {
	r.votes[p.ID] = card
	p.Vote = &card
}

func (r *Room) clearVotes() {
	clear(r.votes)

	for _, p := range r.participants {
		p.Vote = nil
	}
}

func (r *Room) startRound(story string) {
	r.clearVotes()
	r.CurrentStory = story
	r.VotingActive = true
	r.VotesRevealed = false
	r.allVotedSent = false
}

func (r *Room) resetRound() {
	r.clearVotes()
	r.CurrentStory = ""
	r.VotingActive = false
	r.VotesRevealed = false
	r.allVotedSent = false
}

func (r *Room) disclosedVotes() map[string]DisclosedVote {
	out := make(map[string]DisclosedVote, len(r.votes))

	for id, card := range r.votes {
		if p, ok := r.participants[id]; ok {
			out[id] = DisclosedVote{UserName: p.Name, Vote: card}
		}
	}

	return out
}

// view renders p for a given viewer. Only the owner sees a vote before the
// reveal.
func (r *Room) view(p *Participant, viewerID string) ParticipantView {
	v := ParticipantView{
		ID:          p.ID,
		Name:        p.Name,
		IsSpectator: p.IsSpectator,
		IsCreator:   p.IsCreator,
	}

	card, voted := r.votes[p.ID]
	v.HasVoted = voted

	if voted && (r.VotesRevealed || p.ID == viewerID) {
		v.Vote = &card
	}

	return v
}

// publicViews lists every member as seen by someone who is not the owner.
func (r *Room) publicViews() []ParticipantView {
	return lo.Map(r.Participants(), func(p *Participant, _ int) ParticipantView {
		return r.view(p, "")
	})
}

func (r *Room) snapshot() RoomSnapshot {
	s := RoomSnapshot{
		ID:            r.ID,
		CurrentStory:  r.CurrentStory,
		VotingActive:  r.VotingActive,
		VotesRevealed: r.VotesRevealed,
		Users:         r.publicViews(),
		Votes:         map[string]DisclosedVote{},
		Cards:         deck,
	}

	if r.VotesRevealed {
		s.Votes = r.disclosedVotes()
		s.Stats = computeStats(r.votes)
	}

	return s
}
