/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// creatorOf resolves connID to its room, failing unless it is the creator.
func (c *Coordinator) creatorOf(connID string) (*Room, error) {
	room, p, ok := c.lookup(connID)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not in a room", ErrProtocol, connID)
	}

	if !p.IsCreator {
		return nil, fmt.Errorf("%w: %s in room %s", ErrNotCreator, connID, room.ID)
	}

	return room, nil
}

// startVoting opens a new round from any phase, discarding whatever votes
// the previous one held.
func (c *Coordinator) startVoting(connID, story string) error {
	room, err := c.creatorOf(connID)
	if err != nil {
		return err
	}

	room.startRound(strings.TrimSpace(story))
	room.LastActive = c.now()

	c.dispatch.toRoom(room, evVotingStarted, VotingStartedMessage{
		Story: room.CurrentStory,
		Cards: deck,
	})

	c.log.WithField("room", room.ID).Infof("VOTES: Round started in %s for %q", room.ID, room.CurrentStory)

	return nil
}

func (c *Coordinator) submitVote(connID string, card Card) error {
	room, p, ok := c.lookup(connID)
	if !ok {
		return fmt.Errorf("%w: %s is not in a room", ErrProtocol, connID)
	}

	switch {
	case p.IsSpectator:
		return fmt.Errorf("%w: spectators can't vote", ErrProtocol)
	case room.Phase() != PhaseVoting:
		return fmt.Errorf("%w: no open round in %s", ErrProtocol, room.ID)
	case !card.valid():
		return fmt.Errorf("%w: card %q is not in the deck", ErrProtocol, card)
	}

	room.recordVote(p, card)
	room.LastActive = c.now()

	c.dispatch.toRoom(room, evUserVoted, UserVotedMessage{
		UserID:   p.ID,
		UserName: p.Name,
		HasVoted: true,
	})

	c.log.WithFields(logrus.Fields{"room": room.ID, "conn": connID}).
		Debugf("VOTES: %q voted in %s", p.Name, room.ID)

	c.checkCoverage(room)

	return nil
}

// checkCoverage announces allUsersVoted the first time every voter in an
// open round has a vote. The signal re-arms when a new voter shows up.
func (c *Coordinator) checkCoverage(room *Room) {
	if room.Phase() != PhaseVoting || room.allVotedSent || !room.allVoted() {
		return
	}

	room.allVotedSent = true

	c.dispatch.toRoom(room, evAllUsersVoted, nil)
}

// revealVotes closes the open round. A round is revealed at most once.
func (c *Coordinator) revealVotes(connID string) error {
	room, err := c.creatorOf(connID)
	if err != nil {
		return err
	}

	if room.Phase() != PhaseVoting {
		return fmt.Errorf("%w: nothing to reveal in %s", ErrProtocol, room.ID)
	}

	room.VotesRevealed = true
	room.LastActive = c.now()

	stats := computeStats(room.votes)

	c.dispatch.toRoom(room, evVotesRevealed, VotesRevealedMessage{
		Votes: room.disclosedVotes(),
		Stats: stats,
	})

	c.log.WithField("room", room.ID).Infof("VOTES: Revealed %d vote(s) in %s", len(room.votes), room.ID)

	return nil
}

func (c *Coordinator) resetVoting(connID string) error {
	room, err := c.creatorOf(connID)
	if err != nil {
		return err
	}

	room.resetRound()
	room.LastActive = c.now()

	c.dispatch.toRoom(room, evVotingReset, nil)

	c.log.WithField("room", room.ID).Infof("VOTES: Round reset in %s", room.ID)

	return nil
}
