/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"

	"github.com/samber/lo"
)

// Card is a single value from the shared deck, always carried as a string.
type Card string

const (
	cardUnsure Card = "?"
	cardCoffee Card = "☕"
)

var deck = []Card{"0", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", cardUnsure, cardCoffee}

func (c Card) valid() bool {
	return lo.Contains(deck, c)
}

func (c Card) abstains() bool {
	return c == cardUnsure || c == cardCoffee
}

// Inbound event types
const (
	evJoinRoom     = "joinRoom"
	evGetRoomState = "getRoomState"
	evStartVoting  = "startVoting"
	evSubmitVote   = "submitVote"
	evRevealVotes  = "revealVotes"
	evResetVoting  = "resetVoting"
	evSendMessage  = "sendMessage"
	evLeaveRoom    = "leaveRoom"
)

// Outbound event types
const (
	evRoomJoined    = "roomJoined"
	evRoomState     = "roomState"
	evUserJoined    = "userJoined"
	evUserLeft      = "userLeft"
	evUsersUpdated  = "usersUpdated"
	evVotingStarted = "votingStarted"
	evUserVoted     = "userVoted"
	evAllUsersVoted = "allUsersVoted"
	evVotesRevealed = "votesRevealed"
	evVotingReset   = "votingReset"
	evNewMessage    = "newMessage"
	evLeftRoom      = "leftRoom"
	evError         = "error"
)

// ClientMessage is the envelope of every frame read from a client.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is the envelope of every frame written to a client.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type JoinRoomRequest struct {
	RoomID      string `json:"roomId" validate:"required,max=20"`
	UserName    string `json:"userName" validate:"required,max=30"`
	IsSpectator bool   `json:"isSpectator"`
}

type StartVotingRequest struct {
	Story string `json:"story"`
}

type SubmitVoteRequest struct {
	Vote Card `json:"vote"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=200"`
}

// ParticipantView is how a participant is shown to clients. Vote stays nil
// for everyone but the owner until the round is revealed.
type ParticipantView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsSpectator bool   `json:"isSpectator"`
	IsCreator   bool   `json:"isCreator"`
	HasVoted    bool   `json:"hasVoted"`
	Vote        *Card  `json:"vote"`
}

type DisclosedVote struct {
	UserName string `json:"userName"`
	Vote     Card   `json:"vote"`
}

type RoomSnapshot struct {
	ID            string                   `json:"id"`
	CurrentStory  string                   `json:"currentStory"`
	VotingActive  bool                     `json:"votingActive"`
	VotesRevealed bool                     `json:"votesRevealed"`
	Users         []ParticipantView        `json:"users"`
	Votes         map[string]DisclosedVote `json:"votes"`
	Stats         *Stats                   `json:"stats"`
	Cards         []Card                   `json:"cards"`
}

// RoomJoinedMessage answers both joinRoom and getRoomState.
type RoomJoinedMessage struct {
	Room RoomSnapshot    `json:"room"`
	User ParticipantView `json:"user"`
}

type UserLeftMessage struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type UserVotedMessage struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	HasVoted bool   `json:"hasVoted"`
}

type VotingStartedMessage struct {
	Story string `json:"story"`
	Cards []Card `json:"cards"`
}

type VotesRevealedMessage struct {
	Votes map[string]DisclosedVote `json:"votes"`
	Stats *Stats                   `json:"stats"`
}

type ChatMessage struct {
	ID        int64  `json:"id"`
	UserName  string `json:"userName"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type LeftRoomMessage struct {
	RoomID string `json:"roomId"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
