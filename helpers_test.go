/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type delivery struct {
	to  string
	msg ServerMessage
}

// recorder is an Outbox that keeps everything it is asked to send.
type recorder struct {
	sent []delivery
}

func (r *recorder) Send(connID string, msg ServerMessage) {
	r.sent = append(r.sent, delivery{to: connID, msg: msg})
}

func (r *recorder) reset() {
	r.sent = nil
}

// types lists the event types delivered to connID, in order.
func (r *recorder) types(connID string) []string {
	return lo.FilterMap(r.sent, func(d delivery, _ int) (string, bool) {
		return d.msg.Type, d.to == connID
	})
}

// last returns the most recent message of the given type sent to connID.
func (r *recorder) last(t *testing.T, connID, event string) ServerMessage {
	t.Helper()

	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].to == connID && r.sent[i].msg.Type == event {
			return r.sent[i].msg
		}
	}

	require.Failf(t, "message not sent", "no %q delivered to %s", event, connID)

	return ServerMessage{}
}

func (r *recorder) count(event string) int {
	return lo.CountBy(r.sent, func(d delivery) bool {
		return d.msg.Type == event
	})
}

func testConfig() *Config {
	return &Config{
		port:          3000,
		rateBurst:     20,
		rateLimit:     10,
		roomRetention: 24 * time.Hour,
		sweepInterval: time.Hour,
	}
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

func newTestCoordinator(t *testing.T) (*Coordinator, *recorder) {
	t.Helper()

	out := &recorder{}
	c := newCoordinator(testConfig(), out, testLogger())

	clock := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		clock = clock.Add(time.Second)

		return clock
	}

	return c, out
}

func connect(c *Coordinator, ids ...string) {
	for _, id := range ids {
		c.handle(event{kind: eventConnect, connID: id})
	}
}

func send(t *testing.T, c *Coordinator, connID, eventType string, payload any) {
	t.Helper()

	msg := ClientMessage{Type: eventType}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)

		msg.Data = data
	}

	c.handle(event{kind: eventMessage, connID: connID, msg: msg})
}

func join(t *testing.T, c *Coordinator, connID, roomID, name string, spectator bool) {
	t.Helper()

	send(t, c, connID, evJoinRoom, JoinRoomRequest{RoomID: roomID, UserName: name, IsSpectator: spectator})
}

func vote(t *testing.T, c *Coordinator, connID string, card Card) {
	t.Helper()

	send(t, c, connID, evSubmitVote, SubmitVoteRequest{Vote: card})
}

// requireSingleCreator checks that a non-empty room has exactly one creator
// and that it matches CreatorID.
func requireSingleCreator(t *testing.T, room *Room) {
	t.Helper()

	creators := lo.Filter(room.Participants(), func(p *Participant, _ int) bool {
		return p.IsCreator
	})

	if room.Len() == 0 {
		require.Empty(t, creators)

		return
	}

	require.Len(t, creators, 1)
	require.Equal(t, room.CreatorID, creators[0].ID)
}
