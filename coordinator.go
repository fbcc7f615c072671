/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type eventKind int

const (
	eventConnect eventKind = iota
	eventDisconnect
	eventMessage
	eventNewRoomID
)

type event struct {
	kind   eventKind
	connID string
	msg    ClientMessage
	reply  chan string
}

// Coordinator owns every room and connection. All state changes happen in
// run, one event at a time, so nothing below it takes a lock.
type Coordinator struct {
	log      *logrus.Logger
	registry *Registry
	store    *Store
	dispatch Dispatcher
	validate *validator.Validate

	events        chan event
	done          chan struct{}
	sweepInterval time.Duration
	now           func() time.Time

	messageSeq int64
}

func newCoordinator(cfg *Config, out Outbox, log *logrus.Logger) *Coordinator {
	return &Coordinator{
		log:           log,
		registry:      newRegistry(),
		store:         newStore(cfg.roomRetention),
		dispatch:      Dispatcher{out: out},
		validate:      newValidator(),
		events:        make(chan event, 256),
		done:          make(chan struct{}),
		sweepInterval: cfg.sweepInterval,
		now:           time.Now,
	}
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			c.handle(ev)
		case now := <-ticker.C:
			c.sweep(now)
		}
	}
}

var errStopped = errors.New("coordinator stopped")

// enqueue hands ev to the run loop, giving up once the loop has exited.
func (c *Coordinator) enqueue(ev event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// Connect registers a freshly accepted connection.
func (c *Coordinator) Connect(connID string) {
	c.enqueue(event{kind: eventConnect, connID: connID})
}

// Disconnect is an implicit leave followed by unregistering the connection.
func (c *Coordinator) Disconnect(connID string) {
	c.enqueue(event{kind: eventDisconnect, connID: connID})
}

// Receive queues a client message for processing.
func (c *Coordinator) Receive(connID string, msg ClientMessage) {
	c.enqueue(event{kind: eventMessage, connID: connID, msg: msg})
}

// NewRoomID returns an unused random room id.
func (c *Coordinator) NewRoomID(ctx context.Context) (string, error) {
	reply := make(chan string, 1)

	if !c.enqueue(event{kind: eventNewRoomID, reply: reply}) {
		return "", errStopped
	}

	select {
	case id := <-reply:
		return id, nil
	case <-c.done:
		return "", errStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Coordinator) handle(ev event) {
	switch ev.kind {
	case eventConnect:
		if err := c.registry.register(ev.connID, c.now()); err != nil {
			c.log.WithField("conn", ev.connID).Warnf("CONNS: %v", err)
		}
	case eventDisconnect:
		c.disconnect(ev.connID)
	case eventMessage:
		if err := c.route(ev.connID, ev.msg); err != nil {
			c.report(ev.connID, ev.msg.Type, err)
		}
	case eventNewRoomID:
		ev.reply <- c.store.newRoomID()
	}
}

// route decodes the payload for msg.Type and runs the matching operation.
func (c *Coordinator) route(connID string, msg ClientMessage) error {
	switch msg.Type {
	case evJoinRoom:
		var req JoinRoomRequest
		if err := decode(msg.Data, &req); err != nil {
			return err
		}

		return c.joinRoom(connID, req)
	case evGetRoomState:
		return c.roomState(connID)
	case evStartVoting:
		var req StartVotingRequest
		if err := decode(msg.Data, &req); err != nil {
			return err
		}

		return c.startVoting(connID, req.Story)
	case evSubmitVote:
		var req SubmitVoteRequest
		if err := decode(msg.Data, &req); err != nil {
			return err
		}

		return c.submitVote(connID, req.Vote)
	case evRevealVotes:
		return c.revealVotes(connID)
	case evResetVoting:
		return c.resetVoting(connID)
	case evSendMessage:
		var req SendMessageRequest
		if err := decode(msg.Data, &req); err != nil {
			return err
		}

		return c.sendMessage(connID, req)
	case evLeaveRoom:
		return c.leaveRoom(connID)
	default:
		return fmt.Errorf("%w: unknown event %q", ErrProtocol, msg.Type)
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed payload", ErrValidation)
	}

	return nil
}

// report answers validation and lookup failures to the sender only. Privilege
// and protocol violations are dropped without a reply.
func (c *Coordinator) report(connID, eventType string, err error) {
	entry := c.log.WithFields(logrus.Fields{"conn": connID, "event": eventType})

	if replyable(err) {
		entry.Debugf("REJECT: %v", err)
		c.dispatch.toConn(connID, evError, ErrorMessage{Message: err.Error()})

		return
	}

	entry.Debugf("DROP: %v", err)
}

// lookup resolves a connection to its room and participant record.
func (c *Coordinator) lookup(connID string) (*Room, *Participant, bool) {
	roomID, ok := c.registry.lookup(connID)
	if !ok || roomID == "" {
		return nil, nil, false
	}

	room, ok := c.store.get(roomID)
	if !ok {
		return nil, nil, false
	}

	p, ok := room.participant(connID)
	if !ok {
		return nil, nil, false
	}

	return room, p, true
}

func (c *Coordinator) member(connID string) (*Room, *Participant, error) {
	room, p, ok := c.lookup(connID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: you are not in a room", ErrNotFound)
	}

	return room, p, nil
}

func (c *Coordinator) joinRoom(connID string, req JoinRoomRequest) error {
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.UserName = strings.TrimSpace(req.UserName)

	if err := c.validate.Struct(req); err != nil {
		return validationError(err)
	}

	current, ok := c.registry.lookup(connID)
	if !ok {
		return fmt.Errorf("%w: unknown connection", ErrNotFound)
	}

	if current != "" && current != req.RoomID {
		c.leave(connID)
	}

	now := c.now()

	room, created := c.store.getOrCreate(req.RoomID, now)
	if created {
		c.log.WithField("room", room.ID).Infof("ROOMS: Created room %s", room.ID)
	}

	room.LastActive = now

	p, existing := room.participant(connID)
	if existing {
		room.update(p, req.UserName, req.IsSpectator)
	} else {
		p = &Participant{
			ID:          connID,
			Name:        req.UserName,
			IsSpectator: req.IsSpectator,
			JoinedAt:    now,
		}
		room.add(p)
		c.registry.bind(connID, room.ID)
	}

	c.dispatch.toConn(connID, evRoomJoined, RoomJoinedMessage{
		Room: room.snapshot(),
		User: room.view(p, connID),
	})

	if !existing {
		c.dispatch.toRoomExcept(room, connID, evUserJoined, room.view(p, ""))
	}

	c.dispatch.toRoom(room, evUsersUpdated, room.publicViews())

	c.log.WithFields(logrus.Fields{"room": room.ID, "conn": connID}).
		Infof("ROOMS: %q joined %s (spectator=%t, creator=%t)", p.Name, room.ID, p.IsSpectator, p.IsCreator)

	if existing {
		c.checkCoverage(room)
	}

	return nil
}

// leave removes connID from its room, hands over the creator role and
// deletes the room once it is empty. It returns the removed record, or nil
// when the connection was not in a room.
func (c *Coordinator) leave(connID string) *Participant {
	room, p, ok := c.lookup(connID)

	c.registry.bind(connID, "")

	if !ok {
		return nil
	}

	_, successor := room.remove(connID)

	entry := c.log.WithFields(logrus.Fields{"room": room.ID, "conn": connID})
	entry.Infof("ROOMS: %q left %s", p.Name, room.ID)

	if room.Len() == 0 {
		c.store.delete(room.ID)
		entry.Infof("ROOMS: Deleted empty room %s", room.ID)

		return p
	}

	room.LastActive = c.now()

	if successor != nil {
		entry.Infof("ROOMS: %q is now creator of %s", successor.Name, room.ID)
	}

	c.dispatch.toRoomExcept(room, connID, evUserLeft, UserLeftMessage{UserID: p.ID, UserName: p.Name})
	c.dispatch.toRoom(room, evUsersUpdated, room.publicViews())

	c.checkCoverage(room)

	return p
}

func (c *Coordinator) leaveRoom(connID string) error {
	roomID, _ := c.registry.lookup(connID)

	if c.leave(connID) == nil {
		return fmt.Errorf("%w: you are not in a room", ErrNotFound)
	}

	c.dispatch.toConn(connID, evLeftRoom, LeftRoomMessage{RoomID: roomID})

	return nil
}

func (c *Coordinator) disconnect(connID string) *Participant {
	p := c.leave(connID)

	if _, ok := c.registry.unregister(connID); ok {
		c.log.WithField("conn", connID).Debug("CONNS: Disconnected")
	}

	return p
}

func (c *Coordinator) roomState(connID string) error {
	room, p, err := c.member(connID)
	if err != nil {
		return err
	}

	c.dispatch.toConn(connID, evRoomState, RoomJoinedMessage{
		Room: room.snapshot(),
		User: room.view(p, connID),
	})

	return nil
}

func (c *Coordinator) sendMessage(connID string, req SendMessageRequest) error {
	room, p, err := c.member(connID)
	if err != nil {
		return err
	}

	req.Text = strings.TrimSpace(req.Text)
	if err := c.validate.Struct(req); err != nil {
		return validationError(err)
	}

	now := c.now()
	room.LastActive = now
	c.messageSeq++

	c.dispatch.toRoom(room, evNewMessage, ChatMessage{
		ID:        c.messageSeq,
		UserName:  p.Name,
		Text:      req.Text,
		Timestamp: now.UnixMilli(),
	})

	return nil
}

func (c *Coordinator) sweep(now time.Time) {
	reaped := c.store.sweep(now)
	if len(reaped) == 0 {
		return
	}

	c.log.WithField("rooms", reaped).Infof("ROOMS: Swept %d idle room(s)", len(reaped))
}
