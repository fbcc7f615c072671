/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"time"
)

type session struct {
	roomID      string
	connectedAt time.Time
}

// Registry maps live connections to the room they currently belong to.
// A connection with an empty room id is connected but has not joined yet.
type Registry struct {
	sessions map[string]*session
}

func newRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session),
	}
}

func (r *Registry) register(connID string, now time.Time) error {
	if _, ok := r.sessions[connID]; ok {
		return fmt.Errorf("%w: connection %s already registered", ErrProtocol, connID)
	}

	r.sessions[connID] = &session{connectedAt: now}

	return nil
}

// lookup returns the room id of a registered connection.
func (r *Registry) lookup(connID string) (string, bool) {
	s, ok := r.sessions[connID]
	if !ok {
		return "", false
	}

	return s.roomID, true
}

func (r *Registry) bind(connID, roomID string) {
	if s, ok := r.sessions[connID]; ok {
		s.roomID = roomID
	}
}

// unregister forgets the connection and returns the room it was in.
func (r *Registry) unregister(connID string) (string, bool) {
	s, ok := r.sessions[connID]
	if !ok {
		return "", false
	}

	delete(r.sessions, connID)

	return s.roomID, true
}

func (r *Registry) Len() int {
	return len(r.sessions)
}
