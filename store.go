/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"time"
)

// Store holds every live room keyed by id.
type Store struct {
	rooms     map[string]*Room
	retention time.Duration
}

func newStore(retention time.Duration) *Store {
	return &Store{
		rooms:     make(map[string]*Room),
		retention: retention,
	}
}

func (s *Store) get(id string) (*Room, bool) {
	room, ok := s.rooms[id]

	return room, ok
}

// getOrCreate returns the room with the given id, creating it when unknown.
func (s *Store) getOrCreate(id string, now time.Time) (*Room, bool) {
	if room, ok := s.rooms[id]; ok {
		return room, false
	}

	room := newRoom(id, now)
	s.rooms[id] = room

	return room, true
}

func (s *Store) delete(id string) {
	delete(s.rooms, id)
}

func (s *Store) Len() int {
	return len(s.rooms)
}

// sweep removes rooms that are empty and have been idle longer than the
// retention window, returning their ids. Occupied rooms are never touched.
func (s *Store) sweep(now time.Time) []string {
	cutoff := now.Add(-s.retention)

	var reaped []string

	for id, room := range s.rooms {
		if room.Len() == 0 && room.LastActive.Before(cutoff) {
			delete(s.rooms, id)
			reaped = append(reaped, id)
		}
	}

	return reaped
}

// newRoomID generates a crypto-random room id that doesn't collide with an
// existing room.
func (s *Store) newRoomID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}

		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}

		id := string(out)
		if _, exists := s.rooms[id]; !exists {
			return id
		}
	}
}
