/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

// Outbox delivers a message to a single connection without blocking. It is
// implemented by the websocket hub, and by a recorder in tests.
type Outbox interface {
	Send(connID string, msg ServerMessage)
}

// Dispatcher addresses outbound events. Every event goes through exactly one
// of toConn, toRoomExcept or toRoom.
type Dispatcher struct {
	out Outbox
}

func (d Dispatcher) toConn(connID, event string, data any) {
	d.out.Send(connID, ServerMessage{Type: event, Data: data})
}

// toRoomExcept sends to every member of room other than sender, in join order.
func (d Dispatcher) toRoomExcept(room *Room, sender, event string, data any) {
	msg := ServerMessage{Type: event, Data: data}

	for _, id := range room.memberIDs() {
		if id == sender {
			continue
		}

		d.out.Send(id, msg)
	}
}

func (d Dispatcher) toRoom(room *Room, event string, data any) {
	d.toRoomExcept(room, "", event, data)
}
