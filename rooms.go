/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

func roomURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + path
}

// redirectNewRoom sends the browser to a fresh, unused room link.
func redirectNewRoom(cfg *Config, log *logrus.Logger, path string, coord *Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id, err := coord.NewRoomID(r.Context())
		if err != nil {
			http.Error(w, "unable to allocate room", http.StatusServiceUnavailable)

			return
		}

		log.WithField("room", id).Debugf("ROOMS: Handed out room link %s", id)

		http.Redirect(w, r, cfg.prefix+path+"/"+id, http.StatusTemporaryRedirect)
	}
}

func serveRoomPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(newPage("Planning Poker: "+ps.ByName("roomid"), "Room "+ps.ByName("roomid"))))
	}
}

// serveRoomQR renders a PNG QR code pointing at the room page.
func serveRoomQR(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("roomid") == "" {
			http.Error(w, "missing room id", http.StatusBadRequest)

			return
		}

		png, err := qrcode.Encode(roomURL(r, strings.TrimSuffix(r.URL.Path, "/qr")), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}

// registerRooms sets up:
//   - $path/new          → redirect to a new random room
//   - $path/:roomid      → room page
//   - $path/:roomid/qr   → PNG QR code for the room page
func registerRooms(cfg *Config, log *logrus.Logger, path string, mux *httprouter.Router, coord *Coordinator) {
	mux.GET(cfg.prefix+"/new", redirectNewRoom(cfg, log, path, coord))

	mux.GET(cfg.prefix+path+"/:roomid", serveRoomPage(cfg))

	mux.GET(cfg.prefix+path+"/:roomid/qr", serveRoomQR(cfg))
}
