// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
)

// maxBodySize limits the size of a brightness request.
const maxBodySize = 64

// LEDStatus is the JSON representation of an output returned by the handler.
type LEDStatus struct {
	Name       string `json:"name"`
	Brightness int    `json:"brightness"`
}

// NewHandler returns an HTTP handler exposing the outputs in the Registry.
//
// The routes mirror the LED class attributes:
//
//	GET /leds                    list the outputs and their brightness
//	GET /leds/:name/brightness   read the brightness, 0 or 1
//	PUT /leds/:name/brightness   set the brightness, 0 is off, anything else is on
func NewHandler(r *Registry) http.Handler {
	h := &handler{reg: r}
	router := httprouter.New()
	router.GET("/leds", h.list)
	router.GET("/leds/:name/brightness", h.brightness)
	router.PUT("/leds/:name/brightness", h.setBrightness)
	return router
}

type handler struct {
	reg *Registry
}

func (h *handler) list(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	leds := []LEDStatus{}
	for _, name := range h.reg.Names() {
		s, err := h.reg.State(name)
		if err != nil {
			// withdrawn since Names
			continue
		}
		leds = append(leds, LEDStatus{Name: name, Brightness: brightness(s)})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leds)
}

func (h *handler) brightness(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	s, err := h.reg.State(ps.ByName("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "%d\n", brightness(s))
}

func (h *handler) setBrightness(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil || v < 0 {
		http.Error(w, "brightness must be a non-negative integer", http.StatusBadRequest)
		return
	}
	s := Off
	if v != 0 {
		s = On
	}
	if err := h.reg.Set(ps.ByName("name"), s); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func brightness(s State) int {
	if s == On {
		return 1
	}
	return 0
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNotMapped):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
