package handlers

import (
	"matchbook/pkg/engine"
	"matchbook/pkg/eventlog"
	"matchbook/pkg/obs"
)

type Handler struct {
	engine *engine.Engine
	events *eventlog.Log
	obs    *obs.Client
}

func New(obs *obs.Client, eng *engine.Engine, events *eventlog.Log) *Handler {
	return &Handler{
		obs:    obs,
		engine: eng,
		events: events,
	}
}
