// Package handlers is the JSON API on top of tracker and auth.
package handlers

import (
	"gira/internal/auth"
	"gira/internal/tracker"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	tracker *tracker.Service
	auth    *auth.Service
	tokens  *auth.TokenManager
	log     logrus.FieldLogger
}

func New(tr *tracker.Service, as *auth.Service, tokens *auth.TokenManager, log logrus.FieldLogger) *Handler {
	return &Handler{tracker: tr, auth: as, tokens: tokens, log: log}
}
