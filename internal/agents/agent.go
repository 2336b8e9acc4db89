// Package agents implementa los workflows de monitoreo que corren bajo
// demanda sobre los datos almacenados. Cada agent es independiente; no
// hay protocolo entre ellos.
package agents

import (
	"context"
	"errors"
)

var ErrUnknownAgent = errors.New("unknown agent type")

type Kind string

const (
	KindHealth        Kind = "health"
	KindSafety        Kind = "safety"
	KindReminder      Kind = "reminder"
	KindCommunication Kind = "communication"
	KindResearch      Kind = "research"
	KindAll           Kind = "all"
)

// runOrder es el orden fijo de RunAll.
var runOrder = []Kind{KindHealth, KindSafety, KindReminder, KindCommunication, KindResearch}

func ValidKind(k Kind) bool {
	switch k {
	case KindHealth, KindSafety, KindReminder, KindCommunication, KindResearch, KindAll:
		return true
	default:
		return false
	}
}

type Report struct {
	Agent   string   `json:"agent"`
	Summary string   `json:"summary"`
	Details []string `json:"details,omitempty"`
}

type Agent interface {
	Name() string
	Run(ctx context.Context) (Report, error)
}
