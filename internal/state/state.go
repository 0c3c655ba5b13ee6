package state

import (
	"tdt-client/internal/config"
	"tdt-client/internal/identity"
)

type AppState struct {
	Cfg        *config.AppConfig
	Ident      identity.Identity
	IdentStore identity.Store
}

func NewAppState(
	cfg *config.AppConfig,
	ident identity.Identity,
	identStore identity.Store,
) *AppState {
	return &AppState{
		Cfg:        cfg,
		Ident:      ident,
		IdentStore: identStore,
	}
}
