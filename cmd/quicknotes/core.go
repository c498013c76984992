package main

import (
	"context"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/config"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/controller"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/gateway"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/sdk"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/state"
	"go.uber.org/zap"
)

type clientCore struct {
	auth      *controller.AuthController
	notes     *controller.NoteController
	session   *state.SessionState
	noteState *state.NoteState
}

func newClientCore(cfg config.ClientConfig, presenter controller.Presenter, logger *zap.Logger) (*clientCore, error) {
	client, err := sdk.NewClient(sdk.Config{
		Endpoint:  cfg.Endpoint,
		ProjectID: cfg.ProjectID,
		Timeout:   cfg.HTTPTimeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	session := state.NewSessionState()
	noteState := state.NewNoteState()

	authGateway := gateway.NewAuthGateway(gateway.AuthGatewayConfig{
		Account: sdk.NewAccount(client),
		Logger:  logger,
	})
	noteGateway := gateway.NewNoteGateway(gateway.NoteGatewayConfig{
		Documents:    gateway.NewDocumentGateway(sdk.NewDatabases(client), logger),
		DatabaseID:   cfg.DatabaseID,
		CollectionID: cfg.NotesCollectionID,
		Logger:       logger,
	})

	return &clientCore{
		auth:    controller.NewAuthController(authGateway, session, logger),
		session: session,
		notes: controller.NewNoteController(controller.NoteControllerConfig{
			Gateway:   noteGateway,
			Session:   session,
			Notes:     noteState,
			Presenter: presenter,
			Logger:    logger,
		}),
		noteState: noteState,
	}, nil
}

// alertCollector is the non-interactive presenter: alerts are kept and
// confirmations are always declined.
type alertCollector struct {
	alerts []string
}

func (a *alertCollector) Alert(title, message string) {
	a.alerts = append(a.alerts, title+": "+message)
}

func (a *alertCollector) Confirm(context.Context, string, string) bool {
	return false
}
