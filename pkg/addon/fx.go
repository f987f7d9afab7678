package addon

import (
	"go.uber.org/fx"

	"mail2slack/pkg/auth"
	"mail2slack/pkg/logger"
	"mail2slack/pkg/slackapi"
)

// Module provides the add-on event service.
var Module = fx.Module("addon",
	fx.Provide(ProvideService),
)

// ProvideService wires the gate and Slack client into a Service.
func ProvideService(log *logger.Logger, gate *auth.Gate, client *slackapi.Client) *Service {
	return NewService(log, gate, client)
}
