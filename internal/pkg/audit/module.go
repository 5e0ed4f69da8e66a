package audit

import "go.uber.org/fx"

// Module provides the audit logger on top of the application logger.
var Module = fx.Provide(New)
