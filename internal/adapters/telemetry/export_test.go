package telemetry

var StripScheme = stripScheme
