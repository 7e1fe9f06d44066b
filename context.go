package mpinauth

import "context"

type deviceIDContextKey struct{}
type appVersionContextKey struct{}

// WithDeviceID attaches the device installation identifier to ctx. The
// engine stamps it on audit events; the HTTP API client sends it as a
// request header.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDContextKey{}, deviceID)
}

// WithAppVersion attaches the portal app version string to ctx for audit
// correlation.
func WithAppVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, appVersionContextKey{}, version)
}

func deviceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	deviceID, _ := ctx.Value(deviceIDContextKey{}).(string)
	return deviceID
}

func appVersionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	version, _ := ctx.Value(appVersionContextKey{}).(string)
	return version
}
