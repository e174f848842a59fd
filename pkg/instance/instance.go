package instance

import "github.com/gravadormedico/voicepen-backend/pkg/env"

// ID names the running process in logs and lock owners. It prefers an
// explicit GRAVADOR_INSTANCE_ID, then the platform's dyno or host name.
func ID(fallback string) string {
	return env.First(fallback, "GRAVADOR_INSTANCE_ID", "DYNO", "HOSTNAME")
}
