package instance

import "github.com/angelmondragon/orderform-backend/pkg/env"

// ID returns the identifier of the running API instance for log fields.
// Cloud Run exposes K_REVISION; containers elsewhere fall back to HOSTNAME.
func ID() string {
	for _, key := range []string{"K_REVISION", "HOSTNAME"} {
		if id := env.Get(key, ""); id != "" {
			return id
		}
	}
	return "local"
}
