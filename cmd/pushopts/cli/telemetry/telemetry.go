// Package telemetry sends anonymous command usage events. It is off unless
// the repository settings opt in, and PUSHOPTS_TELEMETRY_OPTOUT always wins.
package telemetry

import (
	"net"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/posthog/posthog-go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// OptOutEnvVar disables telemetry when set to any value.
const OptOutEnvVar = "PUSHOPTS_TELEMETRY_OPTOUT"

const eventCommandExecuted = "cli_command_executed"

var (
	// PostHogAPIKey is set at build time for production
	PostHogAPIKey = "phc_development_key"
	// PostHogEndpoint is set at build time for production
	PostHogEndpoint = "https://eu.i.posthog.com"
)

// Client records command usage.
type Client interface {
	TrackCommand(cmd *cobra.Command)
	Close()
}

// NoOpClient is used when telemetry is disabled.
type NoOpClient struct{}

func (n *NoOpClient) TrackCommand(_ *cobra.Command) {}
func (n *NoOpClient) Close()                        {}

// silentLogger keeps PostHog from writing timeouts to the terminal.
type silentLogger struct{}

func (silentLogger) Logf(_ string, _ ...interface{})   {}
func (silentLogger) Debugf(_ string, _ ...interface{}) {}
func (silentLogger) Warnf(_ string, _ ...interface{})  {}
func (silentLogger) Errorf(_ string, _ ...interface{}) {}

// PostHogClient enqueues events to PostHog.
type PostHogClient struct {
	client    posthog.Client
	machineID string
	mu        sync.RWMutex
}

// NewClient returns a PostHogClient when enabled is non-nil and true and the
// opt-out variable is unset, otherwise a NoOpClient.
//
//nolint:ireturn // returns NoOpClient or PostHogClient depending on settings
func NewClient(version string, enabled *bool) Client {
	if os.Getenv(OptOutEnvVar) != "" {
		return &NoOpClient{}
	}
	if enabled == nil || !*enabled {
		return &NoOpClient{}
	}

	id, err := machineid.ProtectedID("pushopts-cli")
	if err != nil {
		return &NoOpClient{}
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 100 * time.Millisecond,
		}).DialContext,
		TLSHandshakeTimeout:   100 * time.Millisecond,
		ResponseHeaderTimeout: 100 * time.Millisecond,
	}

	client, err := posthog.NewWithConfig(PostHogAPIKey, posthog.Config{
		Endpoint:           PostHogEndpoint,
		ShutdownTimeout:    100 * time.Millisecond,
		BatchUploadTimeout: 200 * time.Millisecond,
		Transport:          transport,
		Logger:             silentLogger{},
		DisableGeoIP:       posthog.Ptr(true),
		DefaultEventProperties: posthog.NewProperties().
			Set("cli_version", version).
			Set("os", runtime.GOOS).
			Set("arch", runtime.GOARCH),
	})
	if err != nil {
		return &NoOpClient{}
	}

	return &PostHogClient{
		client:    client,
		machineID: id,
	}
}

// TrackCommand records that cmd ran. Only flag names are sent, never values.
func (p *PostHogClient) TrackCommand(cmd *cobra.Command) {
	if cmd == nil || cmd.Hidden {
		return
	}

	p.mu.RLock()
	id := p.machineID
	c := p.client
	p.mu.RUnlock()

	if c == nil {
		return
	}

	_ = c.Enqueue(posthog.Capture{ //nolint:errcheck // best-effort
		DistinctId: id,
		Event:      eventCommandExecuted,
		Properties: CommandProperties(cmd),
	})
}

// CommandProperties builds the event properties for cmd.
func CommandProperties(cmd *cobra.Command) posthog.Properties {
	props := posthog.NewProperties().Set("command", cmd.CommandPath())
	if flags := FlagNames(cmd); len(flags) > 0 {
		props.Set("flags", strings.Join(flags, ","))
	}
	return props
}

// FlagNames returns the sorted names of the flags set on cmd.
func FlagNames(cmd *cobra.Command) []string {
	var flags []string
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		flags = append(flags, flag.Name)
	})
	sort.Strings(flags)
	return flags
}

// Close flushes pending events
func (p *PostHogClient) Close() {
	p.mu.RLock()
	c := p.client
	p.mu.RUnlock()

	if c != nil {
		_ = c.Close()
	}
}
