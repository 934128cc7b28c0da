// Package main is the entry point for the offer service.
package main

import (
	"fmt"
	"os"
	// Embeds the IANA database for containers without /usr/share/zoneinfo.
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

// defaultProfile is used when neither --profile nor APP_ENVIRONMENT is set.
const defaultProfile = "local"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The profile flag selects configs/<profile>.yaml.
func newRootCmd() *cobra.Command {
	var profile string

	root := &cobra.Command{
		Use:   "offermaster",
		Short: "OfferMaster quote and offer management service",
		Long: `OfferMaster serves the REST API for articles, projects, quotes and
calendar events, renders quote PDFs and sends quote and password reset emails.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&profile, "profile", "p", profileFromEnv(),
		"configuration profile (local, dev, qa, prod, test)")

	root.AddCommand(
		newServeCmd(&profile),
		newMigrateCmd(&profile),
	)

	return root
}

func profileFromEnv() string {
	if p := os.Getenv("APP_ENVIRONMENT"); p != "" {
		return p
	}
	return defaultProfile
}
