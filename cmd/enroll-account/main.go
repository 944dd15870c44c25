package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pennsieve/account-provisioner/internal/config"
	"github.com/pennsieve/account-provisioner/internal/container"
	"github.com/pennsieve/account-provisioner/internal/enrollment"
	"github.com/pennsieve/account-provisioner/internal/preflight"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log.Println("=== Enroll Account ===")

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	var skipPreflight bool
	fs := flag.NewFlagSet("enroll-account", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	fs.BoolVar(&skipPreflight, "skip-preflight", false, "Skip the caller identity and organization check")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := container.NewContainer(ctx)
	if err != nil {
		log.Printf("Failed to load AWS config: %v", err)
		return 1
	}
	if cfg.SSMParameterPath != "" {
		if err := cfg.ApplySSM(ctx, deps.SSMClient()); err != nil {
			log.Printf("Failed to read SSM parameters: %v", err)
			return 1
		}
		// flags win over SSM
		_ = fs.Parse(args)
	}
	deps.SetConfig(cfg.RunsTable)

	if err := cfg.ValidateEnrollment(); err != nil {
		fmt.Println("Usage: enroll-account -account-id <id> [options]")
		fmt.Println()
		fs.PrintDefaults()
		log.Printf("Invalid configuration: %v", err)
		return 1
	}

	log.Printf("Configuration:")
	log.Printf("  Account: %s", cfg.TargetAccountId)
	log.Printf("  Poll Interval: %s", cfg.EnrollInterval)
	log.Printf("  Stop On Rejection: %v", cfg.StopOnRejection)
	log.Printf("  Runs Table: %s", cfg.RunsTable)
	log.Println()

	if !skipPreflight {
		identity, err := preflight.NewChecker(deps.STSClient(), deps.OrganizationsClient()).Check(ctx)
		if err != nil {
			log.Printf("Preflight failed: %v", err)
			return 1
		}
		if !identity.IsManagementAccount() {
			log.Printf("Warning: caller account %s is not the management account %s", identity.CallerAccount, identity.ManagementAccountId)
		}
	}

	e := enrollment.New(deps.OrganizationsClient(), deps.Recorder(), cfg)
	outcome, err := e.Run(ctx, cfg.TargetAccountId)
	if outcome.Rejection != nil {
		log.Printf("Invitation rejected: %v", outcome.Rejection)
	}
	if err != nil {
		log.Printf("Enrollment failed: %v", err)
		return 1
	}

	log.Printf("Account %s joined the organization after %d checks", cfg.TargetAccountId, outcome.Attempts)
	if !outcome.Joined() {
		return 1
	}
	return 0
}
