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
	"github.com/pennsieve/account-provisioner/internal/preflight"
	"github.com/pennsieve/account-provisioner/internal/provisioning"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log.Println("=== Provision Account ===")

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	var skipPreflight bool
	fs := flag.NewFlagSet("provision-account", flag.ContinueOnError)
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

	if err := cfg.ValidateProvisioning(); err != nil {
		fmt.Println("Usage: provision-account -account-id <id> -ou <unit> -sso-first-name <name> -sso-last-name <name> [options]")
		fmt.Println()
		fs.PrintDefaults()
		log.Printf("Invalid configuration: %v", err)
		return 1
	}

	log.Printf("Configuration:")
	log.Printf("  Account: %s", cfg.TargetAccountId)
	log.Printf("  Organizational Unit: %s", cfg.ManagedOrganizationalUnit)
	log.Printf("  Product: %s", cfg.ProductName)
	log.Printf("  Poll Interval: %s", cfg.ProvisionInterval)
	log.Printf("  Runs Table: %s", cfg.RunsTable)
	log.Println()

	if !skipPreflight {
		identity, err := preflight.NewChecker(deps.STSClient(), deps.OrganizationsClient()).Check(ctx)
		if err != nil {
			log.Printf("Preflight failed: %v", err)
			return 1
		}
		log.Printf("Caller %s in organization %s", identity.CallerArn, identity.OrganizationId)
	}

	p := provisioning.New(deps.ServiceCatalogClient(), deps.OrganizationsClient(), deps.Recorder(), cfg)
	outcome, err := p.Run(ctx, cfg.TargetAccountId)
	if err != nil {
		log.Printf("Provisioning failed: %v", err)
		return 1
	}

	log.Printf("Provisioned product %s (%s) finished with status %s after %d checks",
		outcome.ProvisionedProductName, outcome.ProvisionedProductId, outcome.Status, outcome.Attempts)
	if !outcome.Succeeded() {
		return 1
	}
	return 0
}
