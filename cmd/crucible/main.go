package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/crucible/internal/config"
	"github.com/jbweber/crucible/internal/harness"
	"github.com/jbweber/crucible/internal/image"
	"github.com/jbweber/crucible/internal/output"
	"github.com/jbweber/crucible/internal/proxmox"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "crucible",
	Short: "Crucible - Alpine provisioning test harness for Proxmox",
	Long: `Crucible provisions a throwaway Alpine VM on a Proxmox node to prove the
unattended install path end to end.

Each run resets leftovers from earlier runs, builds the answer overlay,
makes the latest Alpine release ISO available, creates and boots the test
VM, waits for the installer to power it off, and boots the installed
system.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(testConnCmd)
	rootCmd.AddCommand(imageCmd)
}

// loadConfig reads the optional positional config path. No argument means
// the default configuration.
func loadConfig(args []string) (*config.Config, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// connect builds an authenticated API client from the configuration.
func connect(cfg *config.Config) (*proxmox.Client, error) {
	creds, err := config.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	client, err := proxmox.NewClient(proxmox.ClientConfig{
		Host:      cfg.Host,
		Node:      cfg.Node,
		TokenID:   creds.TokenID,
		Secret:    creds.Secret,
		VerifyTLS: cfg.VerifyTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build API client: %w", err)
	}
	return client, nil
}

var runCmd = &cobra.Command{
	Use:   "run [config.yaml]",
	Short: "Run one full provisioning round",
	Long: `Run one full provisioning round against the configured Proxmox node.

This will:
- Remove artifacts left by previous runs
- Build the answer overlay ISO
- Make the latest Alpine release ISO available in the ISO storage
- Upload the overlay ISO
- Create the test VM and boot the installer
- Wait for the unattended install to power the VM off
- Boot the installed system

The VM is left running for inspection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}

		client, err := connect(cfg)
		if err != nil {
			return err
		}

		if err := harness.New(cfg, client).Run(context.Background()); err != nil {
			return fmt.Errorf("test run failed: %w", err)
		}

		fmt.Println("✓ Provisioning round completed successfully!")
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [config.yaml]",
	Short: "Remove artifacts left by previous runs",
	Long: `Remove every artifact a previous run may have left behind.

This will:
- Delete the local overlay tarball and ISO
- Delete the test VM if it exists
- Delete the overlay ISO from the ISO storage

The cached Alpine release ISO stays in the storage.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}

		client, err := connect(cfg)
		if err != nil {
			return err
		}

		if err := harness.New(cfg, client).Cleanup(context.Background()); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}

		fmt.Println("✓ Cleanup complete!")
		return nil
	},
}

var testConnCmd = &cobra.Command{
	Use:   "test-conn [config.yaml]",
	Short: "Test the Proxmox API connection",
	Long:  `Test connectivity to the Proxmox API and display version information.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}

		fmt.Printf("Testing connection to %s...\n", cfg.Host)

		client, err := connect(cfg)
		if err != nil {
			return err
		}

		info, err := client.Version(context.Background())
		if err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}

		fmt.Println("✓ Connected to the Proxmox API")
		fmt.Printf("✓ Proxmox VE version: %s (release %s, repoid %s)\n",
			info.Version, info.Release, info.RepoID)
		fmt.Printf("✓ Target node: %s\n", cfg.Node)

		fmt.Println("\nConnection test successful!")
		return nil
	},
}

// Image management commands
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage installer images",
	Long: `Manage Alpine installer images in the ISO storage.

The harness keeps the latest Alpine standard release ISO cached in the
storage so repeated runs do not re-download it.`,
}

func init() {
	imageCmd.AddCommand(imageEnsureCmd)
	imageCmd.AddCommand(imageListCmd)

	imageListCmd.Flags().StringP("output", "o", "table", "Output format (table, yaml, json)")
	imageListCmd.Flags().Bool("no-headers", false, "Omit headers in table output")
}

var imageEnsureCmd = &cobra.Command{
	Use:   "ensure [config.yaml]",
	Short: "Make the latest Alpine release ISO available",
	Long: `Discover the latest Alpine standard release and get its ISO into the ISO
storage, downloading and uploading only when the storage does not already
hold it.

Downloads are verified against the published SHA-256 digest before upload.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}

		client, err := connect(cfg)
		if err != nil {
			return err
		}

		source := image.NewSource(cfg.DownloadsURL, cfg.MirrorURL, nil)
		mgr := image.NewManager(client, source, cfg.Storage, cfg.WorkDir)

		info, err := mgr.EnsureAvailable(context.Background())
		if err != nil {
			return fmt.Errorf("failed to ensure release ISO: %w", err)
		}

		fmt.Printf("✓ Alpine %s available as %s in storage %s\n",
			info.Version, info.ISOName, cfg.Storage)
		return nil
	},
}

var imageListCmd = &cobra.Command{
	Use:   "list [config.yaml]",
	Short: "List ISOs in the ISO storage",
	Long: `List the ISO images currently held by the configured storage.

Output formats:
  -o table  Human-readable table (default)
  -o yaml   YAML listing
  -o json   JSON listing`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFormat, _ := cmd.Flags().GetString("output")
		noHeaders, _ := cmd.Flags().GetBool("no-headers")

		if err := output.ValidateFormat(outputFormat); err != nil {
			return err
		}

		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}

		client, err := connect(cfg)
		if err != nil {
			return err
		}

		source := image.NewSource(cfg.DownloadsURL, cfg.MirrorURL, nil)
		mgr := image.NewManager(client, source, cfg.Storage, cfg.WorkDir)

		contents, err := mgr.List(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list ISOs: %w", err)
		}

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(outputFormat),
			NoHeaders: noHeaders,
		})
		if err != nil {
			return err
		}

		result, err := formatter.FormatISOList(contents)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}
