package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/internal/adapters/model"
	"github.com/phishguard/phishguard/internal/adapters/storage"
	"github.com/phishguard/phishguard/internal/application"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/domain/detection"
	"github.com/phishguard/phishguard/internal/domain/emailscan"
	"github.com/phishguard/phishguard/internal/domain/imagescan"
	"github.com/phishguard/phishguard/internal/domain/refdata"
	"github.com/phishguard/phishguard/internal/ports"
)

var (
	service *application.ScanService
	store   *storage.PostgresScanStore

	historyLimit int
)

var rootCmd = &cobra.Command{
	Use:   "phishguard",
	Short: "Classify URLs, emails and images as legitimate, suspicious or phishing",
	Long: `phishguard is a phishing triage tool. It combines deterministic
brand/heuristic rules with a trained classifier to score URLs, and layers
email and image (QR code) analysis on top of the same URL detection
primitive.`,
	Example: `  phishguard url http://paypal-security-alert.com
  phishguard url https://github.com https://bit.ly/3xYz
  phishguard email suspicious_message.eml
  phishguard image qr_flyer.png
  phishguard history --limit 10`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

var urlCmd = &cobra.Command{
	Use:   "url <url>...",
	Short: "Scan one or more URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, u := range args {
			printJSON(service.ScanURL(u))
		}
		return nil
	},
}

var emailCmd = &cobra.Command{
	Use:   "email <file>",
	Short: "Analyze a raw email message (.eml)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading email file: %w", err)
		}
		printJSON(service.ScanEmail(string(raw)))
		return nil
	},
}

var imageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Analyze an image for embedded QR threats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading image file: %w", err)
		}
		printJSON(service.ScanImage(content, filepath.Base(args[0])))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent persisted scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := service.History(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("fetching scan history: %w", err)
		}
		printJSON(records)
		return nil
	},
}

// setup wires up the detection core. This is the hexagonal composition root:
// adapters are constructed here and injected into the inner layers.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	lists := refdata.Default()

	classifier, err := detection.NewVerdictClassifier(cfg.PhishingThreshold, cfg.SuspiciousThreshold)
	if err != nil {
		return err
	}

	fusion, err := detection.FusionPolicyByName(cfg.FusionPolicy)
	if err != nil {
		return err
	}

	// The model artifact is optional: without it every prediction degrades
	// to the neutral probability and rules carry the verdict.
	var clf ports.Model
	if loaded, err := model.Load(cfg.ModelPath); err != nil {
		log.Printf("Model artifact unavailable (%v); predictions degrade to neutral", err)
	} else {
		clf = loaded
	}

	if cfg.DatabaseURL != "" {
		store, err = storage.NewPostgresScanStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := store.InitSchema(); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	} else {
		log.Println("DATABASE_URL not set; scan history disabled")
	}

	detector := detection.NewDetector(lists, clf, fusion, classifier)

	var scanStore ports.ScanStore
	if store != nil {
		scanStore = store
	}
	service = application.NewScanService(
		detector,
		emailscan.NewAnalyzer(detector, lists),
		imagescan.NewAnalyzer(detector),
		scanStore,
	)

	return nil
}

// teardown drains pending history writes and releases the store.
func teardown(cmd *cobra.Command, args []string) {
	if service != nil {
		service.Wait()
	}
	if store != nil {
		store.Close()
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Failed to render result: %v", err)
		return
	}
	fmt.Println(string(out))
}

func main() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of records to show")
	rootCmd.AddCommand(urlCmd, emailCmd, imageCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
