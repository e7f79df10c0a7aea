package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"claimline/internal/config"
	"claimline/internal/db"
	"claimline/internal/domain"
	"claimline/internal/engine"
	"claimline/internal/events"
	"claimline/internal/migrate"
	"claimline/internal/repo"
	"claimline/internal/server"
	"claimline/internal/validation"
)

var rootCmd = &cobra.Command{
	Use:   "cl",
	Short: "Claimline CLI",
	Long: `Claimline assembles insurance claim documentation packages from a
home inventory workspace. Items and their evidence (photos, receipts,
warranties, condition photos) live in the workspace database; the claim
commands validate documentation completeness and assemble submission-ready
package bundles with cover letter, forms, attestations and photo tree.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("CLAIMLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
}

func registerCommands() {
	rootCmd.AddCommand(itemCmd())
	rootCmd.AddCommand(claimCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func itemCmd() *cobra.Command {
	item := &cobra.Command{
		Use:   "item",
		Short: "Manage inventory items",
		Long:  "Items carry the evidence a claim package is built from: a primary photo, purchase details, receipts, warranty documents and condition photos.",
	}
	item.AddCommand(itemAddCmd())
	item.AddCommand(itemListCmd())
	item.AddCommand(itemShowCmd())
	item.AddCommand(itemUpdateCmd())
	item.AddCommand(itemDeleteCmd())
	item.AddCommand(itemReceiptCmd())
	item.AddCommand(itemConditionPhotoCmd())
	item.AddCommand(itemWarrantyCmd())
	item.AddCommand(itemAttachCmd())
	return item
}

func itemAddCmd() *cobra.Command {
	var name, category, room, date, serial string
	var photoPath, receiptImagePath, manualPath string
	var price float64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				now := time.Now().UTC().Format(time.RFC3339)
				it := domain.Item{
					ID:        uuid.New().String(),
					Name:      name,
					Category:  category,
					Room:      room,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if cmd.Flags().Changed("price") {
					it.PurchasePrice = &price
				}
				if date != "" {
					if _, err := time.Parse(time.RFC3339, date); err != nil {
						return fmt.Errorf("--date must be RFC3339: %w", err)
					}
					it.PurchaseDate = &date
				}
				if serial != "" {
					it.SerialNumber = &serial
				}
				var err error
				if it.PhotoData, err = readFileIfSet(photoPath); err != nil {
					return err
				}
				if it.ReceiptImageData, err = readFileIfSet(receiptImagePath); err != nil {
					return err
				}
				if it.ManualData, err = readFileIfSet(manualPath); err != nil {
					return err
				}
				if err := r.InsertItem(ctx, it); err != nil {
					return err
				}
				return printJSONOrTable(it)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&room, "room", "", "room")
	cmd.Flags().Float64Var(&price, "price", 0, "purchase price")
	cmd.Flags().StringVar(&date, "date", "", "purchase date (RFC3339)")
	cmd.Flags().StringVar(&serial, "serial", "", "serial number")
	cmd.Flags().StringVar(&photoPath, "photo", "", "path to primary photo")
	cmd.Flags().StringVar(&receiptImagePath, "receipt-image", "", "path to receipt image")
	cmd.Flags().StringVar(&manualPath, "manual", "", "path to manual document")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func itemListCmd() *cobra.Command {
	var room string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				var items []domain.Item
				var err error
				if room != "" {
					items, err = r.ListItemsByRoom(ctx, room)
				} else {
					items, err = r.ListItems(ctx)
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Category", "Room", "Price", "Photo", "Receipt"})
				for _, it := range items {
					price := ""
					if it.PurchasePrice != nil {
						price = fmt.Sprintf("$%.2f", *it.PurchasePrice)
					}
					tw.AppendRow(table.Row{it.ID, it.Name, it.Category, it.Room, price, yesNo(it.HasPhoto()), yesNo(it.HasReceiptDocumentation())})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&room, "room", "", "filter by room")
	return cmd
}

func itemShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an item with its evidence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				it, err := r.GetItem(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(it)
			})
		},
	}
	return cmd
}

func itemUpdateCmd() *cobra.Command {
	var name, category, room, date, serial, photoPath string
	var price float64
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				it, err := r.GetItem(ctx, args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("name") {
					it.Name = name
				}
				if cmd.Flags().Changed("category") {
					it.Category = category
				}
				if cmd.Flags().Changed("room") {
					it.Room = room
				}
				if cmd.Flags().Changed("price") {
					it.PurchasePrice = &price
				}
				if cmd.Flags().Changed("date") {
					if _, err := time.Parse(time.RFC3339, date); err != nil {
						return fmt.Errorf("--date must be RFC3339: %w", err)
					}
					it.PurchaseDate = &date
				}
				if cmd.Flags().Changed("serial") {
					it.SerialNumber = &serial
				}
				if photoPath != "" {
					if it.PhotoData, err = readFileIfSet(photoPath); err != nil {
						return err
					}
				}
				it.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
				if err := r.UpdateItem(ctx, it); err != nil {
					return err
				}
				return printJSONOrTable(it)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&room, "room", "", "room")
	cmd.Flags().Float64Var(&price, "price", 0, "purchase price")
	cmd.Flags().StringVar(&date, "date", "", "purchase date (RFC3339)")
	cmd.Flags().StringVar(&serial, "serial", "", "serial number")
	cmd.Flags().StringVar(&photoPath, "photo", "", "path to primary photo")
	return cmd
}

func itemDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				return r.DeleteItem(ctx, args[0])
			})
		},
	}
	return cmd
}

func itemReceiptCmd() *cobra.Command {
	var merchant, date, imagePath string
	var amount float64
	cmd := &cobra.Command{
		Use:   "receipt <item-id>",
		Short: "Record a receipt for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if merchant == "" {
				return fmt.Errorf("--merchant required")
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				if _, err := r.GetItem(ctx, args[0]); err != nil {
					return err
				}
				rec := domain.Receipt{
					ID:           uuid.New().String(),
					ItemID:       args[0],
					MerchantName: merchant,
					TotalAmount:  amount,
					CreatedAt:    time.Now().UTC().Format(time.RFC3339),
				}
				if date != "" {
					if _, err := time.Parse(time.RFC3339, date); err != nil {
						return fmt.Errorf("--date must be RFC3339: %w", err)
					}
					rec.PurchaseDate = &date
				}
				var err error
				if rec.ImageData, err = readFileIfSet(imagePath); err != nil {
					return err
				}
				if err := r.InsertReceipt(ctx, rec); err != nil {
					return err
				}
				return printJSONOrTable(rec)
			})
		},
	}
	cmd.Flags().StringVar(&merchant, "merchant", "", "merchant name")
	cmd.Flags().Float64Var(&amount, "amount", 0, "receipt total")
	cmd.Flags().StringVar(&date, "date", "", "purchase date (RFC3339)")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to receipt image")
	_ = cmd.MarkFlagRequired("merchant")
	return cmd
}

func itemConditionPhotoCmd() *cobra.Command {
	var filePath, description string
	var position int
	cmd := &cobra.Command{
		Use:   "condition-photo <item-id>",
		Short: "Attach a condition photo to an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				if _, err := r.GetItem(ctx, args[0]); err != nil {
					return err
				}
				data, err := os.ReadFile(filePath)
				if err != nil {
					return err
				}
				p := domain.ConditionPhoto{
					ID:          uuid.New().String(),
					ItemID:      args[0],
					Description: description,
					Data:        data,
				}
				if err := r.InsertConditionPhoto(ctx, p, position); err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to photo")
	cmd.Flags().StringVar(&description, "description", "", "photo description")
	cmd.Flags().IntVar(&position, "position", 0, "display order")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func itemWarrantyCmd() *cobra.Command {
	var provider, expires, documentPath string
	cmd := &cobra.Command{
		Use:   "warranty <item-id>",
		Short: "Set the warranty for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				return fmt.Errorf("--provider required")
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				if _, err := r.GetItem(ctx, args[0]); err != nil {
					return err
				}
				w := domain.Warranty{
					ID:       uuid.New().String(),
					ItemID:   args[0],
					Provider: provider,
				}
				if expires != "" {
					if _, err := time.Parse(time.RFC3339, expires); err != nil {
						return fmt.Errorf("--expires must be RFC3339: %w", err)
					}
					w.ExpiresAt = &expires
				}
				var err error
				if w.DocumentData, err = readFileIfSet(documentPath); err != nil {
					return err
				}
				if err := r.UpsertWarranty(ctx, w); err != nil {
					return err
				}
				return printJSONOrTable(w)
			})
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "warranty provider")
	cmd.Flags().StringVar(&expires, "expires", "", "expiry date (RFC3339)")
	cmd.Flags().StringVar(&documentPath, "document", "", "path to warranty document")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

func itemAttachCmd() *cobra.Command {
	var name, filePath string
	cmd := &cobra.Command{
		Use:   "attach <item-id>",
		Short: "Attach a document to an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				if _, err := r.GetItem(ctx, args[0]); err != nil {
					return err
				}
				data, err := os.ReadFile(filePath)
				if err != nil {
					return err
				}
				if name == "" {
					name = filePath
				}
				a := domain.Attachment{
					ID:     uuid.New().String(),
					ItemID: args[0],
					Name:   name,
					Data:   data,
				}
				if err := r.InsertAttachment(ctx, a); err != nil {
					return err
				}
				return printJSONOrTable(a)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "attachment name")
	cmd.Flags().StringVar(&filePath, "file", "", "path to document")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func claimCmd() *cobra.Command {
	claim := &cobra.Command{
		Use:   "claim",
		Short: "Validate and assemble claim packages",
		Long:  "The claim commands run documentation checks against the selected items and assemble a submission-ready package: cover letter, inventory forms, attestations and the photo tree.",
	}
	claim.AddCommand(claimValidateCmd())
	claim.AddCommand(claimAssembleCmd())
	return claim
}

func claimValidateCmd() *cobra.Command {
	var ids []string
	var room, claimType, insurer string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run pre-submission validation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if claimType == "" {
				return fmt.Errorf("--claim-type required")
			}
			return withPipeline(cmd.Context(), func(ctx context.Context, p pipeline) error {
				items, err := selectItems(ctx, p.Repo, ids, room)
				if err != nil {
					return err
				}
				if insurer == "" {
					insurer = p.Config.Insurer
				}
				results, err := p.Engine.Validator.ValidateClaim(items, domain.ClaimType(claimType), insurer)
				if err != nil {
					return err
				}
				_ = p.Events.Append(ctx, "claim.validated", "claim", "", viper.GetString("actor-id"), events.EventPayload{
					"claim_type":   claimType,
					"insurer":      insurer,
					"items":        len(items),
					"ready":        results.IsReadyForSubmission(),
					"completeness": results.OverallCompleteness,
				})
				if viper.GetBool("json") {
					return printJSON(results)
				}
				printValidationResults(results)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "item ids (default: all items)")
	cmd.Flags().StringVar(&room, "room", "", "select items by room")
	cmd.Flags().StringVar(&claimType, "claim-type", "", "claim type (fire, theft, vandalism, water, other)")
	cmd.Flags().StringVar(&insurer, "insurer", "", "insurer rule set (usaa, statefarm, allstate, acord)")
	return cmd
}

func printValidationResults(r validation.Results) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRows([]table.Row{
		{"Overall completeness", fmt.Sprintf("%.0f%% (%s)", r.OverallCompleteness*100, r.CompletenessGrade())},
		{"Photo completeness", fmt.Sprintf("%.0f%%", r.PhotoCompleteness*100)},
		{"Receipt completeness", fmt.Sprintf("%.0f%%", r.ReceiptCompleteness*100)},
		{"Photo quality score", fmt.Sprintf("%.2f", r.PhotoQualityScore)},
		{"Receipt verification", fmt.Sprintf("%.2f", r.ReceiptVerificationScore)},
		{"Total claim value", fmt.Sprintf("$%.2f", r.TotalClaimValue)},
		{"Average item value", fmt.Sprintf("$%.2f", r.AverageItemValue)},
		{"Ready for submission", yesNo(r.IsReadyForSubmission())},
	})
	tw.Render()
	printIssueGroup("Critical", r.CriticalIssues)
	printIssueGroup("Warnings", r.Warnings)
	printIssueGroup("Suggestions", r.Suggestions)
}

func printIssueGroup(label string, issues []domain.ValidationIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, issue := range issues {
		name := issue.ItemName
		if name == "" {
			name = "(claim)"
		}
		for _, msg := range issue.Issues {
			fmt.Printf("  %s: %s\n", name, msg)
		}
	}
}

func claimAssembleCmd() *cobra.Command {
	var ids []string
	var room, scopeType, incidentDate, description, policeReport, output string
	var conditionDocs, noPhotos, noReceipts, noWarranties, noAttestation, compressPhotos bool
	var zipOut, combinedOut, emailOut bool
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Assemble a claim package",
		RunE: func(cmd *cobra.Command, args []string) error {
			if scopeType == "" {
				return fmt.Errorf("--type required")
			}
			incident := time.Now()
			if incidentDate != "" {
				var err error
				incident, err = time.Parse(time.RFC3339, incidentDate)
				if err != nil {
					return fmt.Errorf("--incident-date must be RFC3339: %w", err)
				}
			}
			scenario := domain.ClaimScenario{
				Type:                           domain.ClaimScope(scopeType),
				IncidentDate:                   incident,
				Description:                    description,
				RequiresConditionDocumentation: conditionDocs,
			}
			if policeReport != "" {
				scenario.Metadata = map[string]string{domain.MetadataKeyPoliceReport: policeReport}
			}
			return withPipeline(cmd.Context(), func(ctx context.Context, p pipeline) error {
				items, err := selectItems(ctx, p.Repo, ids, room)
				if err != nil {
					return err
				}
				opts := packageOptions(p.Config)
				opts.IncludePhotos = !noPhotos
				opts.IncludeReceipts = !noReceipts
				opts.IncludeWarranties = !noWarranties
				opts.GenerateAttestation = !noAttestation
				opts.CompressPhotos = compressPhotos
				if output != "" {
					p.Engine.Exporter.BaseDir = output
				}
				p.Engine.ActorID = viper.GetString("actor-id")
				if !viper.GetBool("json") {
					p.Engine.OnProgress = func(prog engine.Progress) {
						fmt.Printf("[%3.0f%%] %s\n", prog.Fraction*100, prog.Step)
					}
				}
				pkg, err := p.Engine.Assemble(ctx, scenario, items, opts)
				if err != nil {
					return err
				}
				out := map[string]any{
					"id":          pkg.ID,
					"package_dir": pkg.PackageDir,
					"is_valid":    pkg.Validation.IsValid,
					"total_items": pkg.Validation.TotalItems,
					"total_value": pkg.Validation.TotalValue,
				}
				if zipOut {
					zipPath, err := p.Engine.Exporter.ExportArchive(pkg)
					if err != nil {
						return err
					}
					out["archive"] = zipPath
					_ = p.Events.Append(ctx, "package.exported", "claim", pkg.ID, p.Engine.ActorID, events.EventPayload{"format": "zip", "path": zipPath})
				}
				if combinedOut {
					docPath, err := p.Engine.Exporter.ExportCombinedDocument(pkg)
					if err != nil {
						return err
					}
					out["combined_document"] = docPath
					_ = p.Events.Append(ctx, "package.exported", "claim", pkg.ID, p.Engine.ActorID, events.EventPayload{"format": "combined", "path": docPath})
				}
				if emailOut {
					email, err := p.Engine.Exporter.PrepareForTransmission(pkg)
					if err != nil {
						return err
					}
					out["email_subject"] = email.Subject
					out["email_summary"] = email.SummaryPath
					out["email_attachment_bytes"] = email.AttachmentSize
					_ = p.Events.Append(ctx, "package.exported", "claim", pkg.ID, p.Engine.ActorID, events.EventPayload{"format": "email", "attachment_bytes": email.AttachmentSize})
				}
				return printJSONOrTable(out)
			})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "item ids (default: all items)")
	cmd.Flags().StringVar(&room, "room", "", "select items by room")
	cmd.Flags().StringVar(&scopeType, "type", "", "claim scope (single_item, multiple_items, room_based, theft, total_loss)")
	cmd.Flags().StringVar(&incidentDate, "incident-date", "", "incident date (RFC3339, default now)")
	cmd.Flags().StringVar(&description, "description", "", "incident description")
	cmd.Flags().StringVar(&policeReport, "police-report", "", "police report reference (theft claims)")
	cmd.Flags().BoolVar(&conditionDocs, "condition-docs", false, "require condition photos per item")
	cmd.Flags().StringVar(&output, "output", "", "output directory (default: system temp)")
	cmd.Flags().BoolVar(&noPhotos, "no-photos", false, "omit photos from the package")
	cmd.Flags().BoolVar(&noReceipts, "no-receipts", false, "omit receipts from the package")
	cmd.Flags().BoolVar(&noWarranties, "no-warranties", false, "omit warranty documents")
	cmd.Flags().BoolVar(&noAttestation, "no-attestations", false, "skip attestation generation")
	cmd.Flags().BoolVar(&compressPhotos, "compress-photos", false, "gzip photos in the email variant")
	cmd.Flags().BoolVar(&zipOut, "zip", false, "also export a zip archive")
	cmd.Flags().BoolVar(&combinedOut, "combined", false, "also export a single combined document")
	cmd.Flags().BoolVar(&emailOut, "email", false, "also prepare the email transmission variant")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Workspace configuration",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configInitCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(cfg)
			}
			data, err := cfg.ToYAML()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
	return cmd
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default claimline.yml to the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			data, err := config.Default().ToYAML()
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail pipeline events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				evts, err := r.LatestEvents(ctx, n, evtType)
				if err != nil {
					return err
				}
				return printJSONOrTable(evts)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			eng := engine.New(conn, cfg)
			eng.ActorID = viper.GetString("actor-id")
			authCfg := server.AuthConfig{JWTSecret: os.Getenv("CLAIMLINE_JWT_SECRET")}
			if authCfg.JWTSecret == "" {
				return fmt.Errorf("CLAIMLINE_JWT_SECRET is required for bearer auth")
			}
			handler, err := server.New(server.Config{
				Engine:   eng,
				Repo:     repo.Repo{DB: conn},
				BasePath: basePath,
				Auth:     authCfg,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Claimline API on http://%s%s\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- helpers ---

type pipeline struct {
	Repo   repo.Repo
	Engine *engine.Engine
	Events events.Writer
	Config *config.Config
}

func withPipeline(ctx context.Context, fn func(context.Context, pipeline) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}
	p := pipeline{
		Repo:   repo.Repo{DB: conn},
		Engine: engine.New(conn, cfg),
		Events: events.Writer{DB: conn},
		Config: cfg,
	}
	return fn(ctx, p)
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func selectItems(ctx context.Context, r repo.Repo, ids []string, room string) ([]domain.Item, error) {
	if len(ids) > 0 {
		items := make([]domain.Item, 0, len(ids))
		for _, id := range ids {
			it, err := r.GetItem(ctx, id)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		return items, nil
	}
	if room != "" {
		return r.ListItemsByRoom(ctx, room)
	}
	return r.ListItems(ctx)
}

func packageOptions(cfg *config.Config) domain.PackageOptions {
	opts := domain.DefaultPackageOptions()
	opts.PolicyHolder = cfg.Options.PolicyHolder
	opts.PolicyNumber = cfg.Options.PolicyNumber
	opts.PropertyAddress = cfg.Options.PropertyAddress
	opts.ContactEmail = cfg.Options.ContactEmail
	opts.ContactPhone = cfg.Options.ContactPhone
	return opts
}

func readFileIfSet(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
