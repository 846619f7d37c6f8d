package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tweetledger/internal/config"
	"tweetledger/internal/logger"
	"tweetledger/internal/model"
	"tweetledger/internal/service"
	"tweetledger/internal/storage"
)

// Env is what the schema commands run against. Tests inject one backed by
// the in-memory store; nil loads it from the environment.
type Env struct {
	Config  *config.Config
	Storage *storage.Storage
	Logger  *zap.Logger
}

func loadEnv() (*Env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.StorageDriver == config.DriverMemory {
		return nil, fmt.Errorf("STORAGE_DRIVER=%s keeps the ledger inside one process; point ledgerctl at the shared postgres store", config.DriverMemory)
	}
	log, err := logger.New(cfg.AppEnv, "warn")
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Env{Config: cfg, Storage: store, Logger: log}, nil
}

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand(rootOpts *RootOptions, env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and upgrade the ledger schema version",
	}

	withSchema := func(cmd *cobra.Command, fn func(ctx context.Context, env *Env, svc *service.SchemaService) error) error {
		e := env
		if e == nil {
			var err error
			if e, err = loadEnv(); err != nil {
				return err
			}
			defer e.Storage.Close()
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		// no publisher: running servers reread the version on their refresh tick
		svc := service.NewSchemaService(e.Storage.Schema(), nil, e.Logger)
		if err := svc.Load(ctx); err != nil {
			return fmt.Errorf("load schema: %w", err)
		}
		return fn(ctx, e, svc)
	}

	status := &cobra.Command{
		Use:          "status",
		Short:        "Show the deployed version and upgrade history",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSchema(cmd, func(ctx context.Context, _ *Env, svc *service.SchemaService) error {
				st, err := svc.Status(ctx)
				if err != nil {
					return err
				}
				return writeStatus(cmd.OutOrStdout(), rootOpts.Format, st)
			})
		},
	}

	var as string
	upgrade := &cobra.Command{
		Use:          "upgrade <version>",
		Short:        "Run the initializer for the next schema version",
		Long:         "Run the initializer for a schema version. The acting account must be listed in OPERATOR_ACCOUNTS.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := model.ParseSchemaVersion(args[0])
			if err != nil {
				return err
			}
			return withSchema(cmd, func(ctx context.Context, e *Env, svc *service.SchemaService) error {
				p := model.Principal{Account: as, Operator: e.Config.IsOperator(as)}
				rec, err := svc.Initialize(ctx, p, version)
				if err != nil {
					return err
				}
				return writeRecord(cmd.OutOrStdout(), rootOpts.Format, rec)
			})
		},
	}
	upgrade.Flags().StringVar(&as, "as", "", "operator account performing the upgrade")
	_ = upgrade.MarkFlagRequired("as")

	cmd.AddCommand(status, upgrade)
	return cmd
}

func writeStatus(w io.Writer, format string, st *model.SchemaStatusResponse) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(st)
	}
	fmt.Fprintf(w, "current: %s\nlatest:  %s\n", st.Current, st.Latest)
	if len(st.History) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nVERSION\tBY\tAT")
	for _, r := range st.History {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Version, r.InitializedBy, r.InitializedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func writeRecord(w io.Writer, format string, rec *model.SchemaRecord) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(rec)
	}
	_, err := fmt.Fprintf(w, "initialized %s as %s\n", rec.Version, rec.InitializedBy)
	return err
}
