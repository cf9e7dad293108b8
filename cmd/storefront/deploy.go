package main

import (
	"context"
	"fmt"

	"storefront/internal/infra/migrations"

	"github.com/spf13/cobra"
)

func deployCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Migrate the database and seed roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			return deploy(cmd.Context(), a)
		},
	}
}

// 最新スキーマにしてロールを揃える。何度実行してもよい
func deploy(ctx context.Context, a *app) error {
	if err := migrations.Up(ctx, a.db, a.log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := a.roles.InsertRoles(ctx); err != nil {
		return fmt.Errorf("insert roles: %w", err)
	}

	//期限切れの使用済みトークンを掃除
	pruned, err := a.accounts.PruneUsedTokens(ctx)
	if err != nil {
		return fmt.Errorf("prune used tokens: %w", err)
	}

	a.log.InfoContext(ctx, "deploy finished", "pruned_tokens", pruned)
	return nil
}

func migrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations (or roll back one with --down)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if down {
				err = migrations.Down(ctx, a.db)
			} else {
				err = migrations.Up(ctx, a.db, a.log)
			}
			if err != nil {
				return err
			}

			v, err := migrations.Version(ctx, a.db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "Roll back the most recent migration")
	return cmd
}
