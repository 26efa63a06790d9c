package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moveline/config"
	"moveline/cron"
	"moveline/handlers"
	"moveline/services/distance"
	"moveline/services/notification"
	"moveline/services/pricing"
	"moveline/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func buildServeCmd() *cobra.Command {
	var withWorker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook and API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, config.AppConfig, withWorker)
		},
	}
	cmd.Flags().BoolVar(&withWorker, "worker", false, "Also run the reminder and follow-up task worker")
	return cmd
}

func buildWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the reminder and follow-up SMS worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := config.AppConfig
			logger := utils.GetLogger()
			notifier, err := notification.NewFromConfig(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("worker: %w", err)
			}
			srv := cron.InitTaskWorker(cfg, notifier, notification.CompanyFromConfig(cfg), logger)
			<-ctx.Done()
			logger.Info("worker: shutting down")
			srv.Shutdown()
			return nil
		},
	}
}

func buildQuoteCmd() *cobra.Command {
	var (
		req      handlers.QuoteRequest
		miles    float64
		asJSON   bool
		moveType string
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a job from the command line",
		Example: `  moveline quote --type local --miles 35 --rooms 3 --dropoff-rooms 2 --stairs 1
  moveline quote --type "long distance" --pickup "77002" --dropoff "78701" --rooms 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, ok := handlers.ParseMoveType(moveType)
			if !ok {
				return fmt.Errorf("quote: unknown move type %q", moveType)
			}
			cfg := config.AppConfig
			in := pricing.Input{
				PickupRooms: req.PickupRooms,
				Stairs:      req.Stairs,
				MoveType:    mt,
				Packing:     req.Packing,
			}
			if mt.NeedsDropoff() {
				in.DropoffRooms = req.DropoffRooms
				in.DistanceMiles = miles
				if !cmd.Flags().Changed("miles") {
					maps := distance.NewGoogleClient(cfg.GoogleAPIKey, cfg.OfficeAddress)
					ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
					defer cancel()
					route, err := maps.Route(ctx, req.Pickup, req.Dropoff)
					if errors.Is(err, distance.ErrMissingAPIKey) {
						return errors.New("quote: pass --miles or set GOOGLE_API_KEY")
					}
					if err != nil {
						return fmt.Errorf("quote: %w", err)
					}
					in.DistanceMiles = route.PickupToDropoffMiles
				}
			}

			estimate, err := pricing.PolicyFromConfig(cfg).Estimate(in)
			if err != nil {
				return fmt.Errorf("quote: %w", err)
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(handlers.QuoteResponse{Estimate: estimate, Message: pricing.FormatMessage(estimate)})
			}
			fmt.Println(pricing.FormatMessage(estimate))
			return nil
		},
	}
	cmd.Flags().StringVarP(&moveType, "type", "t", "local", "Move type: local, long distance, junk removal, in-home service")
	cmd.Flags().StringVar(&req.Pickup, "pickup", "", "Pickup address (used when --miles is not set)")
	cmd.Flags().StringVar(&req.Dropoff, "dropoff", "", "Drop-off address (used when --miles is not set)")
	cmd.Flags().Float64Var(&miles, "miles", 0, "Pickup to drop-off driving distance")
	cmd.Flags().IntVar(&req.PickupRooms, "rooms", 1, "Rooms at pickup")
	cmd.Flags().IntVar(&req.DropoffRooms, "dropoff-rooms", 1, "Rooms at drop-off")
	cmd.Flags().IntVar(&req.Stairs, "stairs", 0, "Flights of stairs at pickup")
	cmd.Flags().BoolVar(&req.Packing, "packing", false, "Add packing service")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full estimate as JSON")
	return cmd
}

func buildTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for an integration or an operator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != utils.RoleIntegration && role != utils.RoleAdmin {
				return fmt.Errorf("token: role must be %q or %q", utils.RoleIntegration, utils.RoleAdmin)
			}
			token, err := utils.GenerateToken(subject, role, ttl)
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}
			utils.GetLogger().Info("issued api token", zap.String("subject", subject), zap.String("role", role), zap.Duration("ttl", ttl))
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "website", "Who the token is for")
	cmd.Flags().StringVar(&role, "role", utils.RoleIntegration, "integration or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 90*24*time.Hour, "Token lifetime")
	return cmd
}
