package main

import (
	"fmt"
	"io"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/service/flights"
	"github.com/spf13/cobra"
)

func flightsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flights",
		Short: "Manage scheduled flights",
	}
	cmd.AddCommand(flightsAddCmd(open), flightsListCmd(open), flightsShowCmd(open))
	return cmd
}

func flightsAddCmd(open opener) *cobra.Command {
	var (
		departure string
		fare      int64
	)
	cmd := &cobra.Command{
		Use:   "add [number]",
		Short: "Schedule a new flight as the airline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dep, err := time.Parse(time.RFC3339, departure)
			if err != nil {
				return fmt.Errorf("--departure must be RFC3339: %w", err)
			}
			e, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			airline := domain.AccountID(e.cfg.Escrow.AirlineAccount)
			svc := flights.NewFlightService(e.log, e.store, nil, airline)
			flight, err := svc.CreateFlight(cmd.Context(), flights.CreateFlightInput{
				Caller:        airline,
				Number:        args[0],
				DepartureTime: dep,
				FareCents:     fare,
			})
			if err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "flight %s scheduled\n", flight.Number)
			printFlight(cmd.OutOrStdout(), flight)
			return nil
		},
	}
	cmd.Flags().StringVarP(&departure, "departure", "d", "", "departure time, RFC3339")
	cmd.Flags().Int64VarP(&fare, "fare", "f", 0, "fare in cents")
	_ = cmd.MarkFlagRequired("departure")
	_ = cmd.MarkFlagRequired("fare")
	return cmd
}

func flightsListCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all flights",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			svc := flights.NewFlightService(e.log, e.store, nil, domain.AccountID(e.cfg.Escrow.AirlineAccount))
			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				warnColor.Fprintln(cmd.OutOrStdout(), "no flights")
				return nil
			}
			for i := range list {
				printFlight(cmd.OutOrStdout(), &list[i])
			}
			return nil
		},
	}
}

func flightsShowCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show [number]",
		Short: "Show one flight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			svc := flights.NewFlightService(e.log, e.store, nil, domain.AccountID(e.cfg.Escrow.AirlineAccount))
			flight, err := svc.GetByNumber(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printFlight(cmd.OutOrStdout(), flight)
			return nil
		},
	}
}

func printFlight(w io.Writer, f *domain.Flight) {
	status := okColor
	switch f.Status {
	case domain.FlightStatusDelayed:
		status = warnColor
	case domain.FlightStatusCancelled:
		status = errColor
	}
	fmt.Fprintf(w, "%-8s %s  fare=%s  ", f.Number, f.DepartureTime.Format(time.RFC3339), cents(f.FareCents))
	status.Fprint(w, f.Status)
	if f.Delay > 0 {
		fmt.Fprintf(w, " (+%s)", f.Delay)
	}
	fmt.Fprintln(w)
}

func cents(v int64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
