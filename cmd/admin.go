package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	catalogx "github.com/tanpawarit/goodfoods-agent/agent/catalog"
	reservationx "github.com/tanpawarit/goodfoods-agent/agent/reservation"
)

func newReservationsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reservations",
		Short: "Print stored reservations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.store.List(ctx, limit)
			if err != nil {
				return err
			}
			return writeReservations(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", reservationx.DefaultListLimit, "maximum number of rows")
	return cmd
}

func newRestaurantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restaurants",
		Short: "Print the restaurant catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			catalog, err := catalogx.Open(cfg.CatalogPath)
			if err != nil {
				return err
			}
			return writeRestaurants(cmd.OutOrStdout(), catalog.All())
		},
	}
}

func writeReservations(w io.Writer, rows []reservationx.Reservation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRESTAURANT\tDATETIME\tSEATS\tNAME\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\n",
			r.ID, r.RestaurantID, r.DateTime.Format("2006-01-02 15:04"), r.Seats, r.Name, r.Status)
	}
	return tw.Flush()
}

func writeRestaurants(w io.Writer, restaurants []catalogx.Restaurant) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCUISINE\tCAPACITY\tFEATURES")
	for _, r := range restaurants {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			r.ID, r.Name, r.Cuisine, r.Capacity, strings.Join(r.Features, ", "))
	}
	return tw.Flush()
}
