package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"staybook/internal/domain"
)

func newHotelsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotels",
		Short: "Browse and manage hotel listings",
	}
	cmd.AddCommand(newHotelsListCmd(env))
	cmd.AddCommand(newHotelsGetCmd(env))
	cmd.AddCommand(newHotelsSearchCmd(env))
	cmd.AddCommand(newHotelsAddCmd(env))
	cmd.AddCommand(newHotelsPrefetchCmd(env))
	return cmd
}

func printHotels(cmd *cobra.Command, hotels []domain.Hotel) {
	for _, h := range hotels {
		id := "-"
		if h.ID != nil {
			id = strconv.FormatInt(*h.ID, 10)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.2f/night\t%d rooms\n", id, h.Name, h.PricePerNight, h.RoomCount)
	}
}

func newHotelsListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all hotels",
		RunE: func(cmd *cobra.Command, args []string) error {
			hotels, err := env.Catalog.ListHotels(cmd.Context())
			if err != nil {
				return err
			}
			if len(hotels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no hotels available")
				return nil
			}
			printHotels(cmd, hotels)
			return nil
		},
	}
}

func newHotelsGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one hotel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be a number")
			}
			h, err := env.Catalog.GetHotel(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%.2f per night, %d rooms\n%s\n", h.Name, h.PricePerNight, h.RoomCount, h.Description)
			if h.ImageURL != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "image: %s\n", *h.ImageURL)
			}
			return nil
		},
	}
}

func newHotelsSearchCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Filter hotels by name",
		Long: `Filters the catalog by a case-insensitive substring match on the hotel
name and records the query in the local search history.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			hotels, err := env.Catalog.ListHotels(cmd.Context())
			if err != nil {
				return err
			}
			if err := env.Search.LoadHistory(cmd.Context()); err != nil {
				return err
			}
			env.Search.SetSource(hotels)
			matches := env.Search.Filter(query)
			if err := env.Search.RecordQuery(cmd.Context(), query); err != nil {
				return err
			}

			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no hotels found for %q\n", query)
				return nil
			}
			printHotels(cmd, matches)
			return nil
		},
	}
}

func newHotelsAddCmd(env *Env) *cobra.Command {
	var up domain.NewHotelUpload
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Upload a new hotel listing (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := env.requireAdmin(cmd); err != nil {
				return err
			}
			h, err := env.Catalog.AddHotel(cmd.Context(), up)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created hotel %d: %s\n", *h.ID, h.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&up.Name, "name", "", "hotel name")
	cmd.Flags().Float64Var(&up.PricePerNight, "price", 0, "price per night")
	cmd.Flags().StringVar(&up.Description, "description", "", "hotel description")
	cmd.Flags().IntVar(&up.RoomCount, "rooms", 0, "room count")
	cmd.Flags().StringVar(&up.ImagePath, "image", "", "path to an image file (optional)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newHotelsPrefetchCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch <id>...",
		Short: "Warm the local cache for the given hotels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, a := range args {
				id, err := strconv.ParseInt(a, 10, 64)
				if err != nil {
					return fmt.Errorf("id %q must be a number", a)
				}
				ids = append(ids, id)
			}
			if err := env.Catalog.Prefetch(cmd.Context(), ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "prefetched %d hotels\n", len(ids))
			return nil
		},
	}
}
