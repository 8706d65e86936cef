package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"staybook/internal/app"
	"staybook/internal/domain"
)

func newBookCmd(env *Env) *cobra.Command {
	var hotelID int64
	var room, checkIn, checkOut string
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a room at a hotel",
		Long: `Creates a booking for the signed-in user. The workflow validates the
input, probes the API host, and only then submits; each failure reports
a specific cause so the input can be corrected and resubmitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := env.requireLogin(cmd)
			if err != nil {
				return err
			}

			booking, err := env.Workflow.Submit(cmd.Context(), app.BookingInput{
				Email:        sess.Email,
				Username:     sess.Username,
				HotelID:      hotelID,
				RoomNumber:   room,
				CheckInDate:  checkIn,
				CheckOutDate: checkOut,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "booking %d confirmed: hotel %d, room %d, %s to %s\n",
				*booking.ID, booking.HotelID, booking.RoomNumber, booking.CheckInDate, booking.CheckOutDate)
			return nil
		},
	}
	cmd.Flags().Int64Var(&hotelID, "hotel", 0, "hotel id")
	cmd.Flags().StringVar(&room, "room", "", "room number")
	cmd.Flags().StringVar(&checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("hotel")
	return cmd
}

func newBookingsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List and manage bookings",
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List your bookings (--all lists everyone's, admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				bookings []domain.Booking
				err      error
			)
			if all {
				if _, err = env.requireAdmin(cmd); err != nil {
					return err
				}
				bookings, err = env.Bookings.ListAll(cmd.Context())
			} else {
				var sess domain.Session
				if sess, err = env.requireLogin(cmd); err != nil {
					return err
				}
				bookings, err = env.Bookings.ListForUser(cmd.Context(), sess.Username)
			}
			if err != nil {
				return err
			}
			if len(bookings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no bookings")
				return nil
			}
			for _, b := range bookings {
				id := "-"
				if b.ID != nil {
					id = strconv.FormatInt(*b.ID, 10)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\thotel %d\troom %d\t%s .. %s\n",
					id, b.Username, b.HotelID, b.RoomNumber, b.CheckInDate, b.CheckOutDate)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&all, "all", false, "list bookings for all users")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a booking (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := env.requireAdmin(cmd); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be a number")
			}
			if err := env.Bookings.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "booking %d deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}
