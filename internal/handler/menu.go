// Package handler implements the interactive console used to drive the
// inventory: availability search, booking with a simulated payment step,
// cancellation and listing.
package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

const rule = "==================================="

// Menu reads commands line by line from in and writes prompts and results
// to out.  It is the only caller of the inventory's mutating operations.
type Menu struct {
	inv    *service.Inventory
	in     *bufio.Scanner
	out    io.Writer
	logger *zap.Logger

	// lines is fed by a reader goroutine so prompts can be abandoned when
	// the context is cancelled.  scanErr is set before lines is closed.
	lines   chan string
	stop    chan struct{}
	scanErr error
}

// NewMenu constructs a Menu.  A nil logger discards log output.
func NewMenu(inv *service.Inventory, in io.Reader, out io.Writer, logger *zap.Logger) *Menu {
	if inv == nil {
		panic("nil inventory passed to NewMenu")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{inv: inv, in: bufio.NewScanner(in), out: out, logger: logger}
}

// Run shows the main menu until the user exits, input ends or ctx is
// cancelled.  All three paths save the state one final time; the returned
// error is that save's result.  The final save ignores ctx cancellation.
func (m *Menu) Run(ctx context.Context) error {
	m.lines = make(chan string)
	m.stop = make(chan struct{})
	defer close(m.stop)
	go m.scan()

	for {
		m.printMenu()
		choice, ok := m.readLine(ctx)
		if !ok {
			m.println()
			m.reportInputEnd(ctx)
			return m.exit(context.WithoutCancel(ctx))
		}
		switch strings.TrimSpace(choice) {
		case "1":
			m.printf("Enter room type to filter (e.g., Single, Suite) or press Enter for all: ")
			filter, ok := m.readLine(ctx)
			if !ok {
				continue
			}
			m.CheckAvailability(filter)
		case "2":
			m.CheckAvailability("")
			m.BookRoom(ctx)
		case "3":
			m.DisplayAllReservations()
			m.CancelReservation(ctx)
		case "4":
			m.DisplayAllReservations()
		case "5":
			return m.exit(context.WithoutCancel(ctx))
		default:
			m.println("\nInvalid choice. Please enter a number between 1 and 5.")
		}
	}
}

func (m *Menu) printMenu() {
	m.println("\n=============================================")
	m.println("|          HOTEL MANAGEMENT SYSTEM           |")
	m.println("=============================================")
	m.println("1. Search & Check Room Availability")
	m.println("2. Make a Reservation (Includes Payment)")
	m.println("3. Cancel a Reservation")
	m.println("4. View All Booking Details")
	m.println("5. Exit System")
	m.println("---------------------------------------------")
	m.printf("Enter your choice (1-5): ")
}

// reportInputEnd explains why the session is ending when it was not a
// plain end of input.
func (m *Menu) reportInputEnd(ctx context.Context) {
	switch {
	case ctx.Err() != nil:
		m.logger.Info("interrupted, saving before exit")
		m.println("Interrupted.")
	case m.scanErr != nil:
		m.logger.Error("reading input failed", zap.Error(m.scanErr))
		m.printf("Error reading input: %v\n", m.scanErr)
	}
}

func (m *Menu) exit(ctx context.Context) error {
	if err := m.inv.Save(ctx); err != nil {
		m.printf("Error saving data: %v\n", err)
		return err
	}
	m.println("\nSystem shutting down. Data saved. Goodbye!")
	return nil
}

// CheckAvailability prints available rooms grouped by category.
func (m *Menu) CheckAvailability(filter string) {
	groups := m.inv.ListAvailable(filter)
	if len(groups) == 0 {
		m.println("\n--- No rooms are currently available matching your criteria. ---")
		return
	}
	m.println("\n=== AVAILABLE ROOMS BY CATEGORY ===")
	for _, g := range groups {
		m.printf("\n[ %s ] (%d available)\n", strings.ToUpper(g.Type), len(g.Rooms))
		for _, r := range g.Rooms {
			m.println(r.String())
		}
	}
	m.println(rule)
}

// BookRoom walks the user through a booking.  The room is checked before
// guest details are requested so the user is not asked for details that
// will be thrown away.
func (m *Menu) BookRoom(ctx context.Context) {
	m.printf("\nEnter desired Room Number: ")
	number, ok := m.readInt(ctx)
	if !ok {
		return
	}
	room, found := m.inv.FindRoom(number)
	if !found {
		m.printf("Error: Room %d not found.\n", number)
		return
	}
	if !room.Available {
		m.printf("Error: Room %d is currently occupied.\n", number)
		return
	}

	req := service.BookingRequest{RoomNumber: number}
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Enter Guest Name: ", &req.GuestName},
		{"Enter Check-in Date (YYYY-MM-DD): ", &req.CheckIn},
		{"Enter Check-out Date (YYYY-MM-DD): ", &req.CheckOut},
	} {
		m.printf("%s", f.prompt)
		if *f.dst, ok = m.readLine(ctx); !ok {
			return
		}
	}

	m.printf("\nSimulated Total Cost (for %d nights): %s\n", model.NightsPerStay, model.FormatCents(model.StayCost(room)))

	res, err := m.inv.Book(ctx, req, func(amountCents int64) bool {
		return m.processPayment(ctx, amountCents)
	})
	switch {
	case errors.Is(err, service.ErrPaymentDeclined):
		return
	case err != nil && !errors.Is(err, service.ErrSaveFailure):
		m.printf("Error: %v\n", err)
		return
	}

	m.println("\n*** BOOKING SUCCESS! ***")
	m.printf("Reservation ID: %d\n", res.ID)
	m.printf("Booking confirmed for %s.\n", res.GuestName)
	m.println(res.Format(room))
	if err != nil {
		m.printf("Warning: booking kept in memory but not saved: %v\n", err)
	}
}

// processPayment asks the user to simulate the payment outcome.  Anything
// other than "1" counts as a failure.
func (m *Menu) processPayment(ctx context.Context, amountCents int64) bool {
	m.println("\n--- PAYMENT SIMULATION ---")
	m.printf("Total Due: %s\n", model.FormatCents(amountCents))
	m.println("1. Simulate Successful Payment")
	m.println("2. Simulate Payment Failure (Cancel Booking)")
	m.printf("Choose action (1 or 2): ")

	choice, ok := m.readLine(ctx)
	if !ok {
		return false
	}
	switch strings.TrimSpace(choice) {
	case "1":
		m.println("Payment processed successfully. Booking confirmed.")
		return true
	case "2":
		m.println("Payment failed. Reservation cancelled.")
	default:
		m.println("Invalid choice. Defaulting to payment failure.")
	}
	m.logger.Info("payment declined", zap.String("amount", model.FormatCents(amountCents)))
	return false
}

// CancelReservation prompts for an ID and cancels it.
func (m *Menu) CancelReservation(ctx context.Context) {
	m.printf("\nEnter Reservation ID to cancel: ")
	id, ok := m.readInt(ctx)
	if !ok {
		return
	}
	res, err := m.inv.Cancel(ctx, id)
	if errors.Is(err, service.ErrReservationNotFound) {
		m.printf("\nError: Reservation ID %d not found.\n", id)
		return
	}
	m.println("\n*** CANCELLATION SUCCESSFUL ***")
	m.printf("Reservation %d for %s has been cancelled.\n", res.ID, res.GuestName)
	m.printf("Room %d is now available.\n", res.RoomNumber)
	if err != nil {
		m.printf("Warning: cancellation kept in memory but not saved: %v\n", err)
	}
}

// DisplayAllReservations prints every active reservation ordered by ID.
func (m *Menu) DisplayAllReservations() {
	all := m.inv.ListAll()
	if len(all) == 0 {
		m.println("\n--- No active reservations found. ---")
		return
	}
	m.println("\n=== ALL ACTIVE BOOKING DETAILS ===")
	for _, res := range all {
		room, _ := m.inv.FindRoom(res.RoomNumber)
		m.println(res.Format(room))
	}
	m.println(rule)
}

// scan forwards input lines until the input ends or Run returns.
func (m *Menu) scan() {
	defer close(m.lines)
	for m.in.Scan() {
		select {
		case m.lines <- m.in.Text():
		case <-m.stop:
			return
		}
	}
	m.scanErr = m.in.Err()
}

// readLine returns the next input line.  It reports false once input is
// exhausted or ctx is done.
func (m *Menu) readLine(ctx context.Context) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-m.lines:
		return line, ok
	}
}

// readInt reads a whole-number line.  Invalid or missing input prints a
// message and reports false.
func (m *Menu) readInt(ctx context.Context) (int, bool) {
	line, ok := m.readLine(ctx)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		m.println("Invalid input. Please enter a number.")
		return 0, false
	}
	return n, true
}

func (m *Menu) printf(format string, args ...any) { fmt.Fprintf(m.out, format, args...) }

func (m *Menu) println(args ...any) { fmt.Fprintln(m.out, args...) }
