package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/hotel"
	"github.com/hotelonline/veraclub-invoicer/internal/hotelapi"
)

func main() {
	baseURL := flag.String("base-url", "", "Upstream API base URL (or set API_BASE_URL env var)")
	email := flag.String("email", "", "Operator email for login")
	password := flag.String("password", "", "Operator password for login")
	hotelID := flag.String("hotel", "sunset-beach", "Property to query (sunset-beach or zanzibar-village)")
	bookingID := flag.String("booking", "", "Reservation number to fetch after login (optional)")
	timeout := flag.Duration("timeout", 30*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *baseURL == "" {
		*baseURL = os.Getenv("API_BASE_URL")
	}
	if *baseURL == "" {
		fmt.Fprintf(os.Stderr, "ERROR: API_BASE_URL not set and no --base-url flag provided\n")
		fmt.Fprintf(os.Stderr, "Usage: test-upstream-connection --base-url https://... --email ... --password ... [--booking 618]\n")
		os.Exit(1)
	}
	if *email == "" || *password == "" {
		fmt.Fprintf(os.Stderr, "ERROR: --email and --password are required\n")
		os.Exit(1)
	}

	fmt.Println("=== Upstream API Connection Test ===")
	fmt.Println("Configuration:")
	fmt.Printf("  Base URL: %s\n", *baseURL)
	fmt.Printf("  Email: %s\n", *email)
	fmt.Printf("  Timeout: %v\n", *timeout)
	fmt.Println()

	client := hotelapi.NewClient(hotelapi.Config{
		BaseURL: *baseURL,
		Timeout: *timeout,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("Logging in...")
	start := time.Now()
	loginResp, err := client.Login(ctx, hotelapi.LoginRequest{
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ ERROR: Login failed\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "Possible causes:\n")
		fmt.Fprintf(os.Stderr, "  1. Wrong email or password\n")
		fmt.Fprintf(os.Stderr, "  2. Wrong base URL\n")
		fmt.Fprintf(os.Stderr, "  3. Network connectivity issue\n")
		fmt.Fprintf(os.Stderr, "  4. Upstream service unavailable\n")
		os.Exit(1)
	}
	fmt.Printf("✓ Login succeeded in %v (token length: %d chars)\n\n", time.Since(start), len(loginResp.Token))

	if *bookingID == "" {
		fmt.Println("✅ Upstream Connection Test PASSED (login only)")
		os.Exit(0)
	}

	prop, err := hotel.NewDirectory().ByID(*hotelID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Fetching booking %s at %s...\n", *bookingID, prop.Name)
	start = time.Now()
	bookings, err := client.FetchBookings(ctx, loginResp.Token, hotelapi.BookingRequest{
		HotelID:   prop.UpstreamHotelID,
		AuthKey:   prop.AuthKey,
		BookingID: *bookingID,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ ERROR: Booking lookup failed\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Booking lookup succeeded in %v\n", time.Since(start))
	fmt.Printf("  Reservations: %d\n\n", len(bookings.Reservations.Reservation))

	fmt.Println("=== Full Response (JSON) ===")
	jsonBytes, _ := json.MarshalIndent(bookings, "", "  ")
	fmt.Println(string(jsonBytes))

	fmt.Println("\n✅ Upstream Connection Test PASSED!")
}
