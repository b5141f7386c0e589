// Command signpayment prints a verify request body signed with the gateway
// key secret, for exercising /api/payments/verify against a local server.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"admissions/internal/domain/payment"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("usage: go run ./cmd/signpayment <order_id> <payment_id>")
		os.Exit(1)
	}
	_ = godotenv.Load()
	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	if secret == "" {
		fmt.Println("RAZORPAY_KEY_SECRET is not set")
		os.Exit(1)
	}

	v := payment.Verification{
		OrderID:   os.Args[1],
		PaymentID: os.Args[2],
		Signature: payment.ExpectedSignature(secret, os.Args[1], os.Args[2]),
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(out))
}
