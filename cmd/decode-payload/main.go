// Command decode-payload decodes the base64 job payload a batch job
// receives as its command argument. Handy when debugging stuck jobs:
//
//	go run ./cmd/decode-payload <payload>
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/medvolt/airawat-backend/batch"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: decode-payload <base64-payload>")
		os.Exit(2)
	}

	payload, err := batch.DecodeJobPayload(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to decode payload: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to format payload: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
