// Command bootstrap-admin-key generates the admin capability key for the
// clear-stats endpoint. Run once, hand the plaintext to the operator, and
// set ADMIN_KEY_HASH to the printed hash.
//
//	go run scripts/bootstrap-admin-key.go
package main

import (
	"fmt"
	"os"

	"github.com/vidrate/vidrate/internal/auth"
)

func main() {
	key, err := auth.GenerateAdminKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate admin key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Admin key (shown once, store it safely):")
	fmt.Printf("  %s\n\n", key.Plaintext)
	fmt.Println("Configure the server with:")
	fmt.Printf("  ADMIN_KEY_HASH='%s'\n", key.Hash)
}
