// Command journal-hash generates a bcrypt hash for the admin credential,
// suitable for the JOURNAL_ADMIN_HASH environment variable.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: journal-hash [-cost N] <password>")
		os.Exit(2)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(flag.Arg(0)), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "journal-hash: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(hash))
}
