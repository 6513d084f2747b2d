package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/prooftalent/assessment-backend/internal/fhe"
)

// keygen generates the Paillier key pair the evaluator scores submissions
// with. Run once per deployment; without a key file the server falls back
// to an ephemeral key, which invalidates stored encrypted scores on every
// restart.
func main() {
	var (
		out   string
		bits  int
		force bool
	)
	flag.StringVar(&out, "out", "fhe_key.json", "Output path for the key file")
	flag.IntVar(&bits, "bits", 2048, "Modulus size in bits")
	flag.BoolVar(&force, "force", false, "Overwrite an existing key file")
	flag.Parse()

	if !force {
		if _, err := os.Stat(out); err == nil {
			log.Fatalf("%s already exists; pass -force to overwrite (this invalidates all stored encrypted scores)", out)
		}
	}

	fmt.Printf("Generating %d-bit Paillier key pair...\n", bits)
	key, err := fhe.GenerateKey(rand.Reader, bits)
	if err != nil {
		log.Fatalf("Key generation failed: %v", err)
	}

	if err := fhe.SaveKey(out, key); err != nil {
		log.Fatalf("Failed to write key file: %v", err)
	}

	fmt.Printf("Key written to %s\n", out)
}
