package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"userhub/pkg/util"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: keygen <generate|hash|verify>")
	}

	switch os.Args[1] {
	case "generate":
		key, err := util.GenerateAPIKey()
		if err != nil {
			log.Fatalf("Generate error: %v", err)
		}
		hash, err := util.HashAPIKey(key)
		if err != nil {
			log.Fatalf("Hash error: %v", err)
		}
		fmt.Printf("X-API-Key:    %s\n", key)
		fmt.Printf("API_KEY_HASH=%s\n", hash)

	case "hash":
		hCmd := flag.NewFlagSet("hash", flag.ExitOnError)
		key := hCmd.String("key", "", "Plain API key")
		hCmd.Parse(os.Args[2:])

		if *key == "" {
			log.Fatal("--key required")
		}
		hash, err := util.HashAPIKey(*key)
		if err != nil {
			log.Fatalf("Hash error: %v", err)
		}
		fmt.Printf("API_KEY_HASH=%s\n", hash)

	case "verify":
		vCmd := flag.NewFlagSet("verify", flag.ExitOnError)
		key := vCmd.String("key", "", "Plain API key")
		hash := vCmd.String("hash", "", "Bcrypt hash")
		vCmd.Parse(os.Args[2:])

		if *key == "" || *hash == "" {
			log.Fatal("Usage: verify --key <key> --hash <hash>")
		}
		if !util.VerifyAPIKey(*key, *hash) {
			fmt.Println(">> key does not match")
			os.Exit(1)
		}
		fmt.Println(">> key matches")

	default:
		log.Fatalf("Unknown command: %s", os.Args[1])
	}
}
