// admin-token mints an RS256 access token for the administrative
// endpoints, and can generate the signing key pair. The API server only
// holds the public key; tokens are issued out-of-band with this tool.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/nutrilife/campus/api/pkg/jwt"
)

func main() {
	privateKeyPath := flag.String("key", "./keys/jwt_private.pem", "Path to JWT private key")
	publicKeyPath := flag.String("pub", "./keys/jwt_public.pem", "Path to JWT public key (for -generate-keys)")
	generateKeys := flag.Bool("generate-keys", false, "Generate a new RSA key pair and exit")
	userID := flag.String("user", "admin-dev-user", "User ID for the token")
	email := flag.String("email", "admin@nutrilife-campus.org", "Email for the token")
	issuer := flag.String("issuer", "api.nutrilife-campus.org", "JWT issuer")
	expMins := flag.Int("exp", 60*24*7, "Token expiration in minutes (default: 7 days)")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	if *generateKeys {
		if err := jwt.GenerateKeyPair(*privateKeyPath, *publicKeyPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating key pair: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s and %s\n", *privateKeyPath, *publicKeyPath)
		return
	}

	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: *privateKeyPath,
		Issuer:         *issuer,
		ExpirationMins: *expMins,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating JWT service: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nGenerate keys first with: admin-token -generate-keys\n")
		os.Exit(1)
	}

	token, err := jwtService.GenerateAccessToken(*userID, *email, "admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		output := map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   *expMins * 60,
			"user_id":      *userID,
			"email":        *email,
			"role":         "admin",
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output)
		return
	}

	fmt.Println(token)
}
