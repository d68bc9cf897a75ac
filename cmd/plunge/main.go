package main

//	@title						Power Plunge Theme API
//	@version					1.0
//	@description				Storefront themes, site settings and the live theme stream.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and an access token.

import (
	"fmt"
	"os"

	_ "github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/api/swagger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
