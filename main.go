package main

import (
	"os"

	"techlympics/cmd"
	_ "techlympics/docs"
)

// @title Techlympics API
// @version 1.0
// @description Event management API for the Techlympics competition.
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
