package main

import (
	"os"

	sqlchatcmder "github.com/papercomputeco/sqlchat/cmd/sqlchat"
)

func main() {
	cmd := sqlchatcmder.NewSqlchatCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
