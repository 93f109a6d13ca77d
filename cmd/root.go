package cmd

import (
	"github.com/alibestprice/price-bot/internal/app"
	"github.com/alibestprice/price-bot/internal/server"
	"github.com/alibestprice/price-bot/internal/telegram"
	"github.com/carousell/ct-go/pkg/logger/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "price-bot",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		app.Invoke(
			server.StartServer,
			telegram.StartBot,
		).Run()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
