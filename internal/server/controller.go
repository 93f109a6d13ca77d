package server

import (
	"net/http"

	"github.com/alibestprice/price-bot/internal/config"
	"github.com/labstack/echo/v4"
)

type Controller interface {
	Root(c echo.Context) error
	Status(c echo.Context) error
	Health(c echo.Context) error
}

type controller struct {
	botName string
}

func NewController(conf *config.Config) Controller {
	return &controller{
		botName: conf.Bot.Name,
	}
}

const landingPage = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Ali Best Price Bot</title>
</head>
<body>
	<h1>Ali Best Price Bot</h1>
	<p>This is a Telegram bot that helps you find the best prices on AliExpress and generate affiliate links.</p>
	<p>Server is running!</p>
	<a href="https://t.me/Ali_Best_Price_bot">Open Bot in Telegram</a>
</body>
</html>
`

func (h *controller) Root(c echo.Context) error {
	return c.HTML(http.StatusOK, landingPage)
}

func (h *controller) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "Running",
		"bot_name": h.botName,
	})
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "price-bot",
	})
}
