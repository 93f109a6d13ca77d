package usecase

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/alibestprice/price-bot/internal/models"
)

const (
	msgNoLink = "🔍 I couldn't find any valid AliExpress links in your message.\n\n" +
		"Please send me a valid AliExpress product link like:\n" +
		"https://aliexpress.com/item/1234567890.html"

	msgInvalidLink = "⚠️ The link you sent doesn't appear to be a valid AliExpress product link.\n\n" +
		"Please check the link and try again."

	msgProcessing = "🔍 Processing your AliExpress link..."

	msgNotFound = "❌ Sorry, I couldn't retrieve information for this product.\n\n" +
		"This might be due to:\n" +
		"- The product is no longer available\n" +
		"- The link is incorrect\n" +
		"- AliExpress API limitations\n\n" +
		"Please try another product link."

	msgProcessingError = "❌ Sorry, something went wrong while processing your link.\n\n" +
		"Please try again later or try a different product link."

	openButtonText = "🛒 Open in AliExpress"
)

// ComposeReply renders the product summary sent back to the user. Pure
// function: same details and link always produce the same string.
func ComposeReply(details *models.ProductDetails, affiliateLink string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🛍️ <b>%s</b>\n\n", html.EscapeString(details.Title))
	fmt.Fprintf(&sb, "💰 <b>Current Price:</b> $%s\n", formatPrice(details.Price))

	if details.HasDiscount() {
		orig := *details.OriginalPrice
		// Rounded half away from zero.
		discount := int(math.Round((orig - details.Price) / orig * 100))
		fmt.Fprintf(&sb, "🏷️ <b>Original Price:</b> $%s (Save %d%%)\n", formatPrice(orig), discount)
	}

	if details.ShippingCost != nil {
		if *details.ShippingCost > 0 {
			fmt.Fprintf(&sb, "🚚 <b>Shipping:</b> $%s\n", formatPrice(*details.ShippingCost))
		} else {
			sb.WriteString("🚚 <b>Shipping:</b> Free\n")
		}
	}

	if details.Rating != nil {
		fmt.Fprintf(&sb, "⭐ <b>Rating:</b> %s/5\n", strconv.FormatFloat(*details.Rating, 'f', -1, 64))
	}

	fmt.Fprintf(&sb, "\n🔗 <b>Affiliate Link:</b>\n%s", affiliateLink)
	return sb.String()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
