package wishing

import (
	"net/url"
	"strings"

	bdomain "remind-candles/internal/birthday/domain"
	"remind-candles/pkg/whatsapp"
)

const wishSubject = "Happy Birthday! 🎉"

// Link is a one-tap way for the user to send a prepared wish themselves
type Link struct {
	Channel string `json:"channel"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// WhatsAppLink opens a chat with phone and the text pre-filled
func WhatsAppLink(phone, text string) string {
	return whatsapp.Link(phone, text)
}

// MailtoLink opens the mail client with a prepared message
func MailtoLink(email, subject, body string) string {
	q := url.Values{}
	q.Set("subject", subject)
	q.Set("body", body)
	// mailto expects %20, not +
	return "mailto:" + email + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}

// LinkFor returns the link the user should open to send the wish by hand:
// WhatsApp when the birthday has a phone, otherwise mail.
func LinkFor(b *bdomain.Birthday, message string) (Link, bool) {
	switch {
	case b.Phone != "":
		text := whatsapp.PersonalizedMessage(b.Name, message)
		return Link{Channel: ChannelWhatsApp, URL: WhatsAppLink(b.Phone, text), Message: text}, true
	case b.Email != "":
		return Link{Channel: ChannelEmail, URL: MailtoLink(b.Email, wishSubject, message), Message: message}, true
	default:
		return Link{Message: message}, false
	}
}
