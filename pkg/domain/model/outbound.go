package model

import "strconv"

// Recipient labels sent with outbound messages
const (
	RecipientLabelClient      = "Cliente"
	RecipientLabelResponsible = "Responsável"
)

// OutboundMessage is the payload posted to the messaging automation webhook.
// Field names are consumed by the automation flow and must stay stable.
type OutboundMessage struct {
	UserName            string `json:"userName"`
	UserEmail           string `json:"userEmail"`
	UserPhone           string `json:"userPhone"`
	UserLabel           string `json:"userLabel"`
	ClientID            string `json:"clientId,omitempty"`
	ClientName          string `json:"clientName,omitempty"`
	ClientPhone         string `json:"clientPhone,omitempty"`
	ClientWhatsApp      string `json:"clientWhatsapp,omitempty"`
	RecipientPhone      string `json:"recipientPhone"`
	RecipientLabel      string `json:"recipientLabel"`
	CategoryLabel       string `json:"categoryLabel"`
	NotificationTitle   string `json:"notificationTitle"`
	NotificationMessage string `json:"notificationMessage"`
	Message             string `json:"message"`
	NotificationKind    string `json:"notificationKind"`
	NotificationID      string `json:"notificationId"`
	Timestamp           string `json:"timestamp"`
	WhatsAppText        string `json:"whatsAppText"`
}

// ChannelError is returned by an outbound channel that answered with a
// non-success status. Text carries the response body as sent by the channel.
type ChannelError struct {
	StatusCode int
	Text       string
}

func (e *ChannelError) Error() string {
	if e.Text != "" {
		return e.Text
	}
	return "channel responded with status " + strconv.Itoa(e.StatusCode)
}
