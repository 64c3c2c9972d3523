package utils

import (
	"fmt"
	"log"

	"github.com/wneessen/go-mail"

	"proshop_back_end/internal/config"
	"proshop_back_end/internal/models"
)

// Mailer envoie les confirmations de commande. Nil si SMTP non configuré.
type Mailer struct {
	cfg *config.Config
}

// NewMailer renvoie nil quand SMTP_HOST est absent : l'appelant saute
// simplement l'envoi.
func NewMailer(cfg *config.Config) *Mailer {
	if cfg.SMTPHost == "" {
		log.Println("⚠️  SMTP non configuré — e-mails de confirmation désactivés")
		return nil
	}
	return &Mailer{cfg: cfg}
}

// SendOrderConfirmation envoie l'e-mail de confirmation. Pour un paiement
// par virement, un QR SEPA du montant total est embarqué dans le corps.
func (m *Mailer) SendOrderConfirmation(order *models.Order, to string) error {
	qrDataURI := ""
	if order.PaymentMethod == "BankTransfer" && m.cfg.SepaIBAN != "" {
		qr, err := GenerateSepaQR(m.cfg.SepaIBAN, m.cfg.SepaBIC, m.cfg.SepaBeneficiary,
			"ORDER-"+order.ID.Hex(), order.TotalPrice)
		if err != nil {
			log.Println("⚠️  QR SEPA non généré:", err)
		} else {
			qrDataURI = qr
		}
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.EmailFrom); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject("Confirmation de votre commande " + order.ID.Hex())
	msg.SetBodyString(mail.TypeTextHTML, orderConfirmationHTML(order, qrDataURI))

	client, err := mail.NewClient(m.cfg.SMTPHost,
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.SMTPUsername),
		mail.WithPassword(m.cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail de confirmation à", to)
	return client.DialAndSend(msg)
}

func orderConfirmationHTML(order *models.Order, qrDataURI string) string {
	itemsHTML := ""
	for _, item := range order.OrderItems {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f€</td>
				<td>%.2f€</td>
			</tr>`, item.Name, item.Qty, item.Price, item.Price*float64(item.Qty))
	}

	qrHTML := ""
	if qrDataURI != "" {
		qrHTML = fmt.Sprintf(`
		<p>Réglez votre commande par virement en scannant ce QR code :</p>
		<img src="%s" alt="QR SEPA" width="256" height="256" />`, qrDataURI)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande</h2>
		<p>Bonjour,</p>
		<p>Merci pour votre commande <strong>%s</strong>. Voici le récapitulatif :</p>
		<table width="100%%" cellpadding="8" style="border-collapse: collapse;">
			<tr style="background-color: #eee;">
				<th align="left">Article</th><th align="left">Qté</th>
				<th align="left">Prix</th><th align="left">Total</th>
			</tr>%s
		</table>
		<p>Sous-total : %.2f€<br>Taxes : %.2f€<br>Livraison : %.2f€<br>
		<strong>Total : %.2f€</strong></p>
		%s
		<p>L'équipe ProShop</p>
	</div>
</body>
</html>`, order.ID.Hex(), itemsHTML,
		order.ItemsPrice, order.TaxPrice, order.ShippingPrice, order.TotalPrice, qrHTML)
}
