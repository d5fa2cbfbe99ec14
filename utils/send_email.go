package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

func SendEmail(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_EMAIL")
	pass := os.Getenv("SMTP_PASSWORD")

	// Cabeceras: UTF-8 y HTML
	msg := ""
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += fmt.Sprintf("From: %s\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "\r\n" + body

	err := smtp.SendMail(
		host+":"+port,
		smtp.PlainAuth("", from, pass, host),
		from,
		[]string{to},
		[]byte(msg),
	)
	if err != nil {
		return fmt.Errorf("fallo al enviar email: %v", err)
	}
	return nil
}

// SendInvitationEmail envía el enlace de aceptación de invitación a un
// profesor recién dado de alta. Se llama en una goroutine; los fallos solo
// se registran en el log.
func SendInvitationEmail(to, name, token string) {
	appURL := os.Getenv("APP_URL")
	link := appURL + "/manager/accept-invitation?token=" + token

	body := `<h3>Hola ` + name + `,</h3>
	<p>Se te ha dado de alta como profesor en <b>AIQuiz</b>.</p>
	<p>Para activar tu cuenta y establecer tu contraseña, pulsa el siguiente enlace
	(caduca en 7 días):</p>
	<p><a href="` + link + `">Activar cuenta</a></p>
	<hr>
	<p><i>Este es un mensaje automático, no respondas a este correo.</i></p>`

	if err := SendEmail(to, "Invitación a AIQuiz", body); err != nil {
		log.Println("Error enviando invitación:", err)
	}
}

// SendPasswordResetEmail envía el enlace de recuperación de contraseña.
func SendPasswordResetEmail(to, token string) {
	appURL := os.Getenv("APP_URL")
	link := appURL + "/manager/reset-password?token=" + token

	body := `<h3>Recuperación de contraseña</h3>
	<p>Has solicitado restablecer tu contraseña en <b>AIQuiz</b>.</p>
	<p>Pulsa el siguiente enlace para establecer una nueva contraseña
	(caduca en 1 hora):</p>
	<p><a href="` + link + `">Restablecer contraseña</a></p>
	<p>Si no has solicitado este cambio, ignora este correo.</p>`

	if err := SendEmail(to, "Recupera tu contraseña de AIQuiz", body); err != nil {
		log.Println("Error enviando email de recuperación:", err)
	}
}
