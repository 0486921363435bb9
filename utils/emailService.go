package utils

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"lms/config"
)

// SendEmail sends a generic HTML email over SMTP
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Training Portal <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

// SendEnrollmentEmail sends an email notification when a user enrolls in a module
func SendEnrollmentEmail(email, userName, moduleTitle string) error {
	subject := "Training Enrollment Confirmation"
	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 600px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px; box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);">
					<h2 style="color: #333333; text-align: center;">Enrollment Successful!</h2>
					<p style="font-size: 16px; color: #555555;">Dear %s,</p>
					<p style="font-size: 16px; color: #555555;">You have been enrolled in:</p>
					<h3 style="text-align: center; color: #4CAF50; margin: 20px 0;">%s</h3>
					<p style="font-size: 14px; color: #666666;">Complete all materials and pass the post-test to earn your certificate. Keep an eye on the training deadline.</p>
					<p style="text-align: center; font-size: 12px; color: #bbbbbb; margin-top: 20px;">Training Portal Team</p>
				</div>
			</body>
		</html>
	`, userName, moduleTitle)

	return SendEmail([]string{email}, subject, body)
}

// SendEscalationEmail notifies about an overdue, escalated enrollment
func SendEscalationEmail(email, userName, moduleTitle string, level int, dueDate *time.Time) error {
	dueStr := "the assigned deadline"
	if dueDate != nil {
		dueStr = dueDate.Format("January 2, 2006")
	}

	subject := fmt.Sprintf("Training Overdue - Escalation Level %d", level)
	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 600px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px; box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);">
					<h2 style="color: #c0392b; text-align: center;">Training Overdue</h2>
					<p style="font-size: 16px; color: #555555;">Dear %s,</p>
					<p style="font-size: 16px; color: #555555;">The following training was due by <strong>%s</strong> and is now at escalation level <strong>%d</strong>:</p>
					<h3 style="text-align: center; color: #c0392b; margin: 20px 0;">%s</h3>
					<p style="font-size: 14px; color: #666666;">Please complete the training as soon as possible, or contact your administrator if you believe this is in error.</p>
					<p style="text-align: center; font-size: 12px; color: #bbbbbb; margin-top: 20px;">Training Portal Team</p>
				</div>
			</body>
		</html>
	`, userName, dueStr, level, moduleTitle)

	return SendEmail([]string{email}, subject, body)
}

// SendCertificateEmail sends certificate notification email
func SendCertificateEmail(email, userName, moduleTitle, certificateNumber string) error {
	subject := "Training Completion Certificate"
	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 600px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px; box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);">
					<h2 style="color: #333333; text-align: center;">Certificate of Completion</h2>
					<p style="font-size: 16px; color: #555555;">Dear %s,</p>
					<p style="font-size: 16px; color: #555555;">Congratulations on completing the training:</p>
					<h3 style="text-align: center; color: #4CAF50; margin: 20px 0;">%s</h3>
					<div style="background-color: #f8f9fa; border-radius: 8px; padding: 20px; margin: 20px 0; text-align: center;">
						<p style="font-size: 14px; color: #666666; margin-bottom: 10px;">Your Certificate Number:</p>
						<h2 style="color: #2196F3; margin: 0;">%s</h2>
					</div>
					<p style="font-size: 14px; color: #666666;">You can use this certificate number for verification purposes.</p>
					<p style="text-align: center; font-size: 12px; color: #bbbbbb; margin-top: 20px;">Training Portal Team</p>
				</div>
			</body>
		</html>
	`, userName, moduleTitle, certificateNumber)

	return SendEmail([]string{email}, subject, body)
}
